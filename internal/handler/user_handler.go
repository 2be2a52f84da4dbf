package handler

import (
	"storefront/internal/config"
	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /users/profile と /users/addresses
type UserHandler struct {
	uc        *usecase.UserUsecase
	addresses *AddressHandler
}

func NewUserHandler(uc *usecase.UserUsecase, addresses *AddressHandler) *UserHandler {
	return &UserHandler{uc: uc, addresses: addresses}
}

type updateProfileRequest struct {
	Name  string `json:"name" validate:"required,max=255"`
	Phone string `json:"phone" validate:"max=30"`
}

func (h *UserHandler) RegisterRoutes(api *echo.Group, cfg config.Config, userRepo repository.UserRepository) {
	g := api.Group("/users", authMiddlewares(cfg, userRepo)...)

	g.GET("/profile", h.getProfile)
	g.PUT("/profile", h.updateProfile)
	h.addresses.RegisterRoutes(g)
}

func (h *UserHandler) getProfile(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.GetProfile(c.Request().Context(), p)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out)
}

func (h *UserHandler) updateProfile(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}

	var req updateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.UpdateProfile(c.Request().Context(), p, usecase.UpdateProfileInput{
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out)
}
