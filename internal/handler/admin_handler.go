package handler

import (
	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// /admin 配下（JWT + admin role）
type AdminHandler struct {
	uc *usecase.AdminUsecase
}

func NewAdminHandler(uc *usecase.AdminUsecase) *AdminHandler {
	return &AdminHandler{uc: uc}
}

type productRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Stock       int64           `json:"stock" validate:"gte=0"`
	Category    string          `json:"category" validate:"required"`
	Image       string          `json:"image"`
	Volume      string          `json:"volume"`
	Alcohol     string          `json:"alcohol"`
	Origin      string          `json:"origin"`
	Tags        []string        `json:"tags"`
}

type orderStatusRequest struct {
	Status         string `json:"status" validate:"required"`
	TrackingNumber string `json:"tracking_number"`
}

func (h *AdminHandler) RegisterRoutes(api *echo.Group, cfg config.Config, userRepo repository.UserRepository) {
	mws := append(authMiddlewares(cfg, userRepo), middleware.AdminRoleGuard())
	g := api.Group("/admin", mws...)

	g.POST("/products", h.createProduct)
	g.PUT("/products/:id", h.updateProduct)
	g.DELETE("/products/:id", h.deleteProduct)

	g.GET("/orders", h.listOrders)
	g.PUT("/orders/:id/status", h.updateOrderStatus)

	g.GET("/dashboard", h.dashboard)
	g.GET("/audit-logs", h.auditLogs)
}

func (r productRequest) toInput() usecase.ProductInput {
	return usecase.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		Category:    r.Category,
		Image:       r.Image,
		Volume:      r.Volume,
		Alcohol:     r.Alcohol,
		Origin:      r.Origin,
		Tags:        r.Tags,
	}
}

func (h *AdminHandler) createProduct(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}

	var req productRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.CreateProduct(c.Request().Context(), p, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return created(c, out)
}

func (h *AdminHandler) updateProduct(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	var req productRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.UpdateProduct(c.Request().Context(), p, id, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out)
}

func (h *AdminHandler) deleteProduct(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	if err := h.uc.DeleteProduct(c.Request().Context(), p, id); err != nil {
		return writeError(c, err)
	}
	return message(c, "product deleted")
}

func (h *AdminHandler) listOrders(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}
	page, err := queryInt(c, "page")
	if err != nil {
		return writeError(c, err)
	}
	pageSize, err := queryPageSize(c)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.ListOrders(c.Request().Context(), p, page, pageSize)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out)
}

func (h *AdminHandler) updateOrderStatus(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}

	var req orderStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.UpdateOrderStatus(c.Request().Context(), p, id, usecase.UpdateOrderStatusInput{
		Status:         req.Status,
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out)
}

func (h *AdminHandler) dashboard(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.Dashboard(c.Request().Context(), p)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out)
}

// ?actor_user_id=&action=&resource_type=&resource_id=&page=&pageSize=
func (h *AdminHandler) auditLogs(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return writeError(c, err)
	}

	q := usecase.AuditLogQuery{
		Action:       c.QueryParam("action"),
		ResourceType: c.QueryParam("resource_type"),
	}
	if q.Page, err = queryInt(c, "page"); err != nil {
		return writeError(c, err)
	}
	if q.PageSize, err = queryPageSize(c); err != nil {
		return writeError(c, err)
	}
	actor, err := queryInt(c, "actor_user_id")
	if err != nil {
		return writeError(c, err)
	}
	resourceID, err := queryInt(c, "resource_id")
	if err != nil {
		return writeError(c, err)
	}
	q.ActorUserID = int64(actor)
	q.ResourceID = int64(resourceID)

	out, err := h.uc.AuditLogs(c.Request().Context(), p, q)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, out)
}
