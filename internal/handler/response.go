package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// {"success":true,"data":...}
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// {"success":false,"error":"..."}
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: data})
}

func created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, SuccessResponse{Success: true, Data: data})
}

func message(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: msg})
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, ErrorResponse{Success: false, Error: msg})
}

// usecaseのエラーをステータスに変換する。
// 500は中身を返さず、RequestLoggerがログに出す。
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		if he.Status >= http.StatusInternalServerError {
			c.Set(middleware.CtxErrorKey, err)
		}
		return fail(c, he.Status, he.Message)
	}

	c.Set(middleware.CtxErrorKey, err)
	return fail(c, http.StatusInternalServerError, "internal error")
}

// bindしてvalidateタグを検証する
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return usecase.NewError(usecase.KindInvalidInput, "invalid body")
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(req)
}

func principal(c echo.Context) (model.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return model.Principal{}, usecase.NewError(usecase.KindUnauthenticated, "unauthorized")
	}
	return p, nil
}

func paramID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, usecase.NewError(usecase.KindInvalidInput, "invalid "+name)
	}
	return id, nil
}

// 未指定なら0（usecase側で既定値にする）
func queryInt(c echo.Context, name string) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, usecase.NewError(usecase.KindInvalidInput, "invalid "+name)
	}
	return n, nil
}

// pageSize（旧名limitも受ける）
func queryPageSize(c echo.Context) (int, error) {
	if c.QueryParam("pageSize") != "" {
		return queryInt(c, "pageSize")
	}
	return queryInt(c, "limit")
}

// JWT検証 + token_versionの照合
func authMiddlewares(cfg config.Config, userRepo repository.UserRepository) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
	}
}
