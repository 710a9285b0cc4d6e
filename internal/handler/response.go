package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"backoffice/internal/middleware"
	"backoffice/internal/usecase"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func getUserIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	if v == nil {
		return 0, false
	}

	id, ok := v.(int64)
	if !ok {
		return 0, false
	}

	return id, true
}

// Bind → Validate。失敗したら400で返すメッセージ。
func bindAndValidate(c echo.Context, req any) string {
	if err := c.Bind(req); err != nil {
		return "invalid body"
	}
	if err := c.Validate(req); err != nil {
		return err.Error()
	}
	return ""
}
