// Package webapi exposes the storefront and back-office REST endpoints.
package webapi

import (
	"errors"
	"net/http"

	"github.com/kridmal/nerd-stationery-sub000/internal/alert"
	"github.com/kridmal/nerd-stationery-sub000/internal/inventory"
	"github.com/kridmal/nerd-stationery-sub000/internal/order"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Deps are the collaborators the handlers operate on, wired once at
// process start.
type Deps struct {
	DB     *gorm.DB
	Ledger *inventory.Ledger
	Placer *order.Placer
	Alerts *alert.Runner
}

var deps Deps

// InitRouter wires handler dependencies and registers all API routes.
func InitRouter(d Deps) {
	deps = d
	registerProductRoutes()
	registerOrderRoutes()
	registerAlertRoutes()
}

// ListResponse is the paged list envelope.
type ListResponse struct {
	Data    interface{} `json:"data"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	PerPage int         `json:"per_page"`
}

type errorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Detail  interface{} `json:"detail,omitempty"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, data)
}

func paged(c echo.Context, rows interface{}, total int64, page, perPage int) error {
	return c.JSON(http.StatusOK, ListResponse{Data: rows, Total: total, Page: page, PerPage: perPage})
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return c.JSON(status, map[string]interface{}{
		"error": errorBody{Code: code, Message: message, Detail: detail},
	})
}

// failErr maps the service error taxonomy onto HTTP responses.
func failErr(c echo.Context, err error) error {
	var (
		notFound   *inventory.NotFoundError
		noStock    *inventory.InsufficientStockError
		badStock   *inventory.InvalidRequestError
		badRequest *order.InvalidRequestError
	)
	switch {
	case errors.As(err, &notFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.As(err, &noStock):
		return fail(c, http.StatusBadRequest, "INSUFFICIENT_STOCK", err.Error(), nil)
	case errors.As(err, &badStock), errors.As(err, &badRequest):
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fail(c, http.StatusBadRequest, "CONFLICT", "Duplicate unique field", err.Error())
	default:
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected error", err.Error())
	}
}
