package webapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/gocarina/gocsv"
	"github.com/kridmal/nerd-stationery-sub000/internal/domain"
	"github.com/kridmal/nerd-stationery-sub000/internal/order"
	"github.com/kridmal/nerd-stationery-sub000/internal/webserver"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
)

type orderStatusPayload struct {
	Status string `json:"status" validate:"required"`
}

// orderCSVRow is the flattened export shape, one row per order.
type orderCSVRow struct {
	OrderNo       string `csv:"order_no"`
	Status        string `csv:"status"`
	CustomerName  string `csv:"customer_name"`
	CustomerEmail string `csv:"customer_email"`
	City          string `csv:"city"`
	ItemCount     int    `csv:"item_count"`
	Subtotal      string `csv:"subtotal"`
	DiscountTotal string `csv:"discount_total"`
	DeliveryFee   string `csv:"delivery_fee"`
	GrandTotal    string `csv:"grand_total"`
	CreatedAt     string `csv:"created_at"`
}

// registerOrderRoutes registers checkout and order back-office endpoints
func registerOrderRoutes() {
	webserver.ApiPOST("/orders", createOrder)
	webserver.ApiGET("/orders", listOrders)
	webserver.ApiGET("/orders/export", exportOrders)
	webserver.ApiGET("/orders/:id", getOrder)
	webserver.ApiPUT("/orders/:id/status", updateOrderStatus)
}

func createOrder(c echo.Context) error {
	var req order.PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse order", err.Error())
	}
	ord, err := deps.Placer.PlaceOrder(c.Request().Context(), req)
	if err != nil {
		return failErr(c, err)
	}
	return created(c, ord)
}

func listOrders(c echo.Context) error {
	page := cast.ToInt(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	perPage := cast.ToInt(c.QueryParam("perPage"))
	if perPage < 1 || perPage > 200 {
		perPage = 20
	}

	db := deps.DB.Model(&domain.Order{})
	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		db = db.Where("status = ?", status)
	}
	if from := strings.TrimSpace(c.QueryParam("from")); from != "" {
		if t, err := dateparse.ParseAny(from); err == nil {
			db = db.Where("created_at >= ?", t)
		}
	}
	if to := strings.TrimSpace(c.QueryParam("to")); to != "" {
		if t, err := dateparse.ParseAny(to); err == nil {
			db = db.Where("created_at < ?", t.Add(24*time.Hour))
		}
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return failErr(c, err)
	}

	var rows []domain.Order
	err := db.Preload("Items").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&rows).Error
	if err != nil {
		return failErr(c, err)
	}
	return paged(c, rows, total, page, perPage)
}

func getOrder(c echo.Context) error {
	id := cast.ToInt64(c.Param("id"))
	if id == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var ord domain.Order
	err := deps.DB.Preload("Items").First(&ord, id).Error
	if err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
	}
	return ok(c, &ord)
}

func updateOrderStatus(c echo.Context) error {
	id := cast.ToInt64(c.Param("id"))
	if id == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var payload orderStatusPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse status", err.Error())
	}
	if !domain.ValidOrderStatus(payload.Status) {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unknown order status", payload.Status)
	}

	var ord domain.Order
	if err := deps.DB.First(&ord, id).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
	}
	err := deps.DB.Model(&domain.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     payload.Status,
		"updated_at": time.Now(),
	}).Error
	if err != nil {
		return failErr(c, err)
	}
	ord.Status = payload.Status
	return ok(c, &ord)
}

func exportOrders(c echo.Context) error {
	var orders []domain.Order
	err := deps.DB.Preload("Items").Order("created_at DESC, id DESC").Find(&orders).Error
	if err != nil {
		return failErr(c, err)
	}

	rows := make([]orderCSVRow, 0, len(orders))
	for _, ord := range orders {
		itemCount := 0
		for _, item := range ord.Items {
			itemCount += item.Quantity
		}
		rows = append(rows, orderCSVRow{
			OrderNo:       ord.OrderNo,
			Status:        ord.Status,
			CustomerName:  ord.DeliveryName,
			CustomerEmail: ord.DeliveryEmail,
			City:          ord.City,
			ItemCount:     itemCount,
			Subtotal:      ord.Subtotal.StringFixed(2),
			DiscountTotal: ord.DiscountTotal.StringFixed(2),
			DeliveryFee:   ord.DeliveryFee.StringFixed(2),
			GrandTotal:    ord.GrandTotal.StringFixed(2),
			CreatedAt:     ord.CreatedAt.Format(time.RFC3339),
		})
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="orders.csv"`)
	c.Response().WriteHeader(http.StatusOK)
	return gocsv.Marshal(&rows, c.Response())
}
