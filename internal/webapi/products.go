package webapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/kridmal/nerd-stationery-sub000/internal/domain"
	"github.com/kridmal/nerd-stationery-sub000/internal/webserver"
	"github.com/kridmal/nerd-stationery-sub000/pkg/common"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

type productPayload struct {
	ItemCode      string          `json:"item_code" validate:"required,min=1,max=64"`
	Name          string          `json:"name" validate:"required,min=1,max=200"`
	Slug          string          `json:"slug"`
	Description   string          `json:"description"`
	Image         string          `json:"image"`
	Quantity      *int            `json:"quantity"`
	MinQuantity   *int            `json:"min_quantity"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	FinalPrice    decimal.Decimal `json:"final_price"`
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	Variations    string          `json:"variations"`
	Status        string          `json:"status"`
}

type restockPayload struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// registerProductRoutes registers catalog management endpoints
func registerProductRoutes() {
	webserver.ApiGET("/products", listProducts)
	webserver.ApiGET("/products/:id", getProduct)
	webserver.ApiPOST("/products", createProduct)
	webserver.ApiPUT("/products/:id", updateProduct)
	webserver.ApiDELETE("/products/:id", deleteProduct)
	webserver.ApiPOST("/products/:id/restock", restockProduct)
}

func validateProductPayload(p *productPayload) (code, msg string) {
	p.ItemCode = strings.TrimSpace(p.ItemCode)
	p.Name = strings.TrimSpace(p.Name)
	if p.ItemCode == "" {
		return "INVALID_REQUEST", "Item code is required"
	}
	if p.Name == "" {
		return "INVALID_REQUEST", "Name is required"
	}
	if p.Quantity != nil && *p.Quantity < 0 {
		return "INVALID_REQUEST", "Quantity must be >= 0"
	}
	if p.MinQuantity != nil && *p.MinQuantity < 0 {
		return "INVALID_REQUEST", "Min quantity must be >= 0"
	}
	if p.OriginalPrice.IsNegative() || p.FinalPrice.IsNegative() || p.DiscountValue.IsNegative() {
		return "INVALID_REQUEST", "Prices must be >= 0"
	}
	if !p.OriginalPrice.IsZero() && p.FinalPrice.GreaterThan(p.OriginalPrice) {
		return "INVALID_REQUEST", "Final price cannot exceed original price"
	}
	if p.DiscountType == "" {
		p.DiscountType = domain.DiscountNone
	}
	switch p.DiscountType {
	case domain.DiscountNone, domain.DiscountPercentage, domain.DiscountFixed:
	default:
		return "INVALID_REQUEST", "Discount type must be 'none', 'percentage' or 'fixed'"
	}
	return "", ""
}

func listProducts(c echo.Context) error {
	page := cast.ToInt(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	perPage := cast.ToInt(c.QueryParam("perPage"))
	if perPage < 1 || perPage > 500 {
		perPage = 20
	}

	q := strings.TrimSpace(c.QueryParam("q"))

	sortField := strings.TrimSpace(c.QueryParam("sort"))
	sortOrder := strings.ToUpper(strings.TrimSpace(c.QueryParam("order")))
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	// whitelist allowed sort columns to avoid SQL injection
	allowed := map[string]string{
		"id":           "id",
		"item_code":    "item_code",
		"name":         "name",
		"quantity":     "quantity",
		"min_quantity": "min_quantity",
		"created_at":   "created_at",
		"updated_at":   "updated_at",
	}
	sortCol, known := allowed[sortField]
	if !known {
		sortCol = "id"
	}

	db := deps.DB.Model(&domain.Product{})
	if q != "" {
		if strings.EqualFold(db.Name(), "postgres") {
			db = db.Where("name ILIKE ? OR item_code ILIKE ?", "%"+q+"%", "%"+q+"%")
		} else {
			db = db.Where("LOWER(name) LIKE ? OR LOWER(item_code) LIKE ?",
				"%"+strings.ToLower(q)+"%", "%"+strings.ToLower(q)+"%")
		}
	}
	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		db = db.Where("status = ?", status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return failErr(c, err)
	}

	var rows []domain.Product
	if err := db.Order(sortCol + " " + sortOrder).
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&rows).Error; err != nil {
		return failErr(c, err)
	}

	return paged(c, rows, total, page, perPage)
}

func getProduct(c echo.Context) error {
	id := cast.ToInt64(c.Param("id"))
	if id == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	p, err := deps.Ledger.GetByID(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, p)
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if code, msg := validateProductPayload(&payload); code != "" {
		return fail(c, http.StatusBadRequest, code, msg, nil)
	}

	now := time.Now()
	p := domain.Product{
		ID:            common.UUIDint64(),
		ItemCode:      payload.ItemCode,
		Name:          payload.Name,
		Slug:          strings.TrimSpace(payload.Slug),
		Description:   payload.Description,
		Image:         strings.TrimSpace(payload.Image),
		OriginalPrice: payload.OriginalPrice,
		FinalPrice:    payload.FinalPrice,
		DiscountType:  payload.DiscountType,
		DiscountValue: payload.DiscountValue,
		Variations:    payload.Variations,
		Status:        payload.Status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if payload.Quantity != nil {
		p.Quantity = *payload.Quantity
	}
	if payload.MinQuantity != nil {
		p.MinQuantity = *payload.MinQuantity
	}
	if p.Status == "" {
		p.Status = common.ENABLED
	}
	if err := deps.DB.Create(&p).Error; err != nil {
		return failErr(c, err)
	}
	return created(c, p)
}

func updateProduct(c echo.Context) error {
	id := cast.ToInt64(c.Param("id"))
	if id == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	p, err := deps.Ledger.GetByID(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err)
	}

	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if code, msg := validateProductPayload(&payload); code != "" {
		return fail(c, http.StatusBadRequest, code, msg, nil)
	}

	p.ItemCode = payload.ItemCode
	p.Name = payload.Name
	p.Slug = strings.TrimSpace(payload.Slug)
	p.Description = payload.Description
	p.Image = strings.TrimSpace(payload.Image)
	p.OriginalPrice = payload.OriginalPrice
	p.FinalPrice = payload.FinalPrice
	p.DiscountType = payload.DiscountType
	p.DiscountValue = payload.DiscountValue
	p.Variations = payload.Variations
	if payload.Quantity != nil {
		p.Quantity = *payload.Quantity
	}
	if payload.MinQuantity != nil {
		p.MinQuantity = *payload.MinQuantity
	}
	if payload.Status != "" {
		p.Status = payload.Status
	}
	p.UpdatedAt = time.Now()

	if err := deps.DB.Save(p).Error; err != nil {
		return failErr(c, err)
	}
	return ok(c, p)
}

func deleteProduct(c echo.Context) error {
	id := cast.ToInt64(c.Param("id"))
	if id == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	if err := deps.DB.Where("id = ?", id).Delete(&domain.Product{}).Error; err != nil {
		return failErr(c, err)
	}
	return ok(c, map[string]interface{}{"id": id})
}

func restockProduct(c echo.Context) error {
	id := cast.ToInt64(c.Param("id"))
	if id == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var payload restockPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse restock request", err.Error())
	}
	if err := deps.Ledger.Restock(c.Request().Context(), id, payload.Quantity); err != nil {
		return failErr(c, err)
	}
	p, err := deps.Ledger.GetByID(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, p)
}
