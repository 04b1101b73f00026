package catalog

import (
	"fmt"

	"pizzeria-backend/internal/audit"
	"pizzeria-backend/internal/auth"
	"pizzeria-backend/internal/database"
	"pizzeria-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type ProductRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    string           `json:"category"`
	Active      *bool            `json:"active"`
}

type ProductResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Active      bool            `json:"active"`
}

func productResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Active:      p.Active,
	}
}

// -------------------------------------------------
// POST /api/products
// -------------------------------------------------
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Ürün adı zorunlu")
		}
		if body.Price == nil || body.Price.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "Fiyat 0 veya daha büyük olmalı")
		}

		product := models.Product{
			Name:        body.Name,
			Description: body.Description,
			Price:       *body.Price,
			Category:    body.Category,
			Active:      true,
		}

		if err := database.DB.Create(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün oluşturulamadı")
		}

		if user, err := auth.CurrentUser(c); err == nil {
			if logErr := audit.WriteLog(database.DB, audit.LogOptions{
				UserID:      user.ID,
				UserName:    user.Name,
				EntityType:  "product",
				EntityID:    fmt.Sprint(product.ID),
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Ürün eklendi: %s - %s", product.Name, product.Price.StringFixed(2)),
				Before:      nil,
				After:       productResponse(&product),
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(productResponse(&product))
	}
}

// -------------------------------------------------
// GET /api/products?category=Pizzas&active=true
// -------------------------------------------------
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Product{})

		if category := c.Query("category"); category != "" {
			dbq = dbq.Where("category = ?", category)
		}
		if activeStr := c.Query("active"); activeStr != "" {
			dbq = dbq.Where("active = ?", activeStr == "true")
		}

		var products []models.Product
		if err := dbq.Order("category ASC, name ASC").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler listelenemedi")
		}

		resp := make([]ProductResponse, 0, len(products))
		for i := range products {
			resp = append(resp, productResponse(&products[i]))
		}

		return c.JSON(resp)
	}
}

// -------------------------------------------------
// PUT /api/products/:id
// -------------------------------------------------
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ürün ID")
		}

		var product models.Product
		if err := database.DB.First(&product, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}
		before := productResponse(&product)

		var body ProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Name != "" {
			product.Name = body.Name
		}
		if body.Description != "" {
			product.Description = body.Description
		}
		if body.Price != nil {
			if body.Price.IsNegative() {
				return fiber.NewError(fiber.StatusBadRequest, "Fiyat negatif olamaz")
			}
			product.Price = *body.Price
		}
		if body.Category != "" {
			product.Category = body.Category
		}
		if body.Active != nil {
			product.Active = *body.Active
		}

		if err := database.DB.Save(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün güncellenemedi")
		}

		if user, err := auth.CurrentUser(c); err == nil {
			if logErr := audit.WriteLog(database.DB, audit.LogOptions{
				UserID:      user.ID,
				UserName:    user.Name,
				EntityType:  "product",
				EntityID:    fmt.Sprint(product.ID),
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Ürün güncellendi: %s", product.Name),
				Before:      before,
				After:       productResponse(&product),
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.JSON(productResponse(&product))
	}
}

// -------------------------------------------------
// DELETE /api/products/:id
// Satış kalemleri ürüne bağlı olduğu için silmek yerine pasife çekilir
// -------------------------------------------------
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ürün ID")
		}

		var product models.Product
		if err := database.DB.First(&product, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}
		before := productResponse(&product)

		product.Active = false
		if err := database.DB.Save(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün silinemedi")
		}

		if user, err := auth.CurrentUser(c); err == nil {
			if logErr := audit.WriteLog(database.DB, audit.LogOptions{
				UserID:      user.ID,
				UserName:    user.Name,
				EntityType:  "product",
				EntityID:    fmt.Sprint(product.ID),
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Ürün pasife alındı: %s", product.Name),
				Before:      before,
				After:       productResponse(&product),
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.JSON(fiber.Map{"message": "Ürün pasife alındı"})
	}
}
