package inventory

import (
	"fmt"

	"pizzeria-backend/internal/audit"
	"pizzeria-backend/internal/auth"
	"pizzeria-backend/internal/database"
	"pizzeria-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type ItemRequest struct {
	Name        string           `json:"name"`
	Unit        string           `json:"unit"`
	Quantity    *decimal.Decimal `json:"quantity"`
	MinQuantity *decimal.Decimal `json:"min_quantity"`
}

type AdjustRequest struct {
	Delta       decimal.Decimal `json:"delta"` // pozitif giriş, negatif çıkış
	Description string          `json:"description"`
}

type ItemResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
	MinQuantity decimal.Decimal `json:"min_quantity"`
	Low         bool            `json:"low"` // kritik eşiğin altında mı
}

func itemResponse(it *models.InventoryItem) ItemResponse {
	return ItemResponse{
		ID:          it.ID,
		Name:        it.Name,
		Unit:        it.Unit,
		Quantity:    it.Quantity,
		MinQuantity: it.MinQuantity,
		Low:         it.Quantity.LessThan(it.MinQuantity),
	}
}

// -------------------------------------------------
// POST /api/inventory
// -------------------------------------------------
func CreateItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Name == "" || body.Unit == "" {
			return fiber.NewError(fiber.StatusBadRequest, "İsim ve birim zorunlu")
		}

		item := models.InventoryItem{
			Name: body.Name,
			Unit: body.Unit,
		}
		if body.Quantity != nil {
			item.Quantity = *body.Quantity
		}
		if body.MinQuantity != nil {
			item.MinQuantity = *body.MinQuantity
		}

		if err := database.DB.Create(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok kalemi oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(itemResponse(&item))
	}
}

// -------------------------------------------------
// GET /api/inventory
// -------------------------------------------------
func ListItemsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var items []models.InventoryItem
		if err := database.DB.Order("name ASC").Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok listelenemedi")
		}

		resp := make([]ItemResponse, 0, len(items))
		for i := range items {
			resp = append(resp, itemResponse(&items[i]))
		}

		return c.JSON(resp)
	}
}

// -------------------------------------------------
// PUT /api/inventory/:id
// -------------------------------------------------
func UpdateItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz stok ID")
		}

		var item models.InventoryItem
		if err := database.DB.First(&item, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Stok kalemi bulunamadı")
		}

		var body ItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Name != "" {
			item.Name = body.Name
		}
		if body.Unit != "" {
			item.Unit = body.Unit
		}
		if body.Quantity != nil {
			item.Quantity = *body.Quantity
		}
		if body.MinQuantity != nil {
			item.MinQuantity = *body.MinQuantity
		}

		if err := database.DB.Save(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok kalemi güncellenemedi")
		}

		return c.JSON(itemResponse(&item))
	}
}

// -------------------------------------------------
// POST /api/inventory/:id/adjust
// Sayım ve fire düzeltmeleri için delta bazlı güncelleme
// -------------------------------------------------
func AdjustItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz stok ID")
		}

		var body AdjustRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Delta.IsZero() {
			return fiber.NewError(fiber.StatusBadRequest, "Delta 0 olamaz")
		}

		var item models.InventoryItem
		if err := database.DB.First(&item, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Stok kalemi bulunamadı")
		}
		before := itemResponse(&item)

		newQty := item.Quantity.Add(body.Delta)
		if newQty.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "Stok negatif olamaz")
		}

		item.Quantity = newQty
		if err := database.DB.Save(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok güncellenemedi")
		}

		if user, err := auth.CurrentUser(c); err == nil {
			if logErr := audit.WriteLog(database.DB, audit.LogOptions{
				UserID:      user.ID,
				UserName:    user.Name,
				EntityType:  "inventory_item",
				EntityID:    fmt.Sprint(item.ID),
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Stok düzeltmesi: %s %s %s", item.Name, body.Delta.String(), item.Unit),
				Before:      before,
				After:       itemResponse(&item),
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.JSON(itemResponse(&item))
	}
}

// -------------------------------------------------
// DELETE /api/inventory/:id
// -------------------------------------------------
func DeleteItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz stok ID")
		}

		if err := database.DB.Delete(&models.InventoryItem{}, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok kalemi silinemedi")
		}

		return c.JSON(fiber.Map{"message": "Stok kalemi silindi"})
	}
}
