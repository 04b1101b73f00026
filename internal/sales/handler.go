package sales

import (
	"fmt"
	"time"

	"pizzeria-backend/internal/audit"
	"pizzeria-backend/internal/auth"
	"pizzeria-backend/internal/database"
	"pizzeria-backend/internal/models"
	"pizzeria-backend/internal/register"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateSaleItemRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type CreateSaleRequest struct {
	ClientID      *uint                   `json:"client_id"`
	PaymentMethod models.PaymentMethod    `json:"payment_method"`
	Discount      *decimal.Decimal        `json:"discount"`
	Items         []CreateSaleItemRequest `json:"items"`
}

type SaleItemResponse struct {
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type SaleResponse struct {
	ID            uint                 `json:"id"`
	OrderNumber   string               `json:"order_number"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	Subtotal      decimal.Decimal      `json:"subtotal"`
	Discount      decimal.Decimal      `json:"discount"`
	Total         decimal.Decimal      `json:"total"`
	ClientID      *uint                `json:"client_id"`
	UserName      string               `json:"user_name"`
	CreatedAt     string               `json:"created_at"`
	Items         []SaleItemResponse   `json:"items,omitempty"`
}

func saleResponse(s *models.Sale, withItems bool) SaleResponse {
	resp := SaleResponse{
		ID:            s.ID,
		OrderNumber:   s.OrderNumber,
		PaymentMethod: s.PaymentMethod,
		Subtotal:      s.Subtotal,
		Discount:      s.Discount,
		Total:         s.Total,
		ClientID:      s.ClientID,
		UserName:      s.User.Name,
		CreatedAt:     s.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if withItems {
		resp.Items = make([]SaleItemResponse, 0, len(s.Items))
		for _, it := range s.Items {
			resp.Items = append(resp.Items, SaleItemResponse{
				ProductID:   it.ProductID,
				ProductName: it.Product.Name,
				Quantity:    it.Quantity,
				Price:       it.Price,
				Subtotal:    it.Subtotal,
			})
		}
	}
	return resp
}

// -------------------------------------------------
// POST /api/sales
// -------------------------------------------------
func CreateSaleHandler(regSvc *register.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body CreateSaleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		// Yöntem burada doğrulanır; satış defterine bilinmeyen yöntem girmez
		if !models.ValidPaymentMethod(body.PaymentMethod) {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ödeme yöntemi (cash|card|transfer)")
		}

		if len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Satış en az bir kalem içermeli")
		}

		discount := decimal.Zero
		if body.Discount != nil {
			discount = *body.Discount
		}
		if discount.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "İndirim negatif olamaz")
		}

		now := time.Now()
		sale := models.Sale{
			OrderNumber:   fmt.Sprintf("V-%d", now.UnixMilli()),
			UserID:        user.ID,
			ClientID:      body.ClientID,
			PaymentMethod: body.PaymentMethod,
			Discount:      discount,
			CreatedAt:     now,
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			subtotal := decimal.Zero
			for _, it := range body.Items {
				if it.Quantity <= 0 {
					return fiber.NewError(fiber.StatusBadRequest, "Adet 0'dan büyük olmalı")
				}

				var product models.Product
				if err := tx.First(&product, "id = ? AND active = ?", it.ProductID, true).Error; err != nil {
					return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Ürün bulunamadı: %d", it.ProductID))
				}

				lineTotal := product.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
				sale.Items = append(sale.Items, models.SaleItem{
					ProductID: product.ID,
					Quantity:  it.Quantity,
					Price:     product.Price,
					Subtotal:  lineTotal,
				})
				subtotal = subtotal.Add(lineTotal)
			}

			if discount.GreaterThan(subtotal) {
				return fiber.NewError(fiber.StatusBadRequest, "İndirim satış tutarını aşamaz")
			}

			sale.Subtotal = subtotal
			sale.Total = subtotal.Sub(discount)

			if err := tx.Create(&sale).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Satış kaydedilemedi")
			}

			// Nakit satışlar açık kasanın hareket listesine de düşer;
			// mutabakat toplamları yine satış defterinden hesaplanır
			if sale.PaymentMethod == models.PaymentCash {
				if err := regSvc.RecordSale(tx, user.ID, sale.Total, sale.OrderNumber, now); err != nil {
					return fiber.NewError(fiber.StatusInternalServerError, "Kasa hareketi yazılamadı")
				}
			}

			return nil
		})
		if err != nil {
			return err
		}

		// Audit log yaz
		if logErr := audit.WriteLog(database.DB, audit.LogOptions{
			UserID:      user.ID,
			UserName:    user.Name,
			EntityType:  "sale",
			EntityID:    fmt.Sprint(sale.ID),
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Satış oluşturuldu: %s - %s", sale.OrderNumber, sale.Total.StringFixed(2)),
			Before:      nil,
			After:       saleResponse(&sale, false),
		}); logErr != nil {
			// Log hatası kritik değil, sadece log'la
			fmt.Printf("Audit log yazılamadı: %v\n", logErr)
		}

		sale.User = *user
		return c.Status(fiber.StatusCreated).JSON(saleResponse(&sale, true))
	}
}

// -------------------------------------------------
// GET /api/sales?from=2025-12-01&to=2025-12-31&payment_method=cash&page=1&limit=20
// -------------------------------------------------
func ListSalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		fromStr := c.Query("from")
		toStr := c.Query("to")
		methodStr := c.Query("payment_method")

		page := c.QueryInt("page", 1)
		if page < 1 {
			page = 1
		}
		limit := c.QueryInt("limit", 20)
		if limit < 1 || limit > 100 {
			limit = 20
		}

		dbq := database.DB.Model(&models.Sale{})

		if fromStr != "" {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from tarihi geçersiz")
			}
			dbq = dbq.Where("created_at >= ?", from)
		}

		if toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to tarihi geçersiz")
			}
			// to günü dahil
			dbq = dbq.Where("created_at < ?", to.AddDate(0, 0, 1))
		}

		if methodStr != "" {
			dbq = dbq.Where("payment_method = ?", methodStr)
		}

		var total int64
		dbq.Count(&total)

		var sls []models.Sale
		if err := dbq.
			Preload("User").
			Order("created_at DESC, id DESC").
			Offset((page - 1) * limit).
			Limit(limit).
			Find(&sls).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satışlar listelenemedi")
		}

		resp := make([]SaleResponse, 0, len(sls))
		for i := range sls {
			resp = append(resp, saleResponse(&sls[i], false))
		}

		return c.JSON(fiber.Map{
			"sales": resp,
			"total": total,
			"page":  page,
		})
	}
}

// -------------------------------------------------
// GET /api/sales/:id
// -------------------------------------------------
func GetSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz satış ID")
		}

		var sale models.Sale
		if err := database.DB.
			Preload("User").
			Preload("Client").
			Preload("Items.Product").
			First(&sale, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Satış bulunamadı")
		}

		return c.JSON(saleResponse(&sale, true))
	}
}

// -------------------------------------------------
// GET /api/sales/verify/:orderNumber
// Fiş doğrulama - müşteri tarafı, auth gerektirmez
// -------------------------------------------------
func VerifySaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		orderNumber := c.Params("orderNumber")
		if orderNumber == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Sipariş numarası zorunlu")
		}

		var sale models.Sale
		if err := database.DB.
			Preload("User").
			Preload("Client").
			Preload("Items.Product").
			First(&sale, "order_number = ?", orderNumber).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Fiş bulunamadı")
		}

		resp := saleResponse(&sale, true)

		var client fiber.Map
		if sale.Client != nil {
			client = fiber.Map{
				"name":      sale.Client.Name,
				"last_name": sale.Client.LastName,
				"cedula":    sale.Client.Cedula,
				"ruc":       sale.Client.RUC,
			}
		}

		return c.JSON(fiber.Map{
			"sale":   resp,
			"client": client,
		})
	}
}
