package sales

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pizzeria-backend/internal/auth"
	"pizzeria-backend/internal/database"
	"pizzeria-backend/internal/models"
	"pizzeria-backend/internal/register"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testRegisterID = "test-cash-register"

// handler'lar global database.DB üzerinden çalışır; test kendi sqlite
// veritabanını global'e bağlar
func setupSalesTest(t *testing.T) (*gorm.DB, *models.User, *register.Service) {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Product{},
		&models.Sale{},
		&models.SaleItem{},
		&models.CashRegister{},
		&models.CashMovement{},
		&models.CashTicket{},
		&models.AuditLog{},
	))

	require.NoError(t, db.Create(&models.CashRegister{
		ID:             testRegisterID,
		IsOpen:         false,
		CurrentBalance: decimal.Zero,
	}).Error)

	user := models.User{
		Name:         "Maria",
		Email:        "maria@test.local",
		PasswordHash: "x",
		Role:         models.RoleCashier,
		Active:       true,
	}
	require.NoError(t, db.Create(&user).Error)

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })

	return db, &user, register.NewService(db, testRegisterID, time.UTC)
}

func newSalesTestApp(userID uint, regSvc *register.Service) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
	// JWT katmanını atlayıp locals'ı doğrudan doldur
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, userID)
		return c.Next()
	})
	app.Post("/sales", CreateSaleHandler(regSvc))
	app.Get("/sales/verify/:orderNumber", VerifySaleHandler())
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) (int, string) {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, buf.String()
}

func TestCreateSaleValidation(t *testing.T) {
	_, user, regSvc := setupSalesTest(t)
	app := newSalesTestApp(user.ID, regSvc)

	t.Run("bilinmeyen ödeme yöntemi reddedilir", func(t *testing.T) {
		code, _ := postJSON(t, app, "/sales", fiber.Map{
			"payment_method": "bitcoin",
			"items":          []fiber.Map{{"product_id": 1, "quantity": 1}},
		})
		assert.Equal(t, fiber.StatusBadRequest, code)
	})

	t.Run("kalemsiz satış reddedilir", func(t *testing.T) {
		code, _ := postJSON(t, app, "/sales", fiber.Map{
			"payment_method": "cash",
			"items":          []fiber.Map{},
		})
		assert.Equal(t, fiber.StatusBadRequest, code)
	})

	t.Run("negatif indirim reddedilir", func(t *testing.T) {
		code, _ := postJSON(t, app, "/sales", fiber.Map{
			"payment_method": "cash",
			"discount":       "-100",
			"items":          []fiber.Map{{"product_id": 1, "quantity": 1}},
		})
		assert.Equal(t, fiber.StatusBadRequest, code)
	})
}

func TestCreateSaleDecimalMath(t *testing.T) {
	db, user, regSvc := setupSalesTest(t)
	app := newSalesTestApp(user.ID, regSvc)

	pizza := models.Product{Name: "Pizza Margherita", Price: decimal.NewFromInt(25000), Category: "Pizzas", Active: true}
	soda := models.Product{Name: "Coca Cola 1L", Price: decimal.NewFromInt(15000), Category: "Bebidas", Active: true}
	require.NoError(t, db.Create(&pizza).Error)
	require.NoError(t, db.Create(&soda).Error)

	// açık kasa: nakit satış kasa defterine de düşmeli
	_, err := regSvc.Open(user, decimal.Zero)
	require.NoError(t, err)

	code, body := postJSON(t, app, "/sales", fiber.Map{
		"payment_method": "cash",
		"discount":       "5000",
		"items": []fiber.Map{
			{"product_id": pizza.ID, "quantity": 2},
			{"product_id": soda.ID, "quantity": 1},
		},
	})
	require.Equal(t, fiber.StatusCreated, code, body)

	var sale models.Sale
	require.NoError(t, db.Preload("Items").First(&sale).Error)

	assert.True(t, strings.HasPrefix(sale.OrderNumber, "V-"))
	assert.Equal(t, "65000.00", sale.Subtotal.StringFixed(2)) // 2x25000 + 15000
	assert.Equal(t, "5000.00", sale.Discount.StringFixed(2))
	assert.Equal(t, "60000.00", sale.Total.StringFixed(2))
	require.Len(t, sale.Items, 2)
	assert.Equal(t, "25000.00", sale.Items[0].Price.StringFixed(2)) // satış anı fiyatı saklanır

	var mov models.CashMovement
	require.NoError(t, db.Where("type = ?", models.MovementSale).First(&mov).Error)
	assert.Equal(t, "60000.00", mov.Amount.StringFixed(2))
}

func TestCreateSaleRejectsInactiveProduct(t *testing.T) {
	db, user, regSvc := setupSalesTest(t)
	app := newSalesTestApp(user.ID, regSvc)

	old := models.Product{Name: "Menüden kalkan pizza", Price: decimal.NewFromInt(10000), Active: false}
	require.NoError(t, db.Create(&old).Error)

	code, _ := postJSON(t, app, "/sales", fiber.Map{
		"payment_method": "card",
		"items":          []fiber.Map{{"product_id": old.ID, "quantity": 1}},
	})
	assert.Equal(t, fiber.StatusBadRequest, code)

	// başarısız satış hiç iz bırakmaz
	var n int64
	require.NoError(t, db.Model(&models.Sale{}).Count(&n).Error)
	assert.EqualValues(t, 0, n)
}

func TestVerifySale(t *testing.T) {
	db, user, regSvc := setupSalesTest(t)
	app := newSalesTestApp(user.ID, regSvc)

	sale := models.Sale{
		OrderNumber:   fmt.Sprintf("V-%d", time.Now().UnixMilli()),
		UserID:        user.ID,
		PaymentMethod: models.PaymentCard,
		Subtotal:      decimal.NewFromInt(30000),
		Discount:      decimal.Zero,
		Total:         decimal.NewFromInt(30000),
		CreatedAt:     time.Now(),
	}
	require.NoError(t, db.Create(&sale).Error)

	req := httptest.NewRequest("GET", "/sales/verify/"+sale.OrderNumber, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("GET", "/sales/verify/V-yok", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
