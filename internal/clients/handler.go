package clients

import (
	"fmt"

	"pizzeria-backend/internal/audit"
	"pizzeria-backend/internal/auth"
	"pizzeria-backend/internal/database"
	"pizzeria-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ClientRequest struct {
	Name     string `json:"name"`
	LastName string `json:"last_name"`
	Cedula   string `json:"cedula"`
	RUC      string `json:"ruc"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type ClientResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
	Cedula   string `json:"cedula"`
	RUC      string `json:"ruc"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

func clientResponse(cl *models.Client) ClientResponse {
	return ClientResponse{
		ID:       cl.ID,
		Name:     cl.Name,
		LastName: cl.LastName,
		Cedula:   cl.Cedula,
		RUC:      cl.RUC,
		Email:    cl.Email,
		Phone:    cl.Phone,
		Address:  cl.Address,
	}
}

// -------------------------------------------------
// POST /api/clients
// -------------------------------------------------
func CreateClientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ClientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Müşteri adı zorunlu")
		}

		client := models.Client{
			Name:     body.Name,
			LastName: body.LastName,
			Cedula:   body.Cedula,
			RUC:      body.RUC,
			Email:    body.Email,
			Phone:    body.Phone,
			Address:  body.Address,
		}

		if err := database.DB.Create(&client).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Müşteri oluşturulamadı")
		}

		if user, err := auth.CurrentUser(c); err == nil {
			if logErr := audit.WriteLog(database.DB, audit.LogOptions{
				UserID:      user.ID,
				UserName:    user.Name,
				EntityType:  "client",
				EntityID:    fmt.Sprint(client.ID),
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Müşteri eklendi: %s %s", client.Name, client.LastName),
				Before:      nil,
				After:       clientResponse(&client),
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(clientResponse(&client))
	}
}

// -------------------------------------------------
// GET /api/clients?search=perez
// -------------------------------------------------
func ListClientsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Client{})

		if search := c.Query("search"); search != "" {
			like := "%" + search + "%"
			dbq = dbq.Where("name ILIKE ? OR last_name ILIKE ? OR cedula LIKE ? OR ruc LIKE ?", like, like, like, like)
		}

		var cls []models.Client
		if err := dbq.Order("name ASC").Limit(100).Find(&cls).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Müşteriler listelenemedi")
		}

		resp := make([]ClientResponse, 0, len(cls))
		for i := range cls {
			resp = append(resp, clientResponse(&cls[i]))
		}

		return c.JSON(resp)
	}
}

// -------------------------------------------------
// GET /api/clients/:id
// -------------------------------------------------
func GetClientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz müşteri ID")
		}

		var client models.Client
		if err := database.DB.First(&client, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Müşteri bulunamadı")
		}

		return c.JSON(clientResponse(&client))
	}
}

// -------------------------------------------------
// PUT /api/clients/:id
// -------------------------------------------------
func UpdateClientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz müşteri ID")
		}

		var client models.Client
		if err := database.DB.First(&client, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Müşteri bulunamadı")
		}
		before := clientResponse(&client)

		var body ClientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Name != "" {
			client.Name = body.Name
		}
		if body.LastName != "" {
			client.LastName = body.LastName
		}
		if body.Cedula != "" {
			client.Cedula = body.Cedula
		}
		if body.RUC != "" {
			client.RUC = body.RUC
		}
		if body.Email != "" {
			client.Email = body.Email
		}
		if body.Phone != "" {
			client.Phone = body.Phone
		}
		if body.Address != "" {
			client.Address = body.Address
		}

		if err := database.DB.Save(&client).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Müşteri güncellenemedi")
		}

		if user, err := auth.CurrentUser(c); err == nil {
			if logErr := audit.WriteLog(database.DB, audit.LogOptions{
				UserID:      user.ID,
				UserName:    user.Name,
				EntityType:  "client",
				EntityID:    fmt.Sprint(client.ID),
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Müşteri güncellendi: %s %s", client.Name, client.LastName),
				Before:      before,
				After:       clientResponse(&client),
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.JSON(clientResponse(&client))
	}
}

// -------------------------------------------------
// DELETE /api/clients/:id
// Satış kaydı olan müşteri silinmez, satışlar müşteriye bağlı kalır
// -------------------------------------------------
func DeleteClientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz müşteri ID")
		}

		var client models.Client
		if err := database.DB.First(&client, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Müşteri bulunamadı")
		}
		before := clientResponse(&client)

		var salesCount int64
		if err := database.DB.Model(&models.Sale{}).
			Where("client_id = ?", client.ID).
			Count(&salesCount).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Müşteri silinemedi")
		}
		if salesCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Satış kaydı olan müşteri silinemez")
		}

		if err := database.DB.Delete(&client).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Müşteri silinemedi")
		}

		if user, err := auth.CurrentUser(c); err == nil {
			if logErr := audit.WriteLog(database.DB, audit.LogOptions{
				UserID:      user.ID,
				UserName:    user.Name,
				EntityType:  "client",
				EntityID:    fmt.Sprint(client.ID),
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Müşteri silindi: %s %s", client.Name, client.LastName),
				Before:      before,
				After:       nil,
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.JSON(fiber.Map{"message": "Müşteri silindi"})
	}
}
