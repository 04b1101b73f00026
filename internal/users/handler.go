package users

import (
	"fmt"
	"strings"

	"pizzeria-backend/internal/audit"
	"pizzeria-backend/internal/auth"
	"pizzeria-backend/internal/database"
	"pizzeria-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type CreateUserRequest struct {
	Name     string          `json:"name"`
	LastName string          `json:"last_name"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"`
}

type UpdateUserRequest struct {
	Name     string          `json:"name"`
	LastName string          `json:"last_name"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"`
	Active   *bool           `json:"active"`
}

type UserResponse struct {
	ID       uint            `json:"id"`
	Name     string          `json:"name"`
	LastName string          `json:"last_name"`
	Email    string          `json:"email"`
	Role     models.UserRole `json:"role"`
	Active   bool            `json:"active"`
}

func userResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Name:     u.Name,
		LastName: u.LastName,
		Email:    u.Email,
		Role:     u.Role,
		Active:   u.Active,
	}
}

func validRole(r models.UserRole) bool {
	switch r {
	case models.RoleSysAdmin, models.RoleAdmin, models.RoleCashier:
		return true
	}
	return false
}

// -------------------------------------------------
// POST /api/users
// -------------------------------------------------
func CreateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		if body.Email == "" || body.Password == "" || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "İsim, email ve şifre zorunlu")
		}
		if !validRole(body.Role) {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz rol (sysadmin|admin|cashier)")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre hashlenemedi")
		}

		user := models.User{
			Name:         body.Name,
			LastName:     body.LastName,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         body.Role,
			Active:       true,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı oluşturulamadı")
		}

		if actor, err := auth.CurrentUser(c); err == nil {
			if logErr := audit.WriteLog(database.DB, audit.LogOptions{
				UserID:      actor.ID,
				UserName:    actor.Name,
				EntityType:  "user",
				EntityID:    fmt.Sprint(user.ID),
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Kullanıcı eklendi: %s (%s)", user.Email, user.Role),
				Before:      nil,
				After:       userResponse(&user),
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(userResponse(&user))
	}
}

// -------------------------------------------------
// GET /api/users
// -------------------------------------------------
func ListUsersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var us []models.User
		if err := database.DB.Order("name ASC").Find(&us).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcılar listelenemedi")
		}

		resp := make([]UserResponse, 0, len(us))
		for i := range us {
			resp = append(resp, userResponse(&us[i]))
		}

		return c.JSON(resp)
	}
}

// -------------------------------------------------
// PUT /api/users/:id
// -------------------------------------------------
func UpdateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz kullanıcı ID")
		}

		var user models.User
		if err := database.DB.First(&user, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kullanıcı bulunamadı")
		}
		before := userResponse(&user)

		var body UpdateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Name != "" {
			user.Name = body.Name
		}
		if body.LastName != "" {
			user.LastName = body.LastName
		}
		if body.Role != "" {
			if !validRole(body.Role) {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz rol (sysadmin|admin|cashier)")
			}
			user.Role = body.Role
		}
		if body.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Şifre hashlenemedi")
			}
			user.PasswordHash = string(hash)
		}
		if body.Active != nil {
			user.Active = *body.Active
		}

		if err := database.DB.Save(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı güncellenemedi")
		}

		if actor, err := auth.CurrentUser(c); err == nil {
			if logErr := audit.WriteLog(database.DB, audit.LogOptions{
				UserID:      actor.ID,
				UserName:    actor.Name,
				EntityType:  "user",
				EntityID:    fmt.Sprint(user.ID),
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Kullanıcı güncellendi: %s", user.Email),
				Before:      before,
				After:       userResponse(&user),
			}); logErr != nil {
				fmt.Printf("Audit log yazılamadı: %v\n", logErr)
			}
		}

		return c.JSON(userResponse(&user))
	}
}
