package register

import (
	"errors"
	"fmt"
	"time"

	"pizzeria-backend/internal/auth"
	"pizzeria-backend/internal/database"
	"pizzeria-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OpenRegisterRequest struct {
	InitialAmount *decimal.Decimal `json:"initial_amount"` // boşsa 0
}

type CloseRegisterRequest struct {
	FinalAmount *decimal.Decimal `json:"final_amount"` // boşsa 0
}

type ExtractRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type MovementResponse struct {
	ID          uint                `json:"id"`
	Type        models.MovementType `json:"type"`
	Amount      decimal.Decimal     `json:"amount"`
	Description string              `json:"description"`
	UserName    string              `json:"user_name"`
	CreatedAt   string              `json:"created_at"`
}

type RegisterResponse struct {
	ID             string          `json:"id"`
	IsOpen         bool            `json:"is_open"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	LastOpenedAt   *time.Time      `json:"last_opened_at"`
	LastClosedAt   *time.Time      `json:"last_closed_at"`
}

func registerResponse(reg *models.CashRegister) RegisterResponse {
	return RegisterResponse{
		ID:             reg.ID,
		IsOpen:         reg.IsOpen,
		CurrentBalance: reg.CurrentBalance,
		LastOpenedAt:   reg.LastOpenedAt,
		LastClosedAt:   reg.LastClosedAt,
	}
}

func movementResponse(mov *models.CashMovement) MovementResponse {
	return MovementResponse{
		ID:          mov.ID,
		Type:        mov.Type,
		Amount:      mov.Amount,
		Description: mov.Description,
		UserName:    mov.User.Name,
		CreatedAt:   mov.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// mapServiceError - core'un tipli hatalarını HTTP durumlarına çevirir
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, ErrAlreadyOpen), errors.Is(err, ErrAlreadyClosed), errors.Is(err, ErrInvalidAmount):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrRegisterNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrInconsistentState):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "Kasa işlemi gerçekleştirilemedi")
	}
}

// -------------------------------------------------
// GET /api/cash-register
// -------------------------------------------------
func GetRegisterHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reg, err := svc.Register()
		if err != nil {
			return mapServiceError(err)
		}

		page := c.QueryInt("page", 1)
		if page < 1 {
			page = 1
		}
		limit := c.QueryInt("limit", 20)
		if limit < 1 || limit > 100 {
			limit = 20
		}

		var movs []models.CashMovement
		if err := database.DB.
			Preload("User").
			Where("register_id = ?", reg.ID).
			Order("created_at DESC, id DESC").
			Offset((page - 1) * limit).
			Limit(limit).
			Find(&movs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kasa hareketleri listelenemedi")
		}

		var total int64
		database.DB.Model(&models.CashMovement{}).Where("register_id = ?", reg.ID).Count(&total)

		resp := make([]MovementResponse, 0, len(movs))
		for i := range movs {
			resp = append(resp, movementResponse(&movs[i]))
		}

		return c.JSON(fiber.Map{
			"register":        registerResponse(reg),
			"movements":       resp,
			"total_movements": total,
			"page":            page,
		})
	}
}

// -------------------------------------------------
// GET /api/cash-register/movements
// Kasa defterinin tamamı, sayfalı; ekran GetRegisterHandler'daki kısa
// listeyi kullanır, burası dökümler içindir
// -------------------------------------------------
func ListMovementsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reg, err := svc.Register()
		if err != nil {
			return mapServiceError(err)
		}

		page := c.QueryInt("page", 1)
		if page < 1 {
			page = 1
		}
		limit := c.QueryInt("limit", 50)
		if limit < 1 || limit > 200 {
			limit = 50
		}

		dbq := database.DB.Model(&models.CashMovement{}).Where("register_id = ?", reg.ID)
		if movType := c.Query("type"); movType != "" {
			dbq = dbq.Where("type = ?", movType)
		}

		var total int64
		dbq.Count(&total)

		var movs []models.CashMovement
		if err := dbq.
			Preload("User").
			Order("created_at DESC, id DESC").
			Offset((page - 1) * limit).
			Limit(limit).
			Find(&movs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kasa hareketleri listelenemedi")
		}

		resp := make([]MovementResponse, 0, len(movs))
		for i := range movs {
			resp = append(resp, movementResponse(&movs[i]))
		}

		return c.JSON(fiber.Map{
			"movements": resp,
			"total":     total,
			"page":      page,
		})
	}
}

// -------------------------------------------------
// POST /api/cash-register/open
// -------------------------------------------------
func OpenRegisterHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body OpenRegisterRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		amount := decimal.Zero
		if body.InitialAmount != nil {
			amount = *body.InitialAmount
		}

		res, err := svc.Open(user, amount)
		if err != nil {
			return mapServiceError(err)
		}

		return c.JSON(fiber.Map{
			"register": registerResponse(&res.Register),
			"movement": movementResponse(&res.Movement),
		})
	}
}

// -------------------------------------------------
// POST /api/cash-register/close
// -------------------------------------------------
func CloseRegisterHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body CloseRegisterRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		amount := decimal.Zero
		if body.FinalAmount != nil {
			amount = *body.FinalAmount
		}

		res, err := svc.Close(user, amount)
		if err != nil {
			return mapServiceError(err)
		}

		return c.JSON(fiber.Map{
			"register": registerResponse(&res.Register),
			"movement": movementResponse(&res.Movement),
			"ticket":   ticketResponse(&res.Ticket),
		})
	}
}

// -------------------------------------------------
// POST /api/cash-register/extract
// -------------------------------------------------
func ExtractHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body ExtractRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		res, err := svc.Extract(user, body.Amount, body.Description)
		if err != nil {
			return mapServiceError(err)
		}

		return c.JSON(fiber.Map{
			"register": registerResponse(&res.Register),
			"movement": movementResponse(&res.Movement),
		})
	}
}

// -------------------------------------------------
// GET /api/cash-register/summary
// -------------------------------------------------
func SummaryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sum, err := svc.Summary()
		if err != nil {
			return mapServiceError(err)
		}

		return c.JSON(fiber.Map{
			"cash":     sum.Cash,
			"card":     sum.Card,
			"transfer": sum.Transfer,
			"total":    sum.Total,
			"session_info": fiber.Map{
				"is_open":    sum.IsOpen,
				"opened_at":  sum.OpenedAt,
				"closed_at":  sum.ClosedAt,
				"hours_open": sum.HoursOpen,
			},
		})
	}
}

type TicketResponse struct {
	ID            uint            `json:"id"`
	RegisterID    string          `json:"register_id"`
	UserName      string          `json:"user_name"`
	OpenedAt      time.Time       `json:"opened_at"`
	ClosedAt      time.Time       `json:"closed_at"`
	HoursOpen     float64         `json:"hours_open"`
	CashTotal     decimal.Decimal `json:"cash_total"`
	CardTotal     decimal.Decimal `json:"card_total"`
	TransferTotal decimal.Decimal `json:"transfer_total"`
	TotalSales    decimal.Decimal `json:"total_sales"`
}

func ticketResponse(t *models.CashTicket) TicketResponse {
	name := t.User.Name
	if t.User.LastName != "" {
		name = fmt.Sprintf("%s %s", t.User.Name, t.User.LastName)
	}
	return TicketResponse{
		ID:            t.ID,
		RegisterID:    t.RegisterID,
		UserName:      name,
		OpenedAt:      t.OpenedAt,
		ClosedAt:      t.ClosedAt,
		HoursOpen:     t.HoursOpen,
		CashTotal:     t.CashTotal,
		CardTotal:     t.CardTotal,
		TransferTotal: t.TransferTotal,
		TotalSales:    t.TotalSales,
	}
}

// -------------------------------------------------
// GET /api/cash-tickets/:id
// -------------------------------------------------
func GetTicketHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz fiş ID")
		}

		ticket, err := svc.Ticket(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Fiş bulunamadı")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Fiş getirilemedi")
		}

		return c.JSON(ticketResponse(ticket))
	}
}
