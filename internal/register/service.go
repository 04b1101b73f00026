package register

import (
	"errors"
	"fmt"
	"math"
	"time"

	"pizzeria-backend/internal/audit"
	"pizzeria-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service - kasa durum makinesi. Kasa satırı yalnızca buradan değişir.
// registerID ve saat dilimi config'den gelir; now testlerde sabitlenebilsin
// diye alan olarak tutulur ve her işlem saati tek sefer okur.
type Service struct {
	db         *gorm.DB
	registerID string
	now        func() time.Time
}

func NewService(db *gorm.DB, registerID string, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		db:         db,
		registerID: registerID,
		now:        func() time.Time { return time.Now().In(loc) },
	}
}

type OpenResult struct {
	Register models.CashRegister
	Movement models.CashMovement
}

type CloseResult struct {
	Register models.CashRegister
	Movement models.CashMovement
	Ticket   models.CashTicket
}

type ExtractResult struct {
	Register models.CashRegister
	Movement models.CashMovement
}

type SummaryResult struct {
	SalesTotals
	IsOpen    bool
	OpenedAt  *time.Time
	ClosedAt  *time.Time
	HoursOpen float64
}

// registerSnapshot - audit log'un before/after alanları için sade görünüm
func registerSnapshot(reg *models.CashRegister) map[string]interface{} {
	return map[string]interface{}{
		"id":              reg.ID,
		"is_open":         reg.IsOpen,
		"current_balance": reg.CurrentBalance,
		"last_opened_at":  reg.LastOpenedAt,
		"last_closed_at":  reg.LastClosedAt,
	}
}

func (s *Service) loadRegister(tx *gorm.DB) (*models.CashRegister, error) {
	var reg models.CashRegister
	if err := tx.First(&reg, "id = ?", s.registerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegisterNotFound
		}
		return nil, fmt.Errorf("kasa satırı okunamadı: %w", err)
	}
	return &reg, nil
}

// Open - kasayı açar. Koşullu update sayesinde iki eşzamanlı açma
// isteğinden yalnızca biri geçer; kaybeden ErrAlreadyOpen alır ve hiçbir
// satır yazılmaz.
func (s *Service) Open(user *models.User, initialAmount decimal.Decimal) (*OpenResult, error) {
	if initialAmount.IsNegative() {
		return nil, ErrInvalidAmount
	}

	now := s.now()
	var res OpenResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		reg, err := s.loadRegister(tx)
		if err != nil {
			return err
		}
		before := registerSnapshot(reg)

		upd := tx.Model(&models.CashRegister{}).
			Where("id = ? AND is_open = ?", s.registerID, false).
			Updates(map[string]interface{}{
				"is_open":         true,
				"current_balance": initialAmount,
				"last_opened_at":  now,
			})
		if upd.Error != nil {
			return fmt.Errorf("kasa açılamadı: %w", upd.Error)
		}
		if upd.RowsAffected == 0 {
			return ErrAlreadyOpen
		}

		reg.IsOpen = true
		reg.CurrentBalance = initialAmount
		reg.LastOpenedAt = &now

		mov := models.CashMovement{
			RegisterID:  reg.ID,
			UserID:      user.ID,
			Type:        models.MovementOpening,
			Amount:      initialAmount,
			Description: "Kasa açılışı",
			CreatedAt:   now,
		}
		if err := tx.Create(&mov).Error; err != nil {
			return fmt.Errorf("açılış hareketi yazılamadı: %w", err)
		}

		if err := audit.WriteLog(tx, audit.LogOptions{
			UserID:      user.ID,
			UserName:    user.Name,
			EntityType:  "cash_register",
			EntityID:    reg.ID,
			Action:      models.AuditActionOpenRegister,
			Description: fmt.Sprintf("Kasa açıldı, başlangıç tutarı %s", initialAmount.StringFixed(2)),
			Before:      before,
			After:       registerSnapshot(reg),
		}); err != nil {
			return err
		}

		mov.User = *user
		res = OpenResult{Register: *reg, Movement: mov}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &res, nil
}

// Close - kasayı kapatır, oturum satışlarını toplar ve kalıcı kasa fişini
// yazar. Pencere, hareket zamanı ve fiş aynı now değerini paylaşır.
func (s *Service) Close(user *models.User, finalAmount decimal.Decimal) (*CloseResult, error) {
	if finalAmount.IsNegative() {
		return nil, ErrInvalidAmount
	}

	now := s.now()
	var res CloseResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		reg, err := s.loadRegister(tx)
		if err != nil {
			return err
		}
		if !reg.IsOpen {
			return ErrAlreadyClosed
		}
		before := registerSnapshot(reg)

		start, _ := resolveWindow(reg, now)
		if now.Before(start) {
			return ErrInconsistentState
		}

		totals, err := salesBetween(tx, start, now)
		if err != nil {
			return err
		}
		hoursOpen := now.Sub(start).Hours()

		upd := tx.Model(&models.CashRegister{}).
			Where("id = ? AND is_open = ?", s.registerID, true).
			Updates(map[string]interface{}{
				"is_open":         false,
				"current_balance": finalAmount,
				"last_closed_at":  now,
			})
		if upd.Error != nil {
			return fmt.Errorf("kasa kapatılamadı: %w", upd.Error)
		}
		if upd.RowsAffected == 0 {
			return ErrAlreadyClosed
		}

		reg.IsOpen = false
		reg.CurrentBalance = finalAmount
		reg.LastClosedAt = &now

		mov := models.CashMovement{
			RegisterID:  reg.ID,
			UserID:      user.ID,
			Type:        models.MovementClosing,
			Amount:      finalAmount,
			Description: "Kasa kapanışı",
			CreatedAt:   now,
		}
		if err := tx.Create(&mov).Error; err != nil {
			return fmt.Errorf("kapanış hareketi yazılamadı: %w", err)
		}

		ticket := models.CashTicket{
			RegisterID:    reg.ID,
			UserID:        user.ID,
			OpenedAt:      start,
			ClosedAt:      now,
			HoursOpen:     hoursOpen,
			CashTotal:     totals.Cash,
			CardTotal:     totals.Card,
			TransferTotal: totals.Transfer,
			TotalSales:    totals.Total,
			CreatedAt:     now,
		}
		if err := tx.Create(&ticket).Error; err != nil {
			return fmt.Errorf("kasa fişi yazılamadı: %w", err)
		}

		if err := audit.WriteLog(tx, audit.LogOptions{
			UserID:      user.ID,
			UserName:    user.Name,
			EntityType:  "cash_register",
			EntityID:    reg.ID,
			Action:      models.AuditActionCloseRegister,
			Description: fmt.Sprintf("Kasa kapatıldı, beyan edilen tutar %s", finalAmount.StringFixed(2)),
			Before:      before,
			After:       registerSnapshot(reg),
		}); err != nil {
			return err
		}

		mov.User = *user
		ticket.User = *user
		res = CloseResult{Register: *reg, Movement: mov, Ticket: ticket}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &res, nil
}

// Extract - kasadan para çekimini deftere işler. CurrentBalance bilerek
// değiştirilmez: bakiye "son beyan edilen sayım"dır, mutabakat kapanışta
// elle yapılır.
func (s *Service) Extract(user *models.User, amount decimal.Decimal, description string) (*ExtractResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	now := s.now()
	var res ExtractResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		reg, err := s.loadRegister(tx)
		if err != nil {
			return err
		}

		// Geçişlerdeki koşullu update kalıbının aynısı: açık kasa satırına
		// dokunulur ve satır commit'e kadar kilitlenir. Eşzamanlı bir
		// kapanış araya giremez, kapalı kasaya çekim yazılamaz.
		upd := tx.Model(&models.CashRegister{}).
			Where("id = ? AND is_open = ?", s.registerID, true).
			Update("updated_at", now)
		if upd.Error != nil {
			return fmt.Errorf("kasa satırı kilitlenemedi: %w", upd.Error)
		}
		if upd.RowsAffected == 0 {
			return ErrAlreadyClosed
		}
		reg.IsOpen = true

		if description == "" {
			description = "Kasadan para çekildi"
		}

		mov := models.CashMovement{
			RegisterID:  reg.ID,
			UserID:      user.ID,
			Type:        models.MovementExtraction,
			Amount:      amount,
			Description: description,
			CreatedAt:   now,
		}
		if err := tx.Create(&mov).Error; err != nil {
			return fmt.Errorf("çekim hareketi yazılamadı: %w", err)
		}

		if err := audit.WriteLog(tx, audit.LogOptions{
			UserID:      user.ID,
			UserName:    user.Name,
			EntityType:  "cash_register",
			EntityID:    reg.ID,
			Action:      models.AuditActionExtractCash,
			Description: fmt.Sprintf("Kasadan %s çekildi: %s", amount.StringFixed(2), description),
			Before:      nil,
			After:       registerSnapshot(reg),
		}); err != nil {
			return err
		}

		mov.User = *user
		res = ExtractResult{Register: *reg, Movement: mov}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &res, nil
}

// Summary - mevcut oturumun ödeme yöntemi bazlı satış toplamları. Salt
// okunur, kasa satırına dokunmaz; yazarlarla eşzamanlı çalışabilir.
func (s *Service) Summary() (*SummaryResult, error) {
	now := s.now()

	reg, err := s.loadRegister(s.db)
	if err != nil {
		return nil, err
	}

	start, end := resolveWindow(reg, now)
	if end.Before(start) {
		return nil, ErrInconsistentState
	}

	totals, err := salesBetween(s.db, start, end)
	if err != nil {
		return nil, err
	}

	var hoursOpen float64
	if reg.LastOpenedAt != nil {
		hoursOpen = math.Round(end.Sub(start).Hours()*100) / 100
	}

	return &SummaryResult{
		SalesTotals: totals,
		IsOpen:      reg.IsOpen,
		OpenedAt:    reg.LastOpenedAt,
		ClosedAt:    reg.LastClosedAt,
		HoursOpen:   hoursOpen,
	}, nil
}

// Register - kasanın güncel satırı (handler'ların okuması için)
func (s *Service) Register() (*models.CashRegister, error) {
	return s.loadRegister(s.db)
}

// Ticket - kapanış fişini id ile getirir
func (s *Service) Ticket(id uint) (*models.CashTicket, error) {
	var ticket models.CashTicket
	if err := s.db.Preload("User").First(&ticket, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

// RecordSale - açık kasaya bilgilendirme amaçlı satış hareketi ekler.
// Mutabakat satış defterinden hesaplandığı için bu kayıt toplamlara girmez;
// kasa ekranındaki hareket listesini besler. Kasa kapalıysa sessizce atlanır.
func (s *Service) RecordSale(tx *gorm.DB, userID uint, amount decimal.Decimal, orderNumber string, at time.Time) error {
	var reg models.CashRegister
	if err := tx.First(&reg, "id = ?", s.registerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if !reg.IsOpen {
		return nil
	}

	mov := models.CashMovement{
		RegisterID:  reg.ID,
		UserID:      userID,
		Type:        models.MovementSale,
		Amount:      amount,
		Description: fmt.Sprintf("Satış %s", orderNumber),
		CreatedAt:   at,
	}
	return tx.Create(&mov).Error
}
