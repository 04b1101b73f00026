package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashRegister - tek fiziksel kasa için tek satır. Durum geçişleri sadece
// register servisinden yapılır, satır hiçbir handler'da doğrudan değiştirilmez.
type CashRegister struct {
	ID             string          `gorm:"size:64;primaryKey"` // config'den gelir
	IsOpen         bool            `gorm:"not null;default:false"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(12,2);not null"` // son beyan edilen nakit
	LastOpenedAt   *time.Time
	LastClosedAt   *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type MovementType string

const (
	MovementOpening    MovementType = "opening"
	MovementClosing    MovementType = "closing"
	MovementSale       MovementType = "sale"
	MovementExtraction MovementType = "extraction"
)

// CashMovement - kasa defteri kaydı. Append-only: asla update/delete edilmez,
// tutar her zaman pozitif büyüklüktür, yönü Type belirler.
type CashMovement struct {
	ID          uint   `gorm:"primaryKey"`
	RegisterID  string `gorm:"size:64;index;not null"`
	UserID      uint   `gorm:"index;not null"`
	User        User
	Type        MovementType    `gorm:"size:20;not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Description string          `gorm:"size:255"`
	CreatedAt   time.Time       `gorm:"index"`
}

// CashTicket - kapanışta oluşturulan kalıcı oturum özeti. HoursOpen ayrıca
// saklanır ki hesaplama mantığı sonradan değişse bile eski fişler bozulmasın.
type CashTicket struct {
	ID            uint   `gorm:"primaryKey"`
	RegisterID    string `gorm:"size:64;index;not null"`
	UserID        uint   `gorm:"index;not null"`
	User          User
	OpenedAt      time.Time       `gorm:"not null"`
	ClosedAt      time.Time       `gorm:"not null"`
	HoursOpen     float64         `gorm:"not null"` // süre, para değil
	CashTotal     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CardTotal     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TransferTotal decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalSales    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt     time.Time
}
