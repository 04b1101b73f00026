package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"     // nakit
	PaymentCard     PaymentMethod = "card"     // kart
	PaymentTransfer PaymentMethod = "transfer" // havale
)

// ValidPaymentMethod - satış oluşturulurken yöntem burada doğrulanır; bilinmeyen
// yöntem satış defterine hiç giremez, kasa mutabakatı da bu sayede eksiksiz kalır
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return true
	}
	return false
}

type Sale struct {
	ID            uint          `gorm:"primaryKey"`
	OrderNumber   string        `gorm:"size:40;uniqueIndex;not null"`
	UserID        uint          `gorm:"index;not null"`
	User          User
	ClientID      *uint `gorm:"index"`
	Client        *Client
	PaymentMethod PaymentMethod   `gorm:"size:20;not null"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Discount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt     time.Time       `gorm:"index"`

	Items []SaleItem
}

type SaleItem struct {
	ID        uint `gorm:"primaryKey"`
	SaleID    uint `gorm:"index;not null"`
	ProductID uint `gorm:"index;not null"`
	Product   Product
	Quantity  int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null"` // satış anındaki birim fiyat
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}
