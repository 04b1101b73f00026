package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem - mutfak/depo stok kalemi (satış ürünlerinden bağımsız)
type InventoryItem struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"size:100;not null;unique"`
	Unit        string          `gorm:"size:20;not null"` // kg, adet, litre vs.
	Quantity    decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	MinQuantity decimal.Decimal `gorm:"type:decimal(12,3)"` // kritik stok eşiği
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
