package register

import (
	"fmt"
	"time"

	"pizzeria-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SalesTotals struct {
	Cash     decimal.Decimal `json:"cash"`
	Card     decimal.Decimal `json:"card"`
	Transfer decimal.Decimal `json:"transfer"`
	Total    decimal.Decimal `json:"total"`
}

// salesBetween - [start, end) içindeki satışları ödeme yöntemine göre toplar.
// Kaynak satış defteridir, kasa hareketleri değil: hareketler idari kayıtlar
// da içerdiğinden oradan toplamak çift sayıma yol açar.
func salesBetween(db *gorm.DB, start, end time.Time) (SalesTotals, error) {
	type row struct {
		Method string          `gorm:"column:payment_method"`
		Sum    decimal.Decimal `gorm:"column:sum"`
	}
	var rows []row

	err := db.Model(&models.Sale{}).
		Select("payment_method, COALESCE(SUM(total), 0) AS sum").
		Where("created_at >= ? AND created_at < ?", start, end).
		Group("payment_method").
		Scan(&rows).Error
	if err != nil {
		return SalesTotals{}, fmt.Errorf("satış toplamları hesaplanamadı: %w", err)
	}

	totals := SalesTotals{
		Cash:     decimal.Zero,
		Card:     decimal.Zero,
		Transfer: decimal.Zero,
	}

	for _, r := range rows {
		switch models.PaymentMethod(r.Method) {
		case models.PaymentCash:
			totals.Cash = r.Sum
		case models.PaymentCard:
			totals.Card = r.Sum
		case models.PaymentTransfer:
			totals.Transfer = r.Sum
		}
	}

	totals.Total = totals.Cash.Add(totals.Card).Add(totals.Transfer)
	return totals, nil
}
