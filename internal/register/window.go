package register

import (
	"time"

	"pizzeria-backend/internal/models"
)

// resolveWindow - kasanın mevcut oturumunu tanımlayan [start, end) aralığı.
// start dahil, end hariç; satış toplama sorgusu da aynı kuralı kullanır.
// Aynı işlem içindeki tüm hesaplar tek bir now değeriyle yapılır, saat bir
// daha okunmaz.
func resolveWindow(reg *models.CashRegister, now time.Time) (time.Time, time.Time) {
	start := reg.CreatedAt
	if reg.LastOpenedAt != nil {
		start = *reg.LastOpenedAt
	}

	end := now
	if !reg.IsOpen && reg.LastClosedAt != nil {
		end = *reg.LastClosedAt
	}

	return start, end
}
