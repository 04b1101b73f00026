package register

import (
	"testing"
	"time"

	"pizzeria-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestResolveWindow(t *testing.T) {
	created := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	opened := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	closed := time.Date(2025, 3, 10, 18, 30, 0, 0, time.UTC)
	now := time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		reg       models.CashRegister
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "hiç açılmamış kasa oluşturulma anından itibaren sayılır",
			reg:       models.CashRegister{CreatedAt: created, IsOpen: false},
			wantStart: created,
			wantEnd:   now,
		},
		{
			name: "açık kasa şimdiki zamana kadar sayılır",
			reg: models.CashRegister{
				CreatedAt:    created,
				IsOpen:       true,
				LastOpenedAt: &opened,
			},
			wantStart: opened,
			wantEnd:   now,
		},
		{
			name: "kapalı kasa son kapanışta biter",
			reg: models.CashRegister{
				CreatedAt:    created,
				IsOpen:       false,
				LastOpenedAt: &opened,
				LastClosedAt: &closed,
			},
			wantStart: opened,
			wantEnd:   closed,
		},
		{
			name: "kapalı ama hiç kapanış kaydı olmayan kasa now ile biter",
			reg: models.CashRegister{
				CreatedAt:    created,
				IsOpen:       false,
				LastOpenedAt: &opened,
			},
			wantStart: opened,
			wantEnd:   now,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := resolveWindow(&tt.reg, now)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}
