package dashboard

import (
	"fmt"
	"time"

	"pizzeria-backend/internal/database"
	"pizzeria-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type SalesChartPoint struct {
	Label    string  `json:"label"` // tarih / hafta başlangıcı / ay başlangıcı
	Cash     float64 `json:"cash"`
	Card     float64 `json:"card"`
	Transfer float64 `json:"transfer"`
	Total    float64 `json:"total"`
}

type SalesChartGrandTotals struct {
	Cash     float64 `json:"cash"`
	Card     float64 `json:"card"`
	Transfer float64 `json:"transfer"`
	Total    float64 `json:"total"`
}

type SalesChartResponse struct {
	Period      string                `json:"period"` // daily | weekly | monthly
	From        string                `json:"from"`
	To          string                `json:"to"`
	Points      []SalesChartPoint     `json:"points"`
	GrandTotals SalesChartGrandTotals `json:"grand_totals"`
}

// GET /api/dashboard/sales-chart?period=daily&count=7
func SalesChartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		period := c.Query("period", "daily") // daily | weekly | monthly
		countStr := c.Query("count", "")

		var count int
		if countStr == "" {
			switch period {
			case "weekly":
				count = 8
			case "monthly":
				count = 12
			default:
				period = "daily"
				count = 7
			}
		} else {
			if _, err := fmt.Sscan(countStr, &count); err != nil || count <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "count geçersiz")
			}
		}

		now := time.Now()
		loc := now.Location()
		// bugünün 00:00'ı
		end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		var start time.Time

		switch period {
		case "weekly":
			// count hafta geriye
			days := 7 * (count - 1)
			start = end.AddDate(0, 0, -days)
		case "monthly":
			// ilgili ayların başından itibaren
			end = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
			start = end.AddDate(0, -(count - 1), 0)
		default:
			// daily
			period = "daily"
			start = end.AddDate(0, 0, -(count - 1))
		}

		// aggregation sonucu satır yapısı
		type row struct {
			Bucket time.Time `gorm:"column:bucket"`
			Method string    `gorm:"column:method"`
			Total  float64   `gorm:"column:total"`
		}
		var rows []row

		var sql string
		switch period {
		case "weekly":
			sql = `
				SELECT date_trunc('week', created_at)::date AS bucket,
					   payment_method AS method,
					   SUM(total) AS total
				FROM sales
				WHERE created_at >= ? AND created_at < ?
				GROUP BY bucket, method
				ORDER BY bucket ASC;
			`
		case "monthly":
			sql = `
				SELECT date_trunc('month', created_at)::date AS bucket,
					   payment_method AS method,
					   SUM(total) AS total
				FROM sales
				WHERE created_at >= ? AND created_at < ?
				GROUP BY bucket, method
				ORDER BY bucket ASC;
			`
		default: // daily
			sql = `
				SELECT created_at::date AS bucket,
					   payment_method AS method,
					   SUM(total) AS total
				FROM sales
				WHERE created_at >= ? AND created_at < ?
				GROUP BY bucket, method
				ORDER BY bucket ASC;
			`
		}

		// end eksik periyodu da kapsasın diye bir periyot ileri alınır
		var queryEnd time.Time
		switch period {
		case "weekly":
			queryEnd = end.AddDate(0, 0, 7)
		case "monthly":
			queryEnd = end.AddDate(0, 1, 0)
		default:
			queryEnd = end.AddDate(0, 0, 1)
		}

		if err := database.DB.Raw(sql, start, queryEnd).Scan(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Veri toplanırken hata oluştu")
		}

		// bucket bazlı toplama
		type bucketAgg struct {
			Bucket   time.Time
			Cash     float64
			Card     float64
			Transfer float64
			Total    float64
		}

		buckets := make(map[time.Time]*bucketAgg)

		for _, r := range rows {
			agg, ok := buckets[r.Bucket]
			if !ok {
				agg = &bucketAgg{Bucket: r.Bucket}
				buckets[r.Bucket] = agg
			}

			switch r.Method {
			case string(models.PaymentCash):
				agg.Cash += r.Total
			case string(models.PaymentCard):
				agg.Card += r.Total
			case string(models.PaymentTransfer):
				agg.Transfer += r.Total
			}
		}

		// map'ten slice'a taşı ve sıralı hale getir
		ordered := make([]bucketAgg, 0, len(buckets))
		for _, v := range buckets {
			v.Total = v.Cash + v.Card + v.Transfer
			ordered = append(ordered, *v)
		}

		// tarih sıralaması
		for i := 0; i < len(ordered); i++ {
			for j := i + 1; j < len(ordered); j++ {
				if ordered[j].Bucket.Before(ordered[i].Bucket) {
					ordered[i], ordered[j] = ordered[j], ordered[i]
				}
			}
		}

		points := make([]SalesChartPoint, 0, len(ordered))
		grand := SalesChartGrandTotals{}

		for _, b := range ordered {
			label := b.Bucket.Format("2006-01-02")
			points = append(points, SalesChartPoint{
				Label:    label,
				Cash:     b.Cash,
				Card:     b.Card,
				Transfer: b.Transfer,
				Total:    b.Total,
			})

			grand.Cash += b.Cash
			grand.Card += b.Card
			grand.Transfer += b.Transfer
			grand.Total += b.Total
		}

		resp := SalesChartResponse{
			Period:      period,
			From:        start.Format("2006-01-02"),
			To:          end.Format("2006-01-02"),
			Points:      points,
			GrandTotals: grand,
		}

		return c.JSON(resp)
	}
}
