package sales

import (
	"fmt"
	"time"

	"pizzeria-backend/internal/database"
	"pizzeria-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// -------------------------------------------------
// GET /api/sales/export?from=2025-12-01&to=2025-12-31
// Satışları XLSX olarak indirir
// -------------------------------------------------
func ExportSalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		fromStr := c.Query("from")
		toStr := c.Query("to")
		if fromStr == "" || toStr == "" {
			return fiber.NewError(fiber.StatusBadRequest, "from ve to zorunlu")
		}

		from, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "from tarihi geçersiz")
		}
		to, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "to tarihi geçersiz")
		}

		var sls []models.Sale
		if err := database.DB.
			Preload("User").
			Preload("Client").
			Where("created_at >= ? AND created_at < ?", from, to.AddDate(0, 0, 1)).
			Order("created_at ASC, id ASC").
			Find(&sls).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satışlar listelenemedi")
		}

		f := excelize.NewFile()
		defer f.Close()

		const sheet = "Satışlar"
		f.SetSheetName("Sheet1", sheet)

		headers := []string{"Sipariş No", "Tarih", "Ödeme Yöntemi", "Kasiyer", "Müşteri", "Ara Toplam", "İndirim", "Toplam"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
		}

		for row, s := range sls {
			clientName := ""
			if s.Client != nil {
				clientName = fmt.Sprintf("%s %s", s.Client.Name, s.Client.LastName)
			}

			values := []interface{}{
				s.OrderNumber,
				s.CreatedAt.Format("2006-01-02 15:04:05"),
				string(s.PaymentMethod),
				s.User.Name,
				clientName,
				s.Subtotal.InexactFloat64(), // rapor değeri, muhasebe kaynağı değil
				s.Discount.InexactFloat64(),
				s.Total.InexactFloat64(),
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
				f.SetCellValue(sheet, cell, v)
			}
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Excel dosyası oluşturulamadı")
		}

		filename := fmt.Sprintf("satislar-%s-%s.xlsx", fromStr, toStr)
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
		return c.Send(buf.Bytes())
	}
}
