package printing

import (
	"bytes"
	"fmt"
	"time"

	"pizzeria-backend/internal/register"

	"github.com/gofiber/fiber/v2"
	"github.com/jung-kurt/gofpdf"
)

// buildSummaryPDF - mevcut kasa özetini tek sayfalık fişe döker
func buildSummaryPDF(sum *register.SummaryResult, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Arial", "B", 14)
	pdf.AddPage()

	pdf.Cell(0, 8, tr("Kasa Özeti"))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	state := "KAPALI"
	if sum.IsOpen {
		state = "AÇIK"
	}
	pdf.Cell(0, 6, tr(fmt.Sprintf("Durum: %s", state)))
	pdf.Ln(5)
	if sum.OpenedAt != nil {
		pdf.Cell(0, 6, tr(fmt.Sprintf("Açılış: %s", sum.OpenedAt.Format("2006-01-02 15:04"))))
		pdf.Ln(5)
	}
	if sum.ClosedAt != nil {
		pdf.Cell(0, 6, tr(fmt.Sprintf("Kapanış: %s", sum.ClosedAt.Format("2006-01-02 15:04"))))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, tr(fmt.Sprintf("Açık kalınan süre: %.2f saat", sum.HoursOpen)))
	pdf.Ln(5)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Yazdırma zamanı: %s", generatedAt.Format("2006-01-02 15:04"))))
	pdf.Ln(8)

	// Toplamlar tablosu
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 6, tr("Ödeme Yöntemi"), "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 6, tr("Toplam"), "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)

	rows := []struct {
		label string
		value string
	}{
		{"Nakit", sum.Cash.StringFixed(2)},
		{"Kart", sum.Card.StringFixed(2)},
		{"Havale", sum.Transfer.StringFixed(2)},
	}
	for _, r := range rows {
		pdf.CellFormat(60, 6, tr(r.label), "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 6, r.value, "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 6, tr("Genel Toplam"), "1", 0, "L", false, 0, "")
	pdf.CellFormat(60, 6, sum.Total.StringFixed(2), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// -------------------------------------------------
// GET /api/print/cash-ticket
// -------------------------------------------------
func PrintCashTicketHandler(svc *register.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sum, err := svc.Summary()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kasa özeti alınamadı")
		}

		pdfBytes, err := buildSummaryPDF(sum, time.Now())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "PDF oluşturulamadı")
		}

		filename := fmt.Sprintf("kasa-ozeti-%s.pdf", time.Now().Format("2006-01-02"))
		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
		return c.Send(pdfBytes)
	}
}
