package infra

// pdf.go — PDF receipt generation using go-pdf/fpdf.
// Renders thermal receipt-style slips with:
//   - Shop name header
//   - Slip number and timestamp
//   - Line table (product, quantity, line total)
//   - Discount lines where applicable
//   - Bold total
//
// The output file is saved to storagePath/slip_{number}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/saadullahkhan123123/saeedautobackend/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// SlipPDFPath returns where a slip's receipt lives under storagePath.
func SlipPDFPath(slipNumber, storagePath string) string {
	return filepath.Join(storagePath, fmt.Sprintf("slip_%s.pdf", slipNumber))
}

// GenerateSlipPDF renders a PDF receipt for a slip. storagePath is created if
// needed. Returns the path to the generated file.
func GenerateSlipPDF(slip *model.Slip, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	filePath := SlipPDFPath(slip.SlipNumber, storagePath)

	// A7 ≈ 74mm × 105mm — close to thermal receipt paper
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 105},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8 // total margins = 8mm

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, "Saeed Auto Store", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Sale Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// ── Slip info ─────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, slip.SlipNumber, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, slip.CreatedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	if slip.CustomerName != "" {
		pdf.CellFormat(contentW, 4, "Customer: "+slip.CustomerName, "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Line table ────────────────────────────────────────────────────────────
	col1 := contentW * 0.52 // product name
	col2 := contentW * 0.16 // qty
	col3 := contentW * 0.32 // line total

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Product", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	totalDiscount := decimal.Zero
	for _, line := range slip.Lines {
		name := truncateLabel(line.Name, 22)
		pdf.CellFormat(col1, 5, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", line.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "Rs "+line.TotalPrice.StringFixed(2), "", 1, "R", false, 0, "")
		totalDiscount = totalDiscount.Add(line.DiscountAmount)
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 7)
	if !totalDiscount.IsZero() {
		pdf.CellFormat(col1+col2, 5, "Discount:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, "-Rs "+totalDiscount.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "Rs "+slip.TotalAmount.StringFixed(2), "", 1, "R", false, 0, "")

	if slip.PaymentMethod != "" {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "", 7)
		pdf.CellFormat(contentW, 4, "Payment: "+slip.PaymentMethod, "", 1, "L", false, 0, "")
	}

	// ── Footer ────────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Thank you for your purchase!", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}

// truncateLabel shortens a product name to max runes for the narrow receipt
// column. Rune-based so multi-byte names are never cut mid-character.
func truncateLabel(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
