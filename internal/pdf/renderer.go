// Package pdf renders receipt views into downloadable PDF documents.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"go.uber.org/fx"

	"github.com/mesa-labs/mesa/internal/dto"
)

// Renderer turns a receipt view into a PDF byte stream.
type Renderer struct{}

// Module provides the PDF renderer to Fx.
var Module = fx.Provide(NewRenderer)

// NewRenderer constructs a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render produces the printable receipt document.
func (r *Renderer) Render(receipt dto.Receipt) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(receipt.ReceiptNumber, false)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, "Receipt "+receipt.ReceiptNumber, "", 1, "C", false, 0, "")

	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 6, fmt.Sprintf("Date: %s", receipt.Date.Format("2006-01-02 15:04")), "", 1, "C", false, 0, "")
	doc.CellFormat(0, 6, fmt.Sprintf("Table %s (seats %d)", receipt.Table.Number, receipt.Table.Capacity), "", 1, "C", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(80, 7, "Item", "B", 0, "L", false, 0, "")
	doc.CellFormat(20, 7, "Qty", "B", 0, "R", false, 0, "")
	doc.CellFormat(40, 7, "Unit", "B", 0, "R", false, 0, "")
	doc.CellFormat(40, 7, "Subtotal", "B", 1, "R", false, 0, "")

	doc.SetFont("Helvetica", "", 10)
	for _, item := range receipt.Items {
		doc.CellFormat(80, 7, item.Name, "", 0, "L", false, 0, "")
		doc.CellFormat(20, 7, fmt.Sprintf("%d", item.Quantity), "", 0, "R", false, 0, "")
		doc.CellFormat(40, 7, item.UnitPrice, "", 0, "R", false, 0, "")
		doc.CellFormat(40, 7, item.Subtotal, "", 1, "R", false, 0, "")
		if item.SpecialInstructions != "" {
			doc.SetFont("Helvetica", "I", 8)
			doc.CellFormat(180, 5, "  "+item.SpecialInstructions, "", 1, "L", false, 0, "")
			doc.SetFont("Helvetica", "", 10)
		}
	}

	doc.Ln(4)
	r.summaryLine(doc, "Subtotal", receipt.Summary.Subtotal, false)
	r.summaryLine(doc, "Tax ("+receipt.Summary.TaxRate+")", receipt.Summary.Tax, false)
	r.summaryLine(doc, "Service charge ("+receipt.Summary.ServiceChargeRate+")", receipt.Summary.ServiceCharge, false)
	r.summaryLine(doc, "Grand total", receipt.Summary.GrandTotal, true)

	doc.Ln(6)
	doc.SetFont("Helvetica", "", 9)
	doc.CellFormat(0, 5, "Payment status: "+receipt.PaymentStatus, "", 1, "L", false, 0, "")
	if receipt.OrderInfo.Notes != "" {
		doc.CellFormat(0, 5, "Notes: "+receipt.OrderInfo.Notes, "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) summaryLine(doc *fpdf.Fpdf, label, value string, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	doc.SetFont("Helvetica", style, 10)
	doc.CellFormat(140, 7, label, "", 0, "R", false, 0, "")
	doc.CellFormat(40, 7, value, "", 1, "R", false, 0, "")
}
