package receipt

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/kirinyoku/tixmarket/internal/domain"
	qrcode "github.com/skip2/go-qrcode"
)

// Render builds a single-page e-ticket for a paid booking. The QR code
// carries the transaction ID for boarding checks.
func Render(p domain.Payment, b domain.Booking) ([]byte, error) {
	const op = "receipt.Render"

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 22)
	pdf.Cell(0, 15, "TIXMARKET E-TICKET")
	pdf.Ln(18)

	pdf.SetDrawColor(220, 220, 220)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(8)

	yStart := pdf.GetY()
	pdf.SetFillColor(245, 245, 245)
	pdf.Rect(15, yStart, 120, 55, "F")

	pdf.SetXY(20, yStart+7)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, "JOURNEY")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 12)
	line(pdf, "Ticket: %s", b.TicketTitle)
	line(pdf, "Route: %s to %s (%s)", b.From, b.To, strings.ToUpper(string(b.TransportType)))
	line(pdf, "Departure: %s %s", b.DepartureDate, b.DepartureTime)
	line(pdf, "Seats: %d", p.Quantity)

	png, err := qrcode.Encode(p.TransactionID, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("%s: qr: %w", op, err)
	}
	opts := gofpdf.ImageOptions{ImageType: "png"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("qr", 145, yStart+5, 45, 0, false, opts, 0, "")

	pdf.SetY(yStart + 63)
	section(pdf, "PAYMENT")
	pdf.SetFont("Helvetica", "", 12)
	line(pdf, "Transaction: %s", p.TransactionID)
	line(pdf, "Amount paid: %d", p.Amount)
	line(pdf, "Paid on: %s", p.CreatedAt.Format("2006-01-02 15:04 MST"))
	line(pdf, "Passenger: %s", p.UserEmail)
	line(pdf, "Operator: %s", p.VendorEmail)

	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(15, 285, 195, 285)
	pdf.SetY(288)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 8, "Booking "+p.BookingID.String(), "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return buf.Bytes(), nil
}

func line(pdf *gofpdf.Fpdf, format string, args ...any) {
	pdf.SetX(20)
	pdf.Cell(0, 8, fmt.Sprintf(format, args...))
	pdf.Ln(6)
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(0, 9, title, "", 1, "L", true, 0, "")
	pdf.Ln(3)
}
