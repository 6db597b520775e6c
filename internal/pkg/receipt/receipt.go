package receipt

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
)

// Data is everything printed on a payment receipt.
type Data struct {
	Number         string
	BookingID      string
	HostelName     string
	RoomNumber     string
	StudentName    string
	StudentEmail   string
	Amount         decimal.Decimal
	PaymentMethod  string
	TransactionRef string
	TotalAmount    decimal.Decimal
	AmountPaid     decimal.Decimal
	AmountDue      decimal.Decimal
	PaymentStatus  string
	RecordedBy     string
	PaidAt         time.Time
}

// NewNumber returns a receipt number such as RCT-20260310-1a2b3c4d.
func NewNumber(at time.Time) string {
	return fmt.Sprintf("RCT-%s-%s", at.Format("20060102"), strings.ToUpper(uuid.NewString()[:8]))
}

// Render draws the receipt as an A4 PDF.
func Render(d Data) ([]byte, error) {
	if d.PaidAt.IsZero() {
		d.PaidAt = time.Now()
	}
	if d.Number == "" {
		d.Number = NewNumber(d.PaidAt)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Payment receipt "+d.Number, false)
	pdf.SetAuthor("HostelHub", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "PAYMENT RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	line(pdf, "Receipt No", d.Number)
	line(pdf, "Date", d.PaidAt.Format("2006-01-02 15:04"))
	line(pdf, "Booking", d.BookingID)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Received from")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	line(pdf, "Student", or(d.StudentName, "-"))
	if d.StudentEmail != "" {
		line(pdf, "Email", d.StudentEmail)
	}
	line(pdf, "Hostel", or(d.HostelName, "-"))
	line(pdf, "Room", or(d.RoomNumber, "-"))
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Payment")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	line(pdf, "Amount", d.Amount.StringFixed(2))
	line(pdf, "Method", strings.ReplaceAll(d.PaymentMethod, "_", " "))
	if d.TransactionRef != "" {
		line(pdf, "Reference", d.TransactionRef)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Balance")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	line(pdf, "Total", d.TotalAmount.StringFixed(2))
	line(pdf, "Paid to date", d.AmountPaid.StringFixed(2))
	line(pdf, "Outstanding", d.AmountDue.StringFixed(2))
	line(pdf, "Status", or(d.PaymentStatus, "-"))

	if d.RecordedBy != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, "Recorded by "+d.RecordedBy+". This receipt is generated automatically and is valid without signature.", "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}

func line(pdf *gofpdf.Fpdf, label, value string) {
	pdf.CellFormat(40, 7, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, ": "+value, "", 1, "L", false, 0, "")
}

func or(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
