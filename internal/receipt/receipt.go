// Package receipt renders PDF payment receipts for paid appointments.
package receipt

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/akshalkotian/doctorappointment/internal/models"
	"github.com/jung-kurt/gofpdf"
)

var ErrNotPaid = errors.New("appointment has no successful payment")

const title = "Doctor Appointment Booking"

// Filename is the attachment name used for an appointment's receipt.
func Filename(appt models.Appointment) string {
	return fmt.Sprintf("receipt-%s.pdf", appt.ID)
}

// Render produces a one-page A4 receipt. Only appointments whose payment
// succeeded get one.
func Render(appt models.Appointment) ([]byte, error) {
	if appt.PaymentStatus != models.PaymentSuccess {
		return nil, ErrNotPaid
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetTitle("Payment receipt "+deref(appt.TransactionID), false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 70, 140)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 10, "Payment Receipt", "1", 1, "C", false, 0, "")
	pdf.Ln(2)

	addDetail(pdf, "Transaction ID", deref(appt.TransactionID))
	addDetail(pdf, "Paid At", formatTime(appt.PaidAt))
	addDetail(pdf, "Payment Method", deref(appt.PaymentMethod))
	addDetail(pdf, "Payment Details", deref(appt.PaymentInput))
	pdf.Ln(4)

	addDetail(pdf, "Patient", appt.UserName)
	addDetail(pdf, "Email", appt.UserEmail)
	addDetail(pdf, "Doctor", appt.DoctorName)
	addDetail(pdf, "Hospital", deref(appt.HospitalName))
	addDetail(pdf, "City", deref(appt.CityName))
	addDetail(pdf, "Date", appt.Date)
	addDetail(pdf, "Time", appt.Time)
	addDetail(pdf, "Reason", appt.Reason)
	addDetail(pdf, "Appointment ID", appt.ID)

	pdf.SetY(pdf.GetY() + 12)
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 10, "This is a computer generated receipt", "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render receipt: %w", err)
	}
	return buf.Bytes(), nil
}

func addDetail(pdf *gofpdf.Fpdf, label, value string) {
	if value == "" {
		value = "-"
	}
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(45, 9, label, "1", 0, "", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 9, value, "1", 1, "", false, 0, "")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
