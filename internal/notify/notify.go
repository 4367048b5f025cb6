// Package notify tells patients about confirmed appointments.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/akshalkotian/doctorappointment/internal/config"
	"github.com/akshalkotian/doctorappointment/internal/models"
	"github.com/akshalkotian/doctorappointment/internal/receipt"
	"github.com/go-gomail/gomail"
)

type Notifier interface {
	AppointmentConfirmed(ctx context.Context, appt models.Appointment) error
}

// New picks SMTP delivery when a host is configured and logging otherwise.
func New(cfg *config.Config) Notifier {
	if cfg.SMTPHost == "" {
		return LogNotifier{}
	}
	return NewSMTPNotifier(cfg)
}

// LogNotifier only writes a log line.
type LogNotifier struct{}

func (LogNotifier) AppointmentConfirmed(_ context.Context, appt models.Appointment) error {
	slog.Info("appointment confirmed",
		"appointment_id", appt.ID,
		"user_email", appt.UserEmail,
		"doctor_id", appt.DoctorID,
		"date", appt.Date,
		"time", appt.Time,
	)
	return nil
}

// Sender delivers composed messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPNotifier struct {
	from   string
	sender Sender
}

func NewSMTPNotifier(cfg *config.Config) *SMTPNotifier {
	return &SMTPNotifier{
		from:   cfg.SMTPFrom,
		sender: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
	}
}

func NewSMTPNotifierWithSender(from string, sender Sender) *SMTPNotifier {
	return &SMTPNotifier{from: from, sender: sender}
}

func (n *SMTPNotifier) AppointmentConfirmed(ctx context.Context, appt models.Appointment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := ConfirmationMessage(n.from, appt)
	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}
	slog.Info("confirmation email sent", "appointment_id", appt.ID, "user_email", appt.UserEmail)
	return nil
}

// ConfirmationMessage builds the email, attaching the receipt when the
// appointment has been paid.
func ConfirmationMessage(from string, appt models.Appointment) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", appt.UserEmail)
	m.SetHeader("Subject", "Appointment confirmed with "+appt.DoctorName)
	m.SetBody("text/plain", confirmationBody(appt))

	if pdf, err := receipt.Render(appt); err == nil {
		m.Attach(receipt.Filename(appt), gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(pdf)
			return err
		}))
	}
	return m
}

func confirmationBody(appt models.Appointment) string {
	body := fmt.Sprintf("Hello %s,\n\nYour appointment with %s on %s at %s is confirmed.\n",
		appt.UserName, appt.DoctorName, appt.Date, appt.Time)
	if appt.HospitalName != nil {
		body += "Location: " + *appt.HospitalName
		if appt.CityName != nil {
			body += ", " + *appt.CityName
		}
		body += "\n"
	}
	if appt.PaymentStatus == models.PaymentPending {
		body += "Payment is due at the clinic.\n"
	}
	body += "\nAppointment ID: " + appt.ID + "\n"
	return body
}
