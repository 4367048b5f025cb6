package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"

	"github.com/akshalkotian/doctorappointment/internal/booking"
	"github.com/akshalkotian/doctorappointment/internal/dto"
	"github.com/akshalkotian/doctorappointment/internal/models"
	"github.com/akshalkotian/doctorappointment/internal/notify"
	"github.com/google/uuid"
)

var (
	ErrAlreadyPaid       = errors.New("this appointment has already been paid for")
	ErrPaymentInProgress = errors.New("a payment for this appointment is already in progress")
)

const (
	MethodUPI        = "upi"
	MethodCard       = "card"
	MethodNetBanking = "netbanking"
	MethodClinic     = "clinic"
)

// Gateway decides whether an online payment goes through.
type Gateway interface {
	Charge(ctx context.Context, appt models.Appointment, method string) (approved bool, transactionID string, err error)
}

// MockGateway approves a fixed share of payments at random. No money moves.
type MockGateway struct {
	mu          sync.Mutex
	rnd         *rand.Rand
	successRate float64
}

func NewMockGateway(successRate float64, seed int64) *MockGateway {
	return &MockGateway{rnd: rand.New(rand.NewSource(seed)), successRate: successRate}
}

func (g *MockGateway) Charge(_ context.Context, _ models.Appointment, _ string) (bool, string, error) {
	g.mu.Lock()
	approved := g.rnd.Float64() < g.successRate
	g.mu.Unlock()
	return approved, NewTransactionID(), nil
}

// NewTransactionID returns "TXN" followed by 12 upper-case hex digits.
func NewTransactionID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "TXN" + strings.ToUpper(hex[:12])
}

type PaymentService struct {
	ledger   booking.Ledger
	bookings *BookingService
	gateway  Gateway
	notifier notify.Notifier
	now      Clock

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewPaymentService(ledger booking.Ledger, bookings *BookingService, gateway Gateway, notifier notify.Notifier, now Clock) *PaymentService {
	return &PaymentService{
		ledger:   ledger,
		bookings: bookings,
		gateway:  gateway,
		notifier: notifier,
		now:      now,
		inflight: make(map[string]struct{}),
	}
}

// claim marks id as being paid for. Only one payment per appointment may be
// at the gateway at a time.
func (s *PaymentService) claim(id string) (release func(), err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[id]; busy {
		return nil, ErrPaymentInProgress
	}
	s.inflight[id] = struct{}{}
	return func() {
		s.mu.Lock()
		delete(s.inflight, id)
		s.mu.Unlock()
	}, nil
}

// payable refuses appointments that are already paid for or no longer hold
// their slot.
func payable(appt models.Appointment) error {
	if appt.PaymentStatus == models.PaymentSuccess {
		return ErrAlreadyPaid
	}
	if !appt.Status.Active() {
		return ErrAppointmentInactive
	}
	return nil
}

// Process settles a pending appointment. Paying at the clinic confirms the
// booking and leaves the payment pending; an online payment either confirms
// it or cancels it, freeing the slot. The gateway is called outside the
// ledger lock, so the appointment is checked again when the outcome is
// written: a cancellation made meanwhile wins.
func (s *PaymentService) Process(ctx context.Context, p dto.Principal, id string, req *dto.PaymentRequest) (*dto.PaymentResponse, error) {
	release, err := s.claim(id)
	if err != nil {
		return nil, err
	}
	defer release()

	appt, err := s.bookings.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := payable(*appt); err != nil {
		return nil, err
	}

	method := strings.ToLower(req.Method)
	patch := models.AppointmentPatch{
		PaymentMethod: models.Ptr(strings.ToUpper(method)),
	}
	if input := paymentInput(method, req); input != "" {
		patch.PaymentInput = models.Ptr(input)
	}

	var (
		success bool
		message string
		txn     string
	)
	if method == MethodClinic {
		patch.Status = models.Ptr(models.StatusConfirmed)
		success, message = true, "Appointment confirmed. Please pay at the clinic."
	} else {
		var approved bool
		approved, txn, err = s.gateway.Charge(ctx, *appt, method)
		if err != nil {
			return nil, fmt.Errorf("payment gateway error: %w", err)
		}
		now := s.now()
		patch.TransactionID = models.Ptr(txn)
		if approved {
			patch.Status = models.Ptr(models.StatusConfirmed)
			patch.PaymentStatus = models.Ptr(models.PaymentSuccess)
			patch.PaidAt = &now
			success, message = true, "Payment successful. Your appointment is confirmed."
		} else {
			patch.Status = models.Ptr(models.StatusCancelled)
			patch.PaymentStatus = models.Ptr(models.PaymentFailed)
			patch.CancelledAt = &now
			message = "Payment failed. The slot has been released; please book again."
		}
	}

	updated, err := s.ledger.Transition(ctx, id, func(current models.Appointment) (models.AppointmentPatch, error) {
		if err := payable(current); err != nil {
			return models.AppointmentPatch{}, err
		}
		return patch, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrNotFound):
			return nil, ErrAppointmentNotFound
		case errors.Is(err, ErrAlreadyPaid), errors.Is(err, ErrAppointmentInactive):
			if success && txn != "" {
				slog.Error("approved charge not recorded, appointment changed during payment",
					"appointment_id", id,
					"transaction_id", txn,
					"error", err,
				)
			}
			return nil, err
		case errors.Is(err, booking.ErrSlotTaken):
			return nil, err
		}
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	slog.Info("payment processed",
		"appointment_id", id,
		"user_id", p.UserID,
		"method", method,
		"payment_status", updated.PaymentStatus,
		"action", "payment",
	)

	if success {
		if err := s.notifier.AppointmentConfirmed(ctx, *updated); err != nil {
			slog.Error("failed to send confirmation", "appointment_id", id, "error", err)
		}
	}

	return &dto.PaymentResponse{Success: success, Message: message, Appointment: *updated}, nil
}

func paymentInput(method string, req *dto.PaymentRequest) string {
	switch method {
	case MethodUPI:
		return strings.TrimSpace(req.UPIID)
	case MethodCard:
		digits := strings.ReplaceAll(strings.TrimSpace(req.CardNumber), " ", "")
		if len(digits) < 4 {
			return "Card ending in XXXX"
		}
		return "Card ending in " + digits[len(digits)-4:]
	case MethodNetBanking:
		return strings.TrimSpace(req.BankName)
	}
	return ""
}
