package services

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"github.com/akshalkotian/doctorappointment/internal/dto"
	"github.com/akshalkotian/doctorappointment/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentSuccessConfirms(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "a1", patient, "d1", "2024-06-16", "09:00 AM", models.StatusPendingPayment)

	resp, err := f.payments.Process(context.Background(), patient, "a1", &dto.PaymentRequest{Method: "card", CardNumber: "4111 1111 1111 4242"})
	require.NoError(t, err)
	assert.True(t, resp.Success)

	appt := f.appointment(t, "a1")
	assert.Equal(t, models.StatusConfirmed, appt.Status)
	assert.Equal(t, models.PaymentSuccess, appt.PaymentStatus)
	assert.Equal(t, "CARD", *appt.PaymentMethod)
	assert.Equal(t, "Card ending in 4242", *appt.PaymentInput)
	assert.Equal(t, "TXN0123456789AB", *appt.TransactionID)
	require.NotNil(t, appt.PaidAt)
	assert.Equal(t, fixedNow, *appt.PaidAt)
	assert.Equal(t, "a1", resp.Appointment.ID)
	assert.Equal(t, models.StatusConfirmed, resp.Appointment.Status)

	require.Len(t, f.notifier.confirmed, 1)
	assert.Equal(t, "a1", f.notifier.confirmed[0].ID)

	_, err = f.payments.Process(context.Background(), patient, "a1", &dto.PaymentRequest{Method: "upi", UPIID: "asha@upi"})
	assert.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestPaymentFailureReleasesSlot(t *testing.T) {
	f := newFixture(t)
	f.gateway.approve = false
	f.seed(t, "a1", patient, "d1", "2024-06-16", "09:00 AM", models.StatusPendingPayment)

	resp, err := f.payments.Process(context.Background(), patient, "a1", &dto.PaymentRequest{Method: "upi", UPIID: "asha@upi"})
	require.NoError(t, err)
	assert.False(t, resp.Success)

	appt := f.appointment(t, "a1")
	assert.Equal(t, models.StatusCancelled, appt.Status)
	assert.Equal(t, models.PaymentFailed, appt.PaymentStatus)
	assert.Equal(t, "asha@upi", *appt.PaymentInput)
	assert.Nil(t, appt.PaidAt)
	assert.Empty(t, f.notifier.confirmed)

	res, err := f.bookings.Book(context.Background(), other, "d1", &dto.BookRequest{Date: "2024-06-16", Time: "09:00 AM", Reason: "x"})
	require.NoError(t, err)
	assert.True(t, res.OK)

	_, err = f.payments.Process(context.Background(), patient, "a1", &dto.PaymentRequest{Method: "upi", UPIID: "asha@upi"})
	assert.ErrorIs(t, err, ErrAppointmentInactive)
}

func TestPayAtClinic(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "a1", patient, "d1", "2024-06-16", "09:00 AM", models.StatusPendingPayment)

	resp, err := f.payments.Process(context.Background(), patient, "a1", &dto.PaymentRequest{Method: "clinic"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Zero(t, f.gateway.calls)

	appt := f.appointment(t, "a1")
	assert.Equal(t, models.StatusConfirmed, appt.Status)
	assert.Equal(t, models.PaymentPending, appt.PaymentStatus)
	assert.Equal(t, "CLINIC", *appt.PaymentMethod)
	assert.Nil(t, appt.PaymentInput)
	assert.Nil(t, appt.TransactionID)
	assert.Len(t, f.notifier.confirmed, 1)
}

func TestPaymentOwnership(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "a1", patient, "d1", "2024-06-16", "09:00 AM", models.StatusPendingPayment)

	_, err := f.payments.Process(context.Background(), other, "a1", &dto.PaymentRequest{Method: "clinic"})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestPaymentInput(t *testing.T) {
	tests := []struct {
		method string
		req    dto.PaymentRequest
		want   string
	}{
		{MethodUPI, dto.PaymentRequest{UPIID: " asha@upi "}, "asha@upi"},
		{MethodCard, dto.PaymentRequest{CardNumber: "4111111111111111"}, "Card ending in 1111"},
		{MethodCard, dto.PaymentRequest{}, "Card ending in XXXX"},
		{MethodNetBanking, dto.PaymentRequest{BankName: "HDFC"}, "HDFC"},
		{MethodClinic, dto.PaymentRequest{}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, paymentInput(tt.method, &tt.req), tt.method)
	}
}

func TestMockGateway(t *testing.T) {
	always := NewMockGateway(1, 42)
	never := NewMockGateway(0, 42)
	txnPattern := regexp.MustCompile(`^TXN[0-9A-F]{12}$`)

	for i := 0; i < 20; i++ {
		ok, txn, err := always.Charge(context.Background(), models.Appointment{}, MethodUPI)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Regexp(t, txnPattern, txn)

		ok, _, err = never.Charge(context.Background(), models.Appointment{}, MethodUPI)
		require.NoError(t, err)
		assert.False(t, ok)
	}

	a := NewMockGateway(0.5, 7)
	b := NewMockGateway(0.5, 7)
	for i := 0; i < 20; i++ {
		okA, _, _ := a.Charge(context.Background(), models.Appointment{}, MethodCard)
		okB, _, _ := b.Charge(context.Background(), models.Appointment{}, MethodCard)
		assert.Equal(t, okA, okB, "same seed, same outcomes")
	}
}

// blockingGateway approves every charge but holds each one until release is
// closed.
type blockingGateway struct {
	entered chan struct{}
	release chan struct{}

	mu    sync.Mutex
	calls int
}

func newBlockingGateway() *blockingGateway {
	return &blockingGateway{entered: make(chan struct{}, 8), release: make(chan struct{})}
}

func (g *blockingGateway) Charge(ctx context.Context, _ models.Appointment, _ string) (bool, string, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	g.entered <- struct{}{}
	select {
	case <-g.release:
	case <-ctx.Done():
		return false, "", ctx.Err()
	}
	return true, NewTransactionID(), nil
}

func TestConcurrentPaymentsChargeOnce(t *testing.T) {
	f := newFixture(t)
	gw := newBlockingGateway()
	payments := NewPaymentService(f.ledger, f.bookings, gw, f.notifier, fixedClock)
	f.seed(t, "a1", patient, "d1", "2024-06-16", "09:00 AM", models.StatusPendingPayment)
	ctx := context.Background()

	firstErr := make(chan error, 1)
	go func() {
		_, err := payments.Process(ctx, patient, "a1", &dto.PaymentRequest{Method: "upi", UPIID: "asha@upi"})
		firstErr <- err
	}()
	<-gw.entered

	_, err := payments.Process(ctx, patient, "a1", &dto.PaymentRequest{Method: "card", CardNumber: "4111111111111111"})
	assert.ErrorIs(t, err, ErrPaymentInProgress)

	close(gw.release)
	require.NoError(t, <-firstErr)

	assert.Equal(t, 1, gw.calls)
	appt := f.appointment(t, "a1")
	assert.Equal(t, models.StatusConfirmed, appt.Status)
	assert.Equal(t, models.PaymentSuccess, appt.PaymentStatus)
	assert.Equal(t, "asha@upi", *appt.PaymentInput)

	_, err = payments.Process(ctx, patient, "a1", &dto.PaymentRequest{Method: "upi", UPIID: "asha@upi"})
	assert.ErrorIs(t, err, ErrAlreadyPaid)
	assert.Equal(t, 1, gw.calls)
}

func TestCancelDuringPaymentIsNotReverted(t *testing.T) {
	f := newFixture(t)
	gw := newBlockingGateway()
	payments := NewPaymentService(f.ledger, f.bookings, gw, f.notifier, fixedClock)
	f.seed(t, "a1", patient, "d1", "2024-06-16", "09:00 AM", models.StatusPendingPayment)
	ctx := context.Background()

	payErr := make(chan error, 1)
	go func() {
		_, err := payments.Process(ctx, patient, "a1", &dto.PaymentRequest{Method: "upi", UPIID: "asha@upi"})
		payErr <- err
	}()
	<-gw.entered

	require.NoError(t, f.admin.Cancel(ctx, "a1"))
	close(gw.release)
	assert.ErrorIs(t, <-payErr, ErrAppointmentInactive)

	appt := f.appointment(t, "a1")
	assert.Equal(t, models.StatusCancelled, appt.Status)
	assert.Equal(t, models.PaymentPending, appt.PaymentStatus)
	assert.NotNil(t, appt.CancelledAt)
	assert.Nil(t, appt.PaidAt)
	assert.Nil(t, appt.TransactionID)
	assert.Empty(t, f.notifier.confirmed)
}
