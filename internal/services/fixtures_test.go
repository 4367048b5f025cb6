package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/akshalkotian/doctorappointment/internal/booking"
	"github.com/akshalkotian/doctorappointment/internal/config"
	"github.com/akshalkotian/doctorappointment/internal/dto"
	"github.com/akshalkotian/doctorappointment/internal/models"
	"github.com/akshalkotian/doctorappointment/internal/store"
	"github.com/stretchr/testify/require"
)

// fixedNow is 2024-06-15 10:30 UTC.
var fixedNow = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type fakeGateway struct {
	mu      sync.Mutex
	approve bool
	calls   int
}

func (g *fakeGateway) Charge(context.Context, models.Appointment, string) (bool, string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return g.approve, "TXN0123456789AB", nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	confirmed []models.Appointment
}

func (n *fakeNotifier) AppointmentConfirmed(_ context.Context, appt models.Appointment) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, appt)
	return nil
}

type fixture struct {
	store    *store.Store
	ledger   booking.Ledger
	catalog  *CatalogService
	bookings *BookingService
	payments *PaymentService
	admin    *AdminService
	symptoms *SymptomService
	gateway  *fakeGateway
	notifier *fakeNotifier
}

var (
	patient = dto.Principal{UserID: "u1", Email: "asha@example.com", Name: "Asha", Role: models.RolePatient}
	other   = dto.Principal{UserID: "u2", Email: "ravi@example.com", Name: "Ravi", Role: models.RolePatient}
)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Cities.Save([]models.City{
		{ID: "c1", Name: "Pune"},
		{ID: "c2", Name: "Mumbai"},
	}))
	require.NoError(t, s.Hospitals.Save([]models.Hospital{
		{ID: "h1", Name: "City Hospital", CityID: "c1"},
		{ID: "h2", Name: "Harbour Clinic", CityID: "c2"},
	}))
	require.NoError(t, s.Doctors.Save([]models.Doctor{
		{ID: "d1", Name: "Dr. Asha Rao", Specialization: "Cardiologist", HospitalID: "h1"},
		{ID: "d2", Name: "Dr. Vikram Shah", Specialization: "General Physician", HospitalID: "h1"},
		{ID: "d3", Name: "Dr. Meera Iyer", Specialization: "Dermatologist", HospitalID: "h2"},
		{ID: "d4", Name: "Dr. Nomad", Specialization: "Neurologist"},
	}))

	f := &fixture{
		store:    s,
		ledger:   booking.NewGuard(s.Appointments, nil),
		gateway:  &fakeGateway{approve: true},
		notifier: &fakeNotifier{},
	}
	f.catalog = NewCatalogService(s)
	f.bookings = NewBookingService(f.ledger, f.catalog, fixedClock, 30)
	f.payments = NewPaymentService(f.ledger, f.bookings, f.gateway, f.notifier, fixedClock)
	f.admin = NewAdminService(f.ledger, f.catalog, fixedClock)
	f.symptoms = NewSymptomService(f.catalog)
	return f
}

// seed writes an appointment straight into the ledger, bypassing the clock
// checks, so past appointments can be set up.
func (f *fixture) seed(t *testing.T, id string, p dto.Principal, doctorID, date, slot string, status models.AppointmentStatus) {
	t.Helper()
	res, err := f.ledger.TryBook(context.Background(), models.Appointment{
		ID:            id,
		UserID:        p.UserID,
		UserEmail:     p.Email,
		UserName:      p.Name,
		DoctorID:      doctorID,
		DoctorName:    "doctor " + doctorID,
		Date:          date,
		Time:          slot,
		Reason:        "checkup",
		Status:        models.StatusPendingPayment,
		PaymentStatus: models.PaymentPending,
		BookedAt:      fixedNow.Add(-48 * time.Hour),
	})
	require.NoError(t, err)
	require.True(t, res.OK, "seeding %s", id)
	if status != models.StatusPendingPayment {
		ok, err := f.ledger.Update(context.Background(), id, models.AppointmentPatch{Status: models.Ptr(status)})
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func (f *fixture) appointment(t *testing.T, id string) models.Appointment {
	t.Helper()
	appt, err := f.ledger.Get(context.Background(), id)
	require.NoError(t, err)
	return *appt
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:       "test-secret",
		JWTAccessExpiry: time.Hour,
		AdminCode:       "ADMIN2024",
		AdminEmails:     "root@example.com",
	}
}
