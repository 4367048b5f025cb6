package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akshalkotian/doctorappointment/internal/booking"
	"github.com/akshalkotian/doctorappointment/internal/config"
	"github.com/akshalkotian/doctorappointment/internal/dto"
	"github.com/akshalkotian/doctorappointment/internal/handlers"
	"github.com/akshalkotian/doctorappointment/internal/models"
	"github.com/akshalkotian/doctorappointment/internal/notify"
	"github.com/akshalkotian/doctorappointment/internal/routes"
	"github.com/akshalkotian/doctorappointment/internal/services"
	"github.com/akshalkotian/doctorappointment/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// fixedNow is 2024-06-15 10:30 UTC.
var fixedNow = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

var (
	patient = dto.Principal{UserID: "u1", Email: "asha@example.com", Name: "Asha", Role: models.RolePatient}
	other   = dto.Principal{UserID: "u2", Email: "ravi@example.com", Name: "Ravi", Role: models.RolePatient}
	admin   = dto.Principal{UserID: "a1", Email: "admin@example.com", Name: "Admin", Role: models.RoleAdmin}
)

type testServer struct {
	app    *fiber.App
	cfg    *config.Config
	ledger booking.Ledger
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st, err := store.Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, st.Cities.Save([]models.City{{ID: "c1", Name: "Pune"}}))
	require.NoError(t, st.Hospitals.Save([]models.Hospital{{ID: "h1", Name: "City Hospital", CityID: "c1"}}))
	require.NoError(t, st.Doctors.Save([]models.Doctor{
		{ID: "d1", Name: "Dr. Asha Rao", Specialization: "Cardiologist", HospitalID: "h1"},
		{ID: "d2", Name: "Dr. Vikram Shah", Specialization: "General Physician", HospitalID: "h1"},
	}))

	cfg := &config.Config{
		JWTSecret:       "test-secret",
		JWTAccessExpiry: time.Hour,
		AdminCode:       "ADMIN2024",
		LedgerDriver:    config.LedgerFile,
		CORSOrigins:     "*",
	}
	clock := func() time.Time { return fixedNow }

	ledger := booking.NewGuard(st.Appointments, nil)
	catalog := services.NewCatalogService(st)
	bookings := services.NewBookingService(ledger, catalog, clock, 30)
	payments := services.NewPaymentService(ledger, bookings, services.NewMockGateway(1, 1), notify.LogNotifier{}, clock)

	app := fiber.New()
	routes.Setup(app, cfg,
		handlers.NewAuthHandler(services.NewAuthService(store.NewUsers(st.Users), cfg)),
		handlers.NewHealthHandler(ledger, cfg.LedgerDriver),
		handlers.NewCatalogHandler(catalog),
		handlers.NewBookingHandler(bookings),
		handlers.NewPaymentHandler(payments, bookings),
		handlers.NewSymptomHandler(services.NewSymptomService(catalog)),
		handlers.NewAdminHandler(services.NewAdminService(ledger, catalog, clock)),
	)
	return &testServer{app: app, cfg: cfg, ledger: ledger}
}

func (s *testServer) token(t *testing.T, p dto.Principal) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   p.UserID,
		"email": p.Email,
		"name":  p.Name,
		"role":  string(p.Role),
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(s.cfg.JWTSecret))
	require.NoError(t, err)
	return signed
}

// do sends a request and returns the status and raw body. body is encoded as
// JSON when not nil.
func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}
