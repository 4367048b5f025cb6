package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/akshalkotian/doctorappointment/internal/booking"
	"github.com/akshalkotian/doctorappointment/internal/dto"
	"github.com/akshalkotian/doctorappointment/internal/models"
	"github.com/akshalkotian/doctorappointment/internal/schedule"
	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrInvalidSlot         = errors.New("invalid time slot")
	ErrInvalidDate         = errors.New("invalid date")
	ErrSlotInPast          = errors.New("selected time slot has already passed")
	ErrOutsideWindow       = errors.New("date is outside the booking window")
	ErrAppointmentPast     = errors.New("past appointments cannot be changed")
	ErrAppointmentInactive = errors.New("appointment is cancelled or marked as no-show")
)

// Clock returns the current instant in the clinic's time zone.
type Clock func() time.Time

func ClockIn(loc *time.Location) Clock {
	return func() time.Time { return time.Now().In(loc) }
}

type BookingService struct {
	ledger     booking.Ledger
	catalog    *CatalogService
	now        Clock
	windowDays int
}

func NewBookingService(ledger booking.Ledger, catalog *CatalogService, now Clock, windowDays int) *BookingService {
	return &BookingService{ledger: ledger, catalog: catalog, now: now, windowDays: windowDays}
}

// Availability builds the booking form for a doctor. excludeID names an
// appointment whose own slot must not show as booked (the reschedule form).
func (s *BookingService) Availability(ctx context.Context, doctorID, excludeID string) (*dto.AvailabilityResponse, error) {
	detail, err := s.catalog.Doctor(doctorID)
	if err != nil {
		return nil, err
	}

	booked, err := s.ledger.BookedSlots(ctx, doctorID, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load booked slots: %w", err)
	}

	now := s.now()
	resp := &dto.AvailabilityResponse{
		Doctor:      detail.Doctor,
		Hospital:    detail.Hospital,
		City:        detail.City,
		Dates:       schedule.BookableDates(now, s.windowDays),
		TimeSlots:   schedule.AllSlots(),
		BookedSlots: booked,
		PastSlots:   make(map[string]bool),
		UrgentSlots: make(map[string]bool),
		SlotCounts:  make(map[string]int),
	}

	for key := range booked {
		date, _, _ := strings.Cut(key, "_")
		resp.SlotCounts[date]++
	}
	for _, date := range resp.Dates {
		for _, label := range schedule.TimeSlots {
			key := schedule.SlotKey(date, label)
			switch {
			case schedule.IsPast(date, label, now):
				resp.PastSlots[key] = true
			case schedule.IsWithinUrgentWindow(date, label, now):
				resp.UrgentSlots[key] = true
			}
		}
	}
	return resp, nil
}

// Book reserves a slot for the caller. A slot that is already taken is
// reported through the result, not as an error.
func (s *BookingService) Book(ctx context.Context, p dto.Principal, doctorID string, req *dto.BookRequest) (booking.Result, error) {
	detail, err := s.catalog.Doctor(doctorID)
	if err != nil {
		return booking.Result{}, err
	}
	if err := s.checkSlot(req.Date, req.Time); err != nil {
		return booking.Result{}, err
	}

	appt := models.Appointment{
		ID:            uuid.NewString(),
		UserID:        p.UserID,
		UserEmail:     p.Email,
		UserName:      p.Name,
		DoctorID:      detail.Doctor.ID,
		DoctorName:    detail.Doctor.Name,
		Date:          req.Date,
		Time:          req.Time,
		Reason:        strings.TrimSpace(req.Reason),
		Status:        models.StatusPendingPayment,
		BookedAt:      s.now(),
		PaymentStatus: models.PaymentPending,
	}
	if detail.Doctor.HospitalID != "" {
		appt.HospitalID = models.Ptr(detail.Doctor.HospitalID)
	}
	if detail.Hospital != nil {
		appt.HospitalName = models.Ptr(detail.Hospital.Name)
		appt.CityID = models.Ptr(detail.Hospital.CityID)
	}
	if detail.City != nil {
		appt.CityName = models.Ptr(detail.City.Name)
	}

	res, err := s.ledger.TryBook(ctx, appt)
	if err != nil {
		return booking.Result{}, fmt.Errorf("failed to book appointment: %w", err)
	}
	if !res.OK {
		slog.Info("booking conflict", "doctor_id", doctorID, "date", req.Date, "time", req.Time, "user_id", p.UserID)
	}
	return res, nil
}

// checkSlot validates a requested date and label against the clock and the
// booking window.
func (s *BookingService) checkSlot(date, label string) error {
	if !schedule.IsValidSlot(label) {
		return ErrInvalidSlot
	}
	now := s.now()
	if _, err := schedule.ParseDate(date, now.Location()); err != nil {
		return ErrInvalidDate
	}
	if schedule.IsPast(date, label, now) {
		return ErrSlotInPast
	}
	if s.windowDays > 0 {
		dates := schedule.BookableDates(now, s.windowDays)
		if date > dates[len(dates)-1] {
			return ErrOutsideWindow
		}
	}
	return nil
}

// MyAppointments groups the caller's appointments by display status.
// Upcoming ones are soonest first; the rest are most recent first.
func (s *BookingService) MyAppointments(ctx context.Context, p dto.Principal) (*dto.MyAppointmentsResponse, error) {
	appts, err := s.ledger.List(ctx, booking.Filter{UserEmail: p.Email})
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	now := s.now()
	resp := &dto.MyAppointmentsResponse{
		Upcoming:  []dto.AppointmentView{},
		Completed: []dto.AppointmentView{},
		Missed:    []dto.AppointmentView{},
		Cancelled: []dto.AppointmentView{},
	}
	for _, a := range appts {
		view := dto.AppointmentView{Appointment: a, TimeStatus: schedule.Classify(a, now)}
		switch view.TimeStatus {
		case schedule.TimeUpcoming:
			resp.Upcoming = append(resp.Upcoming, view)
		case schedule.TimeCompleted:
			resp.Completed = append(resp.Completed, view)
		case schedule.TimeMissed:
			resp.Missed = append(resp.Missed, view)
		case schedule.TimeCancelled:
			resp.Cancelled = append(resp.Cancelled, view)
		}
	}

	loc := now.Location()
	schedule.SortBySlot(resp.Upcoming, viewSlot, false, loc)
	schedule.SortBySlot(resp.Completed, viewSlot, true, loc)
	schedule.SortBySlot(resp.Missed, viewSlot, true, loc)
	schedule.SortBySlot(resp.Cancelled, viewSlot, true, loc)
	return resp, nil
}

func viewSlot(v dto.AppointmentView) (string, string) {
	return v.Date, v.Time
}

// Get returns one of the caller's appointments. Other users' appointments
// are reported as not found.
func (s *BookingService) Get(ctx context.Context, p dto.Principal, id string) (*models.Appointment, error) {
	appt, err := s.ledger.Get(ctx, id)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	if appt.UserID != p.UserID {
		return nil, ErrAppointmentNotFound
	}
	return appt, nil
}

// View is Get with the display status attached.
func (s *BookingService) View(ctx context.Context, p dto.Principal, id string) (*dto.AppointmentView, error) {
	appt, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return &dto.AppointmentView{Appointment: *appt, TimeStatus: schedule.Classify(*appt, s.now())}, nil
}

// Cancel frees the slot of one of the caller's future appointments. The
// past check is repeated under the ledger lock since a reschedule may have
// moved the appointment.
func (s *BookingService) Cancel(ctx context.Context, p dto.Principal, id string) error {
	if _, err := s.Get(ctx, p, id); err != nil {
		return err
	}
	now := s.now()

	_, err := s.ledger.Transition(ctx, id, func(current models.Appointment) (models.AppointmentPatch, error) {
		if schedule.IsPast(current.Date, current.Time, now) {
			return models.AppointmentPatch{}, ErrAppointmentPast
		}
		return models.AppointmentPatch{
			Status:      models.Ptr(models.StatusCancelled),
			CancelledAt: &now,
		}, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrNotFound):
			return ErrAppointmentNotFound
		case errors.Is(err, ErrAppointmentPast):
			return err
		}
		return fmt.Errorf("failed to cancel appointment: %w", err)
	}
	slog.Info("appointment cancelled", "appointment_id", id, "user_id", p.UserID, "action", "patient_cancel")
	return nil
}

// RescheduleForm is the availability for moving an appointment; its own slot
// counts as free.
func (s *BookingService) RescheduleForm(ctx context.Context, p dto.Principal, id string) (*dto.AvailabilityResponse, error) {
	appt, err := s.reschedulable(ctx, p, id)
	if err != nil {
		return nil, err
	}
	resp, err := s.Availability(ctx, appt.DoctorID, appt.ID)
	if err != nil {
		return nil, err
	}
	resp.Appointment = appt
	return resp, nil
}

// Reschedule moves one of the caller's future, active appointments to
// another slot of the same doctor, keeping its id.
func (s *BookingService) Reschedule(ctx context.Context, p dto.Principal, id string, req *dto.RescheduleRequest) (booking.Result, error) {
	if _, err := s.reschedulable(ctx, p, id); err != nil {
		return booking.Result{}, err
	}
	if err := s.checkSlot(req.Date, req.Time); err != nil {
		return booking.Result{}, err
	}

	res, err := s.ledger.Reschedule(ctx, id, req.Date, req.Time, s.now())
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			return booking.Result{}, ErrAppointmentNotFound
		}
		return booking.Result{}, fmt.Errorf("failed to reschedule appointment: %w", err)
	}
	if res.OK {
		slog.Info("appointment rescheduled", "appointment_id", id, "user_id", p.UserID, "date", req.Date, "time", req.Time)
	}
	return res, nil
}

func (s *BookingService) reschedulable(ctx context.Context, p dto.Principal, id string) (*models.Appointment, error) {
	appt, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if schedule.IsPast(appt.Date, appt.Time, s.now()) {
		return nil, ErrAppointmentPast
	}
	if !appt.Status.Active() {
		return nil, ErrAppointmentInactive
	}
	return appt, nil
}
