package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/akshalkotian/doctorappointment/internal/booking"
	"github.com/akshalkotian/doctorappointment/internal/dto"
	"github.com/akshalkotian/doctorappointment/internal/models"
	"github.com/akshalkotian/doctorappointment/internal/schedule"
)

var ErrNotRefundable = errors.New("only successful payments can be refunded")

// timetableSpan is how many days either side of today the timetable offers.
const timetableSpan = 15

type AdminService struct {
	ledger  booking.Ledger
	catalog *CatalogService
	now     Clock
}

func NewAdminService(ledger booking.Ledger, catalog *CatalogService, now Clock) *AdminService {
	return &AdminService{ledger: ledger, catalog: catalog, now: now}
}

// Dashboard lists the appointments matching filter, most recent slot first.
// Stats always cover every appointment.
func (s *AdminService) Dashboard(ctx context.Context, filter dto.DashboardFilter) (*dto.DashboardResponse, error) {
	all, err := s.ledger.List(ctx, booking.Filter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	match := booking.Filter{
		DoctorID:      filter.DoctorID,
		Date:          filter.Date,
		PaymentStatus: models.PaymentStatus(filter.PaymentStatus),
	}
	now := s.now()
	views := make([]dto.AppointmentView, 0)
	stats := dto.DashboardStats{TotalBookings: len(all), DoctorCounts: make(map[string]int)}
	for _, a := range all {
		switch a.Status {
		case models.StatusConfirmed:
			stats.ConfirmedBookings++
		case models.StatusCancelled:
			stats.CancelledBookings++
		}
		switch a.PaymentStatus {
		case models.PaymentPending:
			stats.PendingPayments++
		case models.PaymentSuccess:
			stats.SuccessfulPayments++
		}
		stats.DoctorCounts[a.DoctorName]++

		if match.Match(a) {
			views = append(views, dto.AppointmentView{Appointment: a, TimeStatus: schedule.Classify(a, now)})
		}
	}
	schedule.SortBySlot(views, viewSlot, true, now.Location())

	return &dto.DashboardResponse{
		Appointments: views,
		Stats:        stats,
		Doctors:      s.catalog.Doctors(),
		Filter:       filter,
	}, nil
}

// Timetable shows every slot of one doctor's day as Past, Available or
// Booked. With no doctor given the first one is used; with no date, today.
func (s *AdminService) Timetable(ctx context.Context, doctorID, date string) (*dto.TimetableResponse, error) {
	now := s.now()
	if date == "" {
		date = now.Format(schedule.DateLayout)
	} else if _, err := schedule.ParseDate(date, now.Location()); err != nil {
		return nil, ErrInvalidDate
	}

	doctors := s.catalog.Doctors()
	if doctorID == "" && len(doctors) > 0 {
		doctorID = doctors[0].ID
	}

	resp := &dto.TimetableResponse{
		Doctors:        doctors,
		DoctorID:       doctorID,
		Date:           date,
		Slots:          make([]dto.TimetableSlot, 0, len(schedule.TimeSlots)),
		AvailableDates: schedule.DateRange(now, -timetableSpan, timetableSpan),
	}
	for i := range doctors {
		if doctors[i].ID == doctorID {
			resp.SelectedDoctor = &doctors[i]
			break
		}
	}

	var appts []models.Appointment
	if doctorID != "" {
		var err error
		appts, err = s.ledger.List(ctx, booking.Filter{DoctorID: doctorID, Date: date})
		if err != nil {
			return nil, fmt.Errorf("failed to list appointments: %w", err)
		}
	}

	for _, label := range schedule.TimeSlots {
		slot := dto.TimetableSlot{Time: label, Status: dto.SlotAvailable}
		if schedule.IsPast(date, label, now) {
			slot.Status = dto.SlotPast
		}
		for _, a := range appts {
			if a.Time == label && a.Status.Active() {
				slot.Status = dto.SlotBooked
				slot.Appointment = &dto.AppointmentView{Appointment: a, TimeStatus: schedule.Classify(a, now)}
				resp.BookingCount++
				break
			}
		}
		resp.Slots = append(resp.Slots, slot)
	}
	return resp, nil
}

func (s *AdminService) Cancel(ctx context.Context, id string) error {
	now := s.now()
	return s.apply(ctx, id, "admin_cancel", func(models.Appointment) (models.AppointmentPatch, error) {
		return models.AppointmentPatch{
			Status:      models.Ptr(models.StatusCancelled),
			CancelledAt: &now,
		}, nil
	})
}

func (s *AdminService) MarkNoShow(ctx context.Context, id string) error {
	now := s.now()
	return s.apply(ctx, id, "admin_no_show", func(models.Appointment) (models.AppointmentPatch, error) {
		return models.AppointmentPatch{
			Status:   models.Ptr(models.StatusNoShow),
			NoShowAt: &now,
		}, nil
	})
}

// Refund marks a successful payment as refunded. The appointment's status is
// left alone.
func (s *AdminService) Refund(ctx context.Context, id string) error {
	return s.apply(ctx, id, "admin_refund", func(current models.Appointment) (models.AppointmentPatch, error) {
		if current.PaymentStatus != models.PaymentSuccess {
			return models.AppointmentPatch{}, ErrNotRefundable
		}
		return models.AppointmentPatch{PaymentStatus: models.Ptr(models.PaymentRefunded)}, nil
	})
}

// MarkPaid records a payment taken at the clinic. A booking still awaiting
// payment becomes confirmed.
func (s *AdminService) MarkPaid(ctx context.Context, id string) error {
	now := s.now()
	return s.apply(ctx, id, "admin_mark_paid", func(current models.Appointment) (models.AppointmentPatch, error) {
		if current.PaymentStatus == models.PaymentSuccess {
			return models.AppointmentPatch{}, ErrAlreadyPaid
		}
		patch := models.AppointmentPatch{
			PaymentStatus: models.Ptr(models.PaymentSuccess),
			PaidAt:        &now,
		}
		if current.Status == models.StatusPendingPayment {
			patch.Status = models.Ptr(models.StatusConfirmed)
		}
		if current.TransactionID == nil {
			patch.TransactionID = models.Ptr(NewTransactionID())
		}
		return patch, nil
	})
}

// apply runs decide against the stored appointment under the ledger lock.
func (s *AdminService) apply(ctx context.Context, id, action string, decide booking.Decide) error {
	if _, err := s.ledger.Transition(ctx, id, decide); err != nil {
		switch {
		case errors.Is(err, booking.ErrNotFound):
			return ErrAppointmentNotFound
		case errors.Is(err, booking.ErrSlotTaken),
			errors.Is(err, ErrNotRefundable),
			errors.Is(err, ErrAlreadyPaid):
			return err
		}
		slog.Error("admin action failed", "appointment_id", id, "action", action, "error", err)
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	slog.Info("admin action applied", "appointment_id", id, "action", action)
	return nil
}
