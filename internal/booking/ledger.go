// Package booking owns the appointment book and the rule that an active
// appointment holds its (doctor, date, time) slot exclusively.
package booking

import (
	"context"
	"time"

	"github.com/akshalkotian/doctorappointment/internal/models"
)

// ConflictMessage is shown when a slot is already held by an active booking.
const ConflictMessage = "This time slot is already booked. Please choose another slot."

// Result is the outcome of a reservation attempt. A conflict is a normal
// outcome, not an error.
type Result struct {
	OK            bool   `json:"ok"`
	Message       string `json:"message"`
	AppointmentID string `json:"appointment_id,omitempty"`
}

func success(id, message string) Result {
	return Result{OK: true, Message: message, AppointmentID: id}
}

func conflict() Result {
	return Result{OK: false, Message: ConflictMessage}
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	UserID        string
	UserEmail     string
	DoctorID      string
	Date          string
	PaymentStatus models.PaymentStatus
}

func (f Filter) Match(a models.Appointment) bool {
	if f.UserID != "" && a.UserID != f.UserID {
		return false
	}
	if f.UserEmail != "" && a.UserEmail != f.UserEmail {
		return false
	}
	if f.DoctorID != "" && a.DoctorID != f.DoctorID {
		return false
	}
	if f.Date != "" && a.Date != f.Date {
		return false
	}
	if f.PaymentStatus != "" && a.PaymentStatus != f.PaymentStatus {
		return false
	}
	return true
}

// Decide builds a patch from an appointment's current state, or refuses the
// change with an error.
type Decide func(current models.Appointment) (models.AppointmentPatch, error)

// Ledger is the appointment book. TryBook, Update, Transition and Reschedule
// are serialized against each other; Get, List and BookedSlots are plain
// reads.
type Ledger interface {
	// TryBook reserves appt's slot and stores appt, or reports a conflict.
	TryBook(ctx context.Context, appt models.Appointment) (Result, error)
	// Update applies patch to the appointment with id. It reports false
	// when no such appointment exists.
	Update(ctx context.Context, id string, patch models.AppointmentPatch) (bool, error)
	// Transition runs decide on the stored appointment and applies the
	// patch it returns, both inside the write lock, so checks made by decide
	// still hold when the patch lands. An error from decide is returned
	// unchanged and nothing is written. A missing id gives ErrNotFound.
	Transition(ctx context.Context, id string, decide Decide) (*models.Appointment, error)
	// Reschedule moves an appointment to a new slot in place. The
	// appointment's own current slot never conflicts with itself.
	Reschedule(ctx context.Context, id, date, slot string, at time.Time) (Result, error)
	Get(ctx context.Context, id string) (*models.Appointment, error)
	List(ctx context.Context, filter Filter) ([]models.Appointment, error)
	// BookedSlots returns the SlotKey of every active appointment for the
	// doctor, skipping excludeID.
	BookedSlots(ctx context.Context, doctorID, excludeID string) (map[string]bool, error)
	Ping(ctx context.Context) error
}

func slotHeld(appts []models.Appointment, doctorID, date, slot, excludeID string) bool {
	for _, a := range appts {
		if a.ID == excludeID {
			continue
		}
		if a.DoctorID == doctorID && a.Date == date && a.Time == slot && a.Status.Active() {
			return true
		}
	}
	return false
}

// reactivates reports whether patch would move an inactive appointment back
// into an active status.
func reactivates(a models.Appointment, patch models.AppointmentPatch) bool {
	return patch.Status != nil && patch.Status.Active() && !a.Status.Active()
}
