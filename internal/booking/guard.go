package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/akshalkotian/doctorappointment/internal/models"
	"github.com/akshalkotian/doctorappointment/internal/schedule"
	"github.com/akshalkotian/doctorappointment/internal/store"
)

var (
	ErrNotFound  = errors.New("appointment not found")
	ErrSlotTaken = errors.New("slot is held by another appointment")
)

// Guard keeps appointments in a JSON collection. One lock covers every
// read-check-write sequence on the whole file; it does not protect against
// other processes unless the Locker does.
type Guard struct {
	appointments *store.Collection[models.Appointment]
	locker       Locker
}

func NewGuard(appointments *store.Collection[models.Appointment], locker Locker) *Guard {
	if locker == nil {
		locker = NewProcessLocker()
	}
	return &Guard{appointments: appointments, locker: locker}
}

// TryBook stores appt unless an active appointment already holds its slot.
func (g *Guard) TryBook(ctx context.Context, appt models.Appointment) (Result, error) {
	// Unlocked probe: a cheap early reject. Only the check under the lock
	// decides.
	if slotHeld(g.appointments.Load(), appt.DoctorID, appt.Date, appt.Time, "") {
		return conflict(), nil
	}

	unlock, err := g.locker.Lock(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to acquire booking lock: %w", err)
	}
	defer unlock()

	appts := g.appointments.Load()
	if slotHeld(appts, appt.DoctorID, appt.Date, appt.Time, "") {
		return conflict(), nil
	}

	if err := g.appointments.Save(append(appts, appt)); err != nil {
		return Result{}, err
	}
	slog.Info("appointment booked", "appointment_id", appt.ID, "doctor_id", appt.DoctorID, "date", appt.Date, "time", appt.Time)
	return success(appt.ID, "Appointment booked successfully"), nil
}

// Update applies patch unconditionally. See Transition.
func (g *Guard) Update(ctx context.Context, id string, patch models.AppointmentPatch) (bool, error) {
	_, err := g.Transition(ctx, id, func(models.Appointment) (models.AppointmentPatch, error) {
		return patch, nil
	})
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Transition holds the lock from the read that decide sees until the patch
// is saved.
func (g *Guard) Transition(ctx context.Context, id string, decide Decide) (*models.Appointment, error) {
	unlock, err := g.locker.Lock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire booking lock: %w", err)
	}
	defer unlock()

	appts := g.appointments.Load()
	for i := range appts {
		if appts[i].ID != id {
			continue
		}
		patch, err := decide(appts[i])
		if err != nil {
			return nil, err
		}
		if reactivates(appts[i], patch) && slotHeld(appts, appts[i].DoctorID, appts[i].Date, appts[i].Time, id) {
			return nil, ErrSlotTaken
		}
		patch.Apply(&appts[i])
		if err := g.appointments.Save(appts); err != nil {
			return nil, err
		}
		updated := appts[i]
		return &updated, nil
	}
	return nil, ErrNotFound
}

// Reschedule moves appointment id to date and slot, keeping its id.
func (g *Guard) Reschedule(ctx context.Context, id, date, slot string, at time.Time) (Result, error) {
	unlock, err := g.locker.Lock(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to acquire booking lock: %w", err)
	}
	defer unlock()

	appts := g.appointments.Load()
	idx := -1
	for i := range appts {
		if appts[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Result{}, ErrNotFound
	}
	if slotHeld(appts, appts[idx].DoctorID, date, slot, id) {
		return conflict(), nil
	}

	appts[idx].Date = date
	appts[idx].Time = slot
	appts[idx].RescheduledAt = &at
	if err := g.appointments.Save(appts); err != nil {
		return Result{}, err
	}
	return success(id, "Appointment rescheduled successfully"), nil
}

// Get, List and BookedSlots read the collection without taking the lock.
func (g *Guard) Get(_ context.Context, id string) (*models.Appointment, error) {
	appt, ok := g.appointments.Find(func(a models.Appointment) bool { return a.ID == id })
	if !ok {
		return nil, ErrNotFound
	}
	return &appt, nil
}

func (g *Guard) List(_ context.Context, filter Filter) ([]models.Appointment, error) {
	return g.appointments.Filter(filter.Match), nil
}

func (g *Guard) BookedSlots(_ context.Context, doctorID, excludeID string) (map[string]bool, error) {
	booked := make(map[string]bool)
	for _, a := range g.appointments.Load() {
		if a.ID == excludeID || a.DoctorID != doctorID || !a.Status.Active() {
			continue
		}
		booked[schedule.SlotKey(a.Date, a.Time)] = true
	}
	return booked, nil
}

// Ping checks that the data directory is still there.
func (g *Guard) Ping(context.Context) error {
	dir := filepath.Dir(g.appointments.Path())
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}
