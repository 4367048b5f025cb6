package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/akshalkotian/doctorappointment/internal/models"
	"github.com/akshalkotian/doctorappointment/internal/schedule"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// activeSlotIndex makes the database the arbiter of slot ownership, so any
// number of server instances can share one appointment book.
const activeSlotIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_active_slot
ON appointments (doctor_id, "date", "time")
WHERE status IN ('confirmed', 'pending_payment')`

var activeStatuses = []models.AppointmentStatus{models.StatusConfirmed, models.StatusPendingPayment}

// SQLLedger stores appointments in Postgres. The gorm handle must be opened
// with TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
type SQLLedger struct {
	db *gorm.DB
}

func NewSQLLedger(db *gorm.DB) *SQLLedger {
	return &SQLLedger{db: db}
}

// Migrate creates the appointments table and the active-slot index.
func (l *SQLLedger) Migrate() error {
	if err := l.db.AutoMigrate(&models.Appointment{}); err != nil {
		return fmt.Errorf("failed to migrate appointments: %w", err)
	}
	if err := l.db.Exec(activeSlotIndex).Error; err != nil {
		return fmt.Errorf("failed to create active slot index: %w", err)
	}
	return nil
}

func (l *SQLLedger) slotTaken(tx *gorm.DB, doctorID, date, slot, excludeID string) (bool, error) {
	var count int64
	q := tx.Model(&models.Appointment{}).
		Where(`doctor_id = ? AND "date" = ? AND "time" = ? AND status IN ?`, doctorID, date, slot, activeStatuses)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (l *SQLLedger) TryBook(ctx context.Context, appt models.Appointment) (Result, error) {
	db := l.db.WithContext(ctx)

	taken, err := l.slotTaken(db, appt.DoctorID, appt.Date, appt.Time, "")
	if err != nil {
		return Result{}, fmt.Errorf("failed to check slot: %w", err)
	}
	if taken {
		return conflict(), nil
	}

	if err := db.Create(&appt).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return conflict(), nil
		}
		return Result{}, fmt.Errorf("failed to create appointment: %w", err)
	}
	slog.Info("appointment booked", "appointment_id", appt.ID, "doctor_id", appt.DoctorID, "date", appt.Date, "time", appt.Time)
	return success(appt.ID, "Appointment booked successfully"), nil
}

func (l *SQLLedger) Update(ctx context.Context, id string, patch models.AppointmentPatch) (bool, error) {
	_, err := l.Transition(ctx, id, func(models.Appointment) (models.AppointmentPatch, error) {
		return patch, nil
	})
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Transition reads the row with SELECT ... FOR UPDATE so decide and the write
// share one transaction.
func (l *SQLLedger) Transition(ctx context.Context, id string, decide Decide) (*models.Appointment, error) {
	var updated models.Appointment
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&updated, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load appointment: %w", err)
		}

		patch, err := decide(updated)
		if err != nil {
			return err
		}
		cols := patch.Columns()
		if len(cols) == 0 {
			return nil
		}
		if err := tx.Model(&models.Appointment{}).Where("id = ?", id).Updates(cols).Error; err != nil {
			return fmt.Errorf("failed to update appointment: %w", err)
		}
		patch.Apply(&updated)
		return nil
	})
	if err != nil {
		// Reactivating a freed slot that someone else has since taken.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}
	return &updated, nil
}

func (l *SQLLedger) Reschedule(ctx context.Context, id, date, slot string, at time.Time) (Result, error) {
	var res Result
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var appt models.Appointment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&appt, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		taken, err := l.slotTaken(tx, appt.DoctorID, date, slot, id)
		if err != nil {
			return err
		}
		if taken {
			res = conflict()
			return nil
		}

		if err := tx.Model(&appt).Updates(map[string]interface{}{
			"date":           date,
			"time":           slot,
			"rescheduled_at": at,
		}).Error; err != nil {
			return err
		}
		res = success(id, "Appointment rescheduled successfully")
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return conflict(), nil
		}
		return Result{}, err
	}
	return res, nil
}

func (l *SQLLedger) Get(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	if err := l.db.WithContext(ctx).First(&appt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &appt, nil
}

func (l *SQLLedger) List(ctx context.Context, filter Filter) ([]models.Appointment, error) {
	q := l.db.WithContext(ctx).Model(&models.Appointment{})
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.UserEmail != "" {
		q = q.Where("user_email = ?", filter.UserEmail)
	}
	if filter.DoctorID != "" {
		q = q.Where("doctor_id = ?", filter.DoctorID)
	}
	if filter.Date != "" {
		q = q.Where(`"date" = ?`, filter.Date)
	}
	if filter.PaymentStatus != "" {
		q = q.Where("payment_status = ?", filter.PaymentStatus)
	}

	appts := make([]models.Appointment, 0)
	if err := q.Order("booked_at ASC").Find(&appts).Error; err != nil {
		return nil, err
	}
	return appts, nil
}

func (l *SQLLedger) BookedSlots(ctx context.Context, doctorID, excludeID string) (map[string]bool, error) {
	var appts []models.Appointment
	q := l.db.WithContext(ctx).
		Where("doctor_id = ? AND status IN ?", doctorID, activeStatuses)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Find(&appts).Error; err != nil {
		return nil, err
	}

	booked := make(map[string]bool, len(appts))
	for _, a := range appts {
		booked[schedule.SlotKey(a.Date, a.Time)] = true
	}
	return booked, nil
}

func (l *SQLLedger) Ping(ctx context.Context) error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
