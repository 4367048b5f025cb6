package schedule

import (
	"time"

	"github.com/akshalkotian/doctorappointment/internal/models"
)

// TimeStatus is the display status derived from stored status and the clock.
type TimeStatus string

const (
	TimeUpcoming  TimeStatus = "upcoming"
	TimeCompleted TimeStatus = "completed"
	TimeMissed    TimeStatus = "missed"
	TimeCancelled TimeStatus = "cancelled"
)

// Classify never mutates appt. A slot that cannot be parsed counts as
// upcoming.
func Classify(appt models.Appointment, now time.Time) TimeStatus {
	t, err := SlotTime(appt.Date, appt.Time, now.Location())
	if err != nil || t.After(now) {
		return TimeUpcoming
	}

	switch appt.Status {
	case models.StatusCancelled:
		return TimeCancelled
	case models.StatusNoShow:
		return TimeMissed
	case models.StatusConfirmed, models.StatusPendingPayment:
		return TimeCompleted
	default:
		return TimeMissed
	}
}
