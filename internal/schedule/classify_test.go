package schedule

import (
	"testing"
	"time"

	"github.com/akshalkotian/doctorappointment/internal/models"
	"github.com/stretchr/testify/assert"
)

var fixedNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		date   string
		time   string
		status models.AppointmentStatus
		want   TimeStatus
	}{
		{"earlier today confirmed", "2024-06-15", "09:00 AM", models.StatusConfirmed, TimeCompleted},
		{"tomorrow confirmed", "2024-06-16", "09:00 AM", models.StatusConfirmed, TimeUpcoming},
		{"yesterday cancelled", "2024-06-14", "09:00 AM", models.StatusCancelled, TimeCancelled},
		{"yesterday confirmed", "2024-06-14", "09:00 AM", models.StatusConfirmed, TimeCompleted},
		{"yesterday no-show", "2024-06-14", "09:00 AM", models.StatusNoShow, TimeMissed},
		{"yesterday pending payment", "2024-06-14", "09:00 AM", models.StatusPendingPayment, TimeCompleted},
		{"past unknown status", "2024-06-14", "09:00 AM", models.AppointmentStatus("weird"), TimeMissed},
		{"future cancelled is still upcoming", "2024-06-16", "09:00 AM", models.StatusCancelled, TimeUpcoming},
		{"slot exactly now has passed", "2024-06-15", "10:00 AM", models.StatusConfirmed, TimeCompleted},
		{"unparseable slot", "2024-13-40", "09:00 AM", models.StatusConfirmed, TimeUpcoming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appt := models.Appointment{Date: tt.date, Time: tt.time, Status: tt.status}
			assert.Equal(t, tt.want, Classify(appt, fixedNow))
			assert.Equal(t, tt.status, appt.Status)
		})
	}
}

func TestIsWithinUrgentWindow(t *testing.T) {
	assert.False(t, IsWithinUrgentWindow("2024-06-15", "10:00 AM", fixedNow), "zero distance is not urgent")
	assert.True(t, IsWithinUrgentWindow("2024-06-15", "11:00 AM", fixedNow), "exactly one hour is urgent")
	assert.False(t, IsWithinUrgentWindow("2024-06-15", "12:00 PM", fixedNow))
	assert.False(t, IsWithinUrgentWindow("2024-06-15", "09:00 AM", fixedNow))
	assert.True(t, IsWithinUrgentWindow("2024-06-15", "11:00 AM", fixedNow.Add(30*time.Minute)))
	assert.False(t, IsWithinUrgentWindow("bad", "11:00 AM", fixedNow))
}

func TestFutureSlotsForDate(t *testing.T) {
	now := time.Date(2024, 6, 15, 11, 30, 0, 0, time.UTC)

	t.Run("today drops elapsed slots", func(t *testing.T) {
		got := FutureSlotsForDate("2024-06-15", now)
		assert.Equal(t, []string{"12:00 PM", "02:00 PM", "03:00 PM", "04:00 PM", "05:00 PM"}, got)
		assert.NotContains(t, got, "09:00 AM")
		assert.NotContains(t, got, "10:00 AM")
		assert.NotContains(t, got, "11:00 AM")
	})

	t.Run("past date", func(t *testing.T) {
		assert.Empty(t, FutureSlotsForDate("2024-06-14", now))
	})

	t.Run("future date", func(t *testing.T) {
		assert.Equal(t, TimeSlots, FutureSlotsForDate("2024-06-16", now))
	})

	t.Run("invalid date", func(t *testing.T) {
		assert.Empty(t, FutureSlotsForDate("15/06/2024", now))
	})

	t.Run("slot equal to now is excluded", func(t *testing.T) {
		noon := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
		assert.Equal(t, []string{"02:00 PM", "03:00 PM", "04:00 PM", "05:00 PM"}, FutureSlotsForDate("2024-06-15", noon))
	})
}

func TestFutureSlotsDoesNotAliasTimeSlots(t *testing.T) {
	got := FutureSlotsForDate("2030-01-01", fixedNow)
	got[0] = "changed"
	assert.Equal(t, "09:00 AM", TimeSlots[0])
}

func TestIsPast(t *testing.T) {
	assert.True(t, IsPast("2024-06-15", "09:00 AM", fixedNow))
	assert.False(t, IsPast("2024-06-15", "10:00 AM", fixedNow))
	assert.False(t, IsPast("2024-06-15", "02:00 PM", fixedNow))
	assert.False(t, IsPast("garbage", "09:00 AM", fixedNow))
}

func TestIsValidSlot(t *testing.T) {
	assert.True(t, IsValidSlot("12:00 PM"))
	assert.False(t, IsValidSlot("01:00 PM"))
	assert.False(t, IsValidSlot("9:00 AM"))
	assert.Len(t, TimeSlots, 8)
}

func TestDateRanges(t *testing.T) {
	assert.Equal(t, []string{"2024-06-15", "2024-06-16", "2024-06-17"}, BookableDates(fixedNow, 3))
	assert.Empty(t, BookableDates(fixedNow, 0))
	assert.Equal(t, []string{"2024-06-14", "2024-06-15", "2024-06-16"}, DateRange(fixedNow, -1, 1))
	assert.Len(t, DateRange(fixedNow, -15, 15), 31)
}

func TestSortBySlotIsChronological(t *testing.T) {
	appts := []models.Appointment{
		{ID: "pm2", Date: "2024-06-15", Time: "02:00 PM"},
		{ID: "noon", Date: "2024-06-15", Time: "12:00 PM"},
		{ID: "am9", Date: "2024-06-15", Time: "09:00 AM"},
		{ID: "bad", Date: "??", Time: "09:00 AM"},
		{ID: "prev", Date: "2024-06-14", Time: "05:00 PM"},
	}
	slotOf := func(a models.Appointment) (string, string) { return a.Date, a.Time }

	SortBySlot(appts, slotOf, false, time.UTC)
	assert.Equal(t, []string{"prev", "am9", "noon", "pm2", "bad"}, ids(appts))

	SortBySlot(appts, slotOf, true, time.UTC)
	assert.Equal(t, []string{"pm2", "noon", "am9", "prev", "bad"}, ids(appts))
}

func ids(appts []models.Appointment) []string {
	out := make([]string, len(appts))
	for i, a := range appts {
		out[i] = a.ID
	}
	return out
}
