package services

import (
	"context"
	"testing"

	"github.com/akshalkotian/doctorappointment/internal/booking"
	"github.com/akshalkotian/doctorappointment/internal/dto"
	"github.com/akshalkotian/doctorappointment/internal/models"
	"github.com/akshalkotian/doctorappointment/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailability(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "a1", patient, "d1", "2024-06-16", "09:00 AM", models.StatusConfirmed)
	f.seed(t, "a2", patient, "d1", "2024-06-16", "10:00 AM", models.StatusPendingPayment)
	f.seed(t, "a3", patient, "d1", "2024-06-17", "10:00 AM", models.StatusCancelled)
	f.seed(t, "a4", patient, "d2", "2024-06-16", "11:00 AM", models.StatusConfirmed)

	resp, err := f.bookings.Availability(context.Background(), "d1", "")
	require.NoError(t, err)

	assert.Equal(t, "Dr. Asha Rao", resp.Doctor.Name)
	require.NotNil(t, resp.Hospital)
	assert.Equal(t, "City Hospital", resp.Hospital.Name)
	require.NotNil(t, resp.City)
	assert.Equal(t, "Pune", resp.City.Name)

	require.Len(t, resp.Dates, 30)
	assert.Equal(t, "2024-06-15", resp.Dates[0])
	assert.Equal(t, schedule.TimeSlots, resp.TimeSlots)

	assert.Equal(t, map[string]bool{
		"2024-06-16_09:00 AM": true,
		"2024-06-16_10:00 AM": true,
	}, resp.BookedSlots)
	assert.Equal(t, map[string]int{"2024-06-16": 2}, resp.SlotCounts)

	// now is 10:30 on the 15th
	assert.True(t, resp.PastSlots["2024-06-15_09:00 AM"])
	assert.True(t, resp.PastSlots["2024-06-15_10:00 AM"])
	assert.False(t, resp.PastSlots["2024-06-15_11:00 AM"])
	assert.Equal(t, map[string]bool{"2024-06-15_11:00 AM": true}, resp.UrgentSlots)
	assert.Len(t, resp.PastSlots, 2)

	_, err = f.bookings.Availability(context.Background(), "missing", "")
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.bookings.Book(ctx, patient, "d1", &dto.BookRequest{Date: "2024-06-16", Time: "09:00 AM", Reason: " chest pain "})
	require.NoError(t, err)
	require.True(t, res.OK)

	appt := f.appointment(t, res.AppointmentID)
	assert.Equal(t, models.StatusPendingPayment, appt.Status)
	assert.Equal(t, models.PaymentPending, appt.PaymentStatus)
	assert.Equal(t, "u1", appt.UserID)
	assert.Equal(t, "asha@example.com", appt.UserEmail)
	assert.Equal(t, "Asha", appt.UserName)
	assert.Equal(t, "Dr. Asha Rao", appt.DoctorName)
	assert.Equal(t, "City Hospital", *appt.HospitalName)
	assert.Equal(t, "h1", *appt.HospitalID)
	assert.Equal(t, "c1", *appt.CityID)
	assert.Equal(t, "Pune", *appt.CityName)
	assert.Equal(t, "chest pain", appt.Reason)
	assert.Equal(t, fixedNow, appt.BookedAt)

	res, err = f.bookings.Book(ctx, other, "d1", &dto.BookRequest{Date: "2024-06-16", Time: "09:00 AM", Reason: "x"})
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, booking.ConflictMessage, res.Message)
}

func TestBookWithoutHospital(t *testing.T) {
	f := newFixture(t)

	res, err := f.bookings.Book(context.Background(), patient, "d4", &dto.BookRequest{Date: "2024-06-16", Time: "09:00 AM", Reason: "x"})
	require.NoError(t, err)
	require.True(t, res.OK)

	appt := f.appointment(t, res.AppointmentID)
	assert.Nil(t, appt.HospitalID)
	assert.Nil(t, appt.HospitalName)
	assert.Nil(t, appt.CityName)
}

func TestBookRejectsInvalidRequests(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		doctorID string
		date     string
		slot     string
		want     error
	}{
		{"unknown doctor", "missing", "2024-06-16", "09:00 AM", ErrDoctorNotFound},
		{"unknown slot label", "d1", "2024-06-16", "01:00 PM", ErrInvalidSlot},
		{"malformed date", "d1", "16-06-2024", "09:00 AM", ErrInvalidDate},
		{"slot earlier today", "d1", "2024-06-15", "10:00 AM", ErrSlotInPast},
		{"past date", "d1", "2024-06-01", "09:00 AM", ErrSlotInPast},
		{"beyond the window", "d1", "2024-07-15", "09:00 AM", ErrOutsideWindow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.bookings.Book(context.Background(), patient, tt.doctorID, &dto.BookRequest{Date: tt.date, Time: tt.slot, Reason: "x"})
			assert.ErrorIs(t, err, tt.want)
		})
	}

	res, err := f.bookings.Book(context.Background(), patient, "d1", &dto.BookRequest{Date: "2024-07-14", Time: "09:00 AM", Reason: "x"})
	require.NoError(t, err)
	assert.True(t, res.OK, "last day of the window is bookable")
}

func TestMyAppointmentsGroupsAndSorts(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "up2", patient, "d1", "2024-06-20", "09:00 AM", models.StatusConfirmed)
	f.seed(t, "up1", patient, "d1", "2024-06-15", "02:00 PM", models.StatusPendingPayment)
	f.seed(t, "done1", patient, "d1", "2024-06-10", "09:00 AM", models.StatusConfirmed)
	f.seed(t, "done2", patient, "d1", "2024-06-14", "09:00 AM", models.StatusPendingPayment)
	f.seed(t, "miss", patient, "d1", "2024-06-12", "09:00 AM", models.StatusNoShow)
	f.seed(t, "cx", patient, "d1", "2024-06-11", "09:00 AM", models.StatusCancelled)
	f.seed(t, "cancelled-future", patient, "d2", "2024-06-21", "09:00 AM", models.StatusCancelled)
	f.seed(t, "theirs", other, "d1", "2024-06-22", "09:00 AM", models.StatusConfirmed)

	resp, err := f.bookings.MyAppointments(context.Background(), patient)
	require.NoError(t, err)

	ids := func(views []dto.AppointmentView) []string {
		out := make([]string, 0, len(views))
		for _, v := range views {
			out = append(out, v.ID)
		}
		return out
	}
	// A cancelled appointment still in the future classifies as upcoming.
	assert.Equal(t, []string{"up1", "up2", "cancelled-future"}, ids(resp.Upcoming))
	assert.Equal(t, []string{"done2", "done1"}, ids(resp.Completed))
	assert.Equal(t, []string{"miss"}, ids(resp.Missed))
	assert.Equal(t, []string{"cx"}, ids(resp.Cancelled))
	assert.Equal(t, schedule.TimeCompleted, resp.Completed[0].TimeStatus)
}

func TestGetEnforcesOwnership(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "a1", patient, "d1", "2024-06-16", "09:00 AM", models.StatusConfirmed)

	view, err := f.bookings.View(context.Background(), patient, "a1")
	require.NoError(t, err)
	assert.Equal(t, schedule.TimeUpcoming, view.TimeStatus)

	_, err = f.bookings.Get(context.Background(), other, "a1")
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
	_, err = f.bookings.Get(context.Background(), patient, "missing")
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "future", patient, "d1", "2024-06-16", "09:00 AM", models.StatusConfirmed)
	f.seed(t, "past", patient, "d1", "2024-06-14", "09:00 AM", models.StatusConfirmed)

	assert.ErrorIs(t, f.bookings.Cancel(ctx, other, "future"), ErrAppointmentNotFound)
	assert.ErrorIs(t, f.bookings.Cancel(ctx, patient, "past"), ErrAppointmentPast)

	require.NoError(t, f.bookings.Cancel(ctx, patient, "future"))
	appt := f.appointment(t, "future")
	assert.Equal(t, models.StatusCancelled, appt.Status)
	require.NotNil(t, appt.CancelledAt)
	assert.Equal(t, fixedNow, *appt.CancelledAt)

	res, err := f.bookings.Book(ctx, other, "d1", &dto.BookRequest{Date: "2024-06-16", Time: "09:00 AM", Reason: "x"})
	require.NoError(t, err)
	assert.True(t, res.OK, "cancelling frees the slot")
}

func TestRescheduleFormExcludesOwnSlot(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "mine", patient, "d1", "2024-06-16", "09:00 AM", models.StatusConfirmed)
	f.seed(t, "theirs", other, "d1", "2024-06-16", "10:00 AM", models.StatusConfirmed)

	resp, err := f.bookings.RescheduleForm(context.Background(), patient, "mine")
	require.NoError(t, err)

	assert.Equal(t, map[string]bool{"2024-06-16_10:00 AM": true}, resp.BookedSlots)
	require.NotNil(t, resp.Appointment)
	assert.Equal(t, "mine", resp.Appointment.ID)
}

func TestReschedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "mine", patient, "d1", "2024-06-16", "09:00 AM", models.StatusConfirmed)
	f.seed(t, "theirs", other, "d1", "2024-06-16", "10:00 AM", models.StatusConfirmed)
	f.seed(t, "old", patient, "d1", "2024-06-14", "09:00 AM", models.StatusConfirmed)
	f.seed(t, "dropped", patient, "d1", "2024-06-18", "09:00 AM", models.StatusCancelled)

	res, err := f.bookings.Reschedule(ctx, patient, "mine", &dto.RescheduleRequest{Date: "2024-06-16", Time: "10:00 AM"})
	require.NoError(t, err)
	assert.False(t, res.OK)

	res, err = f.bookings.Reschedule(ctx, patient, "mine", &dto.RescheduleRequest{Date: "2024-06-17", Time: "03:00 PM"})
	require.NoError(t, err)
	require.True(t, res.OK)
	appt := f.appointment(t, "mine")
	assert.Equal(t, "2024-06-17", appt.Date)
	assert.Equal(t, "03:00 PM", appt.Time)
	require.NotNil(t, appt.RescheduledAt)

	_, err = f.bookings.Reschedule(ctx, patient, "old", &dto.RescheduleRequest{Date: "2024-06-17", Time: "04:00 PM"})
	assert.ErrorIs(t, err, ErrAppointmentPast)
	_, err = f.bookings.Reschedule(ctx, patient, "dropped", &dto.RescheduleRequest{Date: "2024-06-17", Time: "04:00 PM"})
	assert.ErrorIs(t, err, ErrAppointmentInactive)
	_, err = f.bookings.Reschedule(ctx, patient, "mine", &dto.RescheduleRequest{Date: "2024-06-15", Time: "09:00 AM"})
	assert.ErrorIs(t, err, ErrSlotInPast)
	_, err = f.bookings.Reschedule(ctx, other, "mine", &dto.RescheduleRequest{Date: "2024-06-19", Time: "09:00 AM"})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}
