package dto

import (
	"github.com/akshalkotian/doctorappointment/internal/models"
	"github.com/akshalkotian/doctorappointment/internal/schedule"
)

type BookRequest struct {
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Time   string `json:"time" validate:"required"`
	Reason string `json:"reason" validate:"required,max=500"`
}

type RescheduleRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Time string `json:"time" validate:"required"`
}

// AppointmentView is an appointment annotated with its display status.
type AppointmentView struct {
	models.Appointment
	TimeStatus schedule.TimeStatus `json:"time_status"`
}

type MyAppointmentsResponse struct {
	Upcoming  []AppointmentView `json:"upcoming"`
	Completed []AppointmentView `json:"completed"`
	Missed    []AppointmentView `json:"missed"`
	Cancelled []AppointmentView `json:"cancelled"`
}

// AvailabilityResponse carries everything a booking or reschedule form
// needs. Slot maps are keyed by "<date>_<time>".
type AvailabilityResponse struct {
	Doctor      models.Doctor    `json:"doctor"`
	Hospital    *models.Hospital `json:"hospital,omitempty"`
	City        *models.City     `json:"city,omitempty"`
	Dates       []string         `json:"available_dates"`
	TimeSlots   []string         `json:"time_slots"`
	BookedSlots map[string]bool  `json:"booked_slots"`
	PastSlots   map[string]bool  `json:"past_slots"`
	UrgentSlots map[string]bool  `json:"urgent_slots"`
	SlotCounts  map[string]int   `json:"slot_counts"`
	// Appointment is set when the form is for rescheduling.
	Appointment *models.Appointment `json:"appointment,omitempty"`
}

type PaymentRequest struct {
	Method     string `json:"payment_method" validate:"required,oneof=upi card netbanking clinic"`
	UPIID      string `json:"upi_id" validate:"required_if=Method upi"`
	CardNumber string `json:"card_number" validate:"omitempty,max=19"`
	CardExpiry string `json:"card_expiry"`
	CardCVV    string `json:"card_cvv"`
	BankName   string `json:"bank_name" validate:"required_if=Method netbanking"`
}

type PaymentResponse struct {
	Success     bool               `json:"success"`
	Message     string             `json:"message"`
	Appointment models.Appointment `json:"appointment"`
}
