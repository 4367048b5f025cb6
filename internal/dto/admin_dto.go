package dto

import "github.com/akshalkotian/doctorappointment/internal/models"

type DashboardFilter struct {
	DoctorID      string `query:"doctor"`
	Date          string `query:"date"`
	PaymentStatus string `query:"payment_status"`
}

type DashboardStats struct {
	TotalBookings      int            `json:"total_bookings"`
	ConfirmedBookings  int            `json:"confirmed_bookings"`
	CancelledBookings  int            `json:"cancelled_bookings"`
	PendingPayments    int            `json:"pending_payments"`
	SuccessfulPayments int            `json:"successful_payments"`
	DoctorCounts       map[string]int `json:"doctor_counts"`
}

type DashboardResponse struct {
	Appointments []AppointmentView `json:"appointments"`
	Stats        DashboardStats    `json:"stats"`
	Doctors      []models.Doctor   `json:"doctors"`
	Filter       DashboardFilter   `json:"filter"`
}

const (
	SlotPast      = "Past"
	SlotAvailable = "Available"
	SlotBooked    = "Booked"
)

type TimetableSlot struct {
	Time        string           `json:"time"`
	Status      string           `json:"status"`
	Appointment *AppointmentView `json:"appointment,omitempty"`
}

type TimetableResponse struct {
	Doctors        []models.Doctor `json:"doctors"`
	SelectedDoctor *models.Doctor  `json:"selected_doctor,omitempty"`
	DoctorID       string          `json:"doctor_id"`
	Date           string          `json:"date"`
	Slots          []TimetableSlot `json:"slots"`
	BookingCount   int             `json:"booking_count"`
	AvailableDates []string        `json:"available_dates"`
}
