package models

import "time"

type AppointmentStatus string

const (
	StatusPendingPayment AppointmentStatus = "pending_payment"
	StatusConfirmed      AppointmentStatus = "confirmed"
	StatusCancelled      AppointmentStatus = "cancelled"
	StatusNoShow         AppointmentStatus = "no_show"
)

// Active reports whether an appointment in this status occupies its slot.
func (s AppointmentStatus) Active() bool {
	return s == StatusConfirmed || s == StatusPendingPayment
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "Pending"
	PaymentSuccess  PaymentStatus = "Success"
	PaymentFailed   PaymentStatus = "Failed"
	PaymentRefunded PaymentStatus = "Refunded"
)

// Appointment is denormalized: doctor, hospital and city names are copied in
// at booking time so listings never need a join.
type Appointment struct {
	ID            string            `gorm:"primaryKey;size:36" json:"id"`
	UserID        string            `gorm:"size:36;not null;index" json:"user_id"`
	UserEmail     string            `gorm:"size:255;not null;index" json:"user_email"`
	UserName      string            `gorm:"size:255" json:"user_name"`
	DoctorID      string            `gorm:"size:36;not null;index" json:"doctor_id"`
	DoctorName    string            `gorm:"size:255" json:"doctor_name"`
	HospitalID    *string           `gorm:"size:36" json:"hospital_id"`
	HospitalName  *string           `gorm:"size:255" json:"hospital_name"`
	CityID        *string           `gorm:"size:36" json:"city_id"`
	CityName      *string           `gorm:"size:255" json:"city_name"`
	Date          string            `gorm:"size:10;not null;index" json:"date"`
	Time          string            `gorm:"size:8;not null" json:"time"`
	Reason        string            `gorm:"type:text" json:"reason"`
	Status        AppointmentStatus `gorm:"size:20;not null;index" json:"status"`
	BookedAt      time.Time         `json:"booked_at"`
	PaymentStatus PaymentStatus     `gorm:"size:20;not null;default:'Pending'" json:"payment_status"`
	PaymentMethod *string           `gorm:"size:20" json:"payment_method"`
	PaymentInput  *string           `gorm:"size:255" json:"payment_input"`
	TransactionID *string           `gorm:"size:32" json:"transaction_id"`
	PaidAt        *time.Time        `json:"paid_at"`
	CancelledAt   *time.Time        `json:"cancelled_at,omitempty"`
	NoShowAt      *time.Time        `json:"no_show_at,omitempty"`
	RescheduledAt *time.Time        `json:"rescheduled_at,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// AppointmentPatch lists the mutable fields of an appointment. Nil fields are
// left untouched by Apply.
type AppointmentPatch struct {
	Status        *AppointmentStatus
	PaymentStatus *PaymentStatus
	PaymentMethod *string
	PaymentInput  *string
	TransactionID *string
	PaidAt        *time.Time
	CancelledAt   *time.Time
	NoShowAt      *time.Time
}

func (p AppointmentPatch) Apply(a *Appointment) {
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.PaymentStatus != nil {
		a.PaymentStatus = *p.PaymentStatus
	}
	if p.PaymentMethod != nil {
		a.PaymentMethod = p.PaymentMethod
	}
	if p.PaymentInput != nil {
		a.PaymentInput = p.PaymentInput
	}
	if p.TransactionID != nil {
		a.TransactionID = p.TransactionID
	}
	if p.PaidAt != nil {
		a.PaidAt = p.PaidAt
	}
	if p.CancelledAt != nil {
		a.CancelledAt = p.CancelledAt
	}
	if p.NoShowAt != nil {
		a.NoShowAt = p.NoShowAt
	}
}

// Columns returns the patch as a column map for SQL updates.
func (p AppointmentPatch) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.Status != nil {
		cols["status"] = *p.Status
	}
	if p.PaymentStatus != nil {
		cols["payment_status"] = *p.PaymentStatus
	}
	if p.PaymentMethod != nil {
		cols["payment_method"] = *p.PaymentMethod
	}
	if p.PaymentInput != nil {
		cols["payment_input"] = *p.PaymentInput
	}
	if p.TransactionID != nil {
		cols["transaction_id"] = *p.TransactionID
	}
	if p.PaidAt != nil {
		cols["paid_at"] = *p.PaidAt
	}
	if p.CancelledAt != nil {
		cols["cancelled_at"] = *p.CancelledAt
	}
	if p.NoShowAt != nil {
		cols["no_show_at"] = *p.NoShowAt
	}
	return cols
}

// Ptr returns a pointer to v; handy for building patches.
func Ptr[T any](v T) *T {
	return &v
}
