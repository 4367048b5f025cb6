package models

import "time"

type Role string

const (
	RolePatient Role = "patient"
	RoleAdmin   Role = "admin"
)

// User is a registered patient or admin. Users are never deleted.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Phone     string    `json:"phone"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// EffectiveRole treats records written before roles existed as patients.
func (u User) EffectiveRole() Role {
	if u.Role == "" {
		return RolePatient
	}
	return u.Role
}
