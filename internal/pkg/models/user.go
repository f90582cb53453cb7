package models

import (
	"time"
)

// User represents an account on the platform. Credential verification is
// owned by the external identity service; the fleet service only reads the
// fields it needs for eligibility checks.
type User struct {
	ID         int64      `json:"id" db:"id"`
	Email      string     `json:"email" db:"email"`
	Role       string     `json:"role" db:"role"`
	BirthDate  *time.Time `json:"birth_date" db:"birth_date"`
	HasLicense bool       `json:"has_license" db:"has_license"`
	Balance    float64    `json:"balance" db:"balance"`
	IsActive   bool       `json:"is_active" db:"is_active"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// Age returns the user's age in full years at the given instant,
// or -1 when the birth date is unknown.
func (u *User) Age(at time.Time) int {
	if u.BirthDate == nil {
		return -1
	}
	years := at.Year() - u.BirthDate.Year()
	anniversary := u.BirthDate.AddDate(years, 0, 0)
	if anniversary.After(at) {
		years--
	}
	return years
}
