package identity

import (
	"time"

	"github.com/google/uuid"
)

// Role is a closed set. Dispatch on it with an exhaustive switch; an unknown
// value must be rejected, never silently ignored.
type Role string

const (
	RolePatient         Role = "PATIENT"
	RoleHealthPersonnel Role = "HEALTH_PERSONNEL"
	RoleAdmin           Role = "ADMIN"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleHealthPersonnel, RoleAdmin:
		return true
	}
	return false
}

type Account struct {
	ID         uuid.UUID
	Role       Role
	Email      string
	FullName   string
	Phone      *string
	Specialty  *string // health personnel only
	Gender     *string
	BirthDate  *time.Time
	AvatarPath *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ProfileUpdate carries the mutable profile fields from a multipart form.
// Nil pointers mean "leave unchanged".
type ProfileUpdate struct {
	Gender     *string
	BirthDate  *time.Time
	Phone      *string
	Email      *string
	Specialty  *string // only applied to health personnel
	AvatarPath *string
}

type Kid struct {
	ID        uuid.UUID
	PatientID uuid.UUID
	FirstName string
	LastName  string
	BirthDate time.Time
	CreatedAt time.Time
}
