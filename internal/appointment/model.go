package appointment

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPlanned   Status = "PLANNED"
	StatusConfirmed Status = "CONFIRMED"
	StatusCanceled  Status = "CANCELED"
	StatusCompleted Status = "COMPLETED"
)

// Terminal reports whether no further transition is permitted out of s.
// CANCELED is terminal only by omission: no transition out of it is exposed,
// but that is a product decision still pending, so it is not guarded here.
func (s Status) Terminal() bool {
	return s == StatusCompleted
}

// Active statuses are the ones that occupy a slot.
func (s Status) Active() bool {
	return s == StatusPlanned || s == StatusConfirmed
}

// Appointment links provider and patient by email, not by account id. The
// denormalization is load-bearing: dossiers and consultations compose with
// appointments only through these shared email keys.
type Appointment struct {
	ID            uuid.UUID
	ProviderEmail string
	PatientEmail  string
	ScheduledAt   time.Time
	Status        Status
	VisitType     string
	Remarks       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PatientSnapshot is the denormalized patient contact joined onto provider
// views and creation responses.
type PatientSnapshot struct {
	FullName string
	Phone    *string
}

// ProviderSnapshot is the counterpart joined onto patient views.
type ProviderSnapshot struct {
	FullName  string
	Specialty *string
}

// Detail is an appointment plus whichever counterpart snapshot the view needs.
type Detail struct {
	Appointment
	Patient  *PatientSnapshot
	Provider *ProviderSnapshot
}

// EventLog is an audit-trail row for appointment lifecycle events. Writes are
// best effort and never fail the primary operation.
type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}
