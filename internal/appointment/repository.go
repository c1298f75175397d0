package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrSlotOccupied is returned by Insert when the partial unique index on
	// (provider_email, scheduled_at) rejects the row. It is the storage-level
	// backstop behind the locked conflict check.
	ErrSlotOccupied = errors.New("slot already occupied")
)

// Ledger contains all DB interactions needed by the service.
type Ledger interface {
	// FindConflict returns any PLANNED or CONFIRMED appointment for the
	// provider at exactly that timestamp. A free slot yields either a nil
	// appointment or ErrAppointmentNotFound; callers treat both the same.
	FindConflict(ctx context.Context, providerEmail string, at time.Time) (*Appointment, error)

	Insert(ctx context.Context, appt *Appointment) (*Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, to Status) (*Appointment, error)

	// Provider views are newest-first, patient views oldest-first.
	ListByProvider(ctx context.Context, providerEmail string) ([]Detail, error)
	ListByPatient(ctx context.Context, patientEmail string) ([]Detail, error)

	// Event logging
	InsertEvent(ctx context.Context, ev EventLog) error
}
