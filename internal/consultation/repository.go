package consultation

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrConsultationNotFound = errors.New("consultation not found")

	// ErrNoDossier means the patient has no dossier to attach the
	// consultation to.
	ErrNoDossier = errors.New("no dossier for patient")
)

// Log contains all DB interactions needed by the service.
type Log interface {
	Insert(ctx context.Context, c *Consultation) (*Consultation, error)

	// ListByDossier returns consultations most recent first, joined with a
	// provider snapshot.
	ListByDossier(ctx context.Context, dossierID uuid.UUID) ([]Detail, error)
}

// DossierResolver is the single lookup that binds a new consultation to the
// patient's most-recently-created dossier. uuid.Nil means the patient has no
// dossier.
type DossierResolver interface {
	MostRecentDossierID(ctx context.Context, patientEmail string) (uuid.UUID, error)
}
