package dossier

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrDossierNotFound = errors.New("dossier not found")
)

// Repository contains all DB interactions needed by the store.
type Repository interface {
	Insert(ctx context.Context, d *Dossier) (*Dossier, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Dossier, error)

	// ListByPatient embeds each dossier's consultations, most recent first.
	ListByPatient(ctx context.Context, patientEmail string) ([]Detail, error)

	// MostRecentDossierID resolves the patient's most-recently-created
	// dossier, or uuid.Nil when the patient has none. New consultations bind
	// to it implicitly; keep every caller on this single lookup so an
	// explicit dossier-selection mode can be added later in one place.
	MostRecentDossierID(ctx context.Context, patientEmail string) (uuid.UUID, error)

	// DeleteCascade removes the dossier's consultations and then the dossier
	// inside one transaction.
	DeleteCascade(ctx context.Context, id uuid.UUID) error
}
