package consultation

import (
	"time"

	"github.com/google/uuid"
)

// Consultation is one clinical visit's record. It is immutable once written
// and disappears only when its parent dossier is deleted.
type Consultation struct {
	ID              uuid.UUID
	DossierID       uuid.UUID
	ProviderEmail   string
	PatientEmail    string
	Motive          string
	Notes           string
	Prescription    string
	Diagnosis       string
	Symptoms        []string
	NextAppointment *time.Time
	DocumentPath    *string
	CreatedAt       time.Time
}

// ProviderSnapshot is joined onto dossier-view listings.
type ProviderSnapshot struct {
	FullName  string
	Specialty *string
}

type Detail struct {
	Consultation
	Provider *ProviderSnapshot
}
