package dossier

import (
	"time"

	"github.com/google/uuid"

	"github.com/chronocare/chronocare-api/internal/consultation"
)

// Dossier is a patient's medical-record folder. The owning patient is carried
// both by id and by email: consultations and appointments key on the email,
// authorization on the id.
type Dossier struct {
	ID             uuid.UUID
	DossierNumber  string
	PatientID      uuid.UUID
	PatientEmail   string
	ProviderID     uuid.UUID
	FullName       string
	Gender         string
	BirthDate      time.Time
	Phone          string
	ChronicDisease bool
	ChronicDetail  string
	Weight         *float64
	Height         *float64
	DocumentPath   *string
	CreatedAt      time.Time
}

// PatientSnapshot is the identity join returned with a freshly created dossier.
type PatientSnapshot struct {
	FullName string
	Email    string
	Phone    *string
}

// Detail is a dossier with its consultations embedded, most recent first.
type Detail struct {
	Dossier
	Consultations []consultation.Consultation
	Patient       *PatientSnapshot
}
