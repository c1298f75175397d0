package consultation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chronocare/chronocare-api/internal/apperr"
	"github.com/chronocare/chronocare-api/internal/document"
	"github.com/chronocare/chronocare-api/internal/identity"
)

// Directory is the identity slice the log needs.
type Directory interface {
	Resolve(ctx context.Context, accountID uuid.UUID) (*identity.Account, error)
}

type Service struct {
	repo      Log
	dossiers  DossierResolver
	directory Directory
	docs      document.Store
	log       zerolog.Logger
}

func NewService(repo Log, dossiers DossierResolver, directory Directory, docs document.Store, log zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		dossiers:  dossiers,
		directory: directory,
		docs:      docs,
		log:       log,
	}
}

// CreateRequest carries the consultation form fields. SymptomsRaw is the
// client-serialized observed-symptoms field, either a JSON string array or
// comma-separated text.
type CreateRequest struct {
	PatientEmail    string
	DoctorEmail     string
	Motive          string
	Notes           string
	Prescription    string
	Diagnosis       string
	SymptomsRaw     string
	NextAppointment *time.Time
}

// Upload is an optional attachment supplied with a create request.
type Upload struct {
	FileName string
	Content  io.Reader
}

// Create appends a consultation to the patient's most-recently-created
// dossier. Without a resolvable dossier nothing is written.
func (s *Service) Create(ctx context.Context, providerID uuid.UUID, req CreateRequest, doc *Upload) (*Consultation, error) {
	dossierID, err := s.dossiers.MostRecentDossierID(ctx, req.PatientEmail)
	if err != nil {
		return nil, fmt.Errorf("resolve dossier: %w", err)
	}
	if dossierID == uuid.Nil {
		return nil, ErrNoDossier
	}

	provider, err := s.directory.Resolve(ctx, providerID)
	if err != nil {
		if errors.Is(err, identity.ErrAccountNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("resolve provider: %w", err)
	}

	if verr := apperr.RequireFields(map[string]string{
		"motive":       req.Motive,
		"doctorEmail":  req.DoctorEmail,
		"patientEmail": req.PatientEmail,
	}); verr != nil {
		return nil, verr
	}

	symptoms, err := ParseSymptoms(req.SymptomsRaw)
	if err != nil {
		return nil, &apperr.ValidationError{Fields: []string{"symptoms: " + err.Error()}}
	}

	var docPath *string
	if doc != nil {
		path, err := s.docs.Save(ctx, doc.FileName, doc.Content)
		if err != nil {
			return nil, fmt.Errorf("store document: %w", err)
		}
		docPath = &path
	}

	created, err := s.repo.Insert(ctx, &Consultation{
		DossierID:       dossierID,
		ProviderEmail:   provider.Email,
		PatientEmail:    req.PatientEmail,
		Motive:          req.Motive,
		Notes:           req.Notes,
		Prescription:    req.Prescription,
		Diagnosis:       req.Diagnosis,
		Symptoms:        symptoms,
		NextAppointment: req.NextAppointment,
		DocumentPath:    docPath,
	})
	if err != nil {
		if docPath != nil {
			if rmErr := s.docs.Remove(ctx, *docPath); rmErr != nil {
				s.log.Warn().Err(rmErr).Str("path", *docPath).Msg("cleanup orphaned document")
			}
		}
		return nil, fmt.Errorf("insert consultation: %w", err)
	}

	return created, nil
}

// ListForDossier returns the dossier's consultations, newest first.
func (s *Service) ListForDossier(ctx context.Context, dossierID uuid.UUID) ([]Detail, error) {
	details, err := s.repo.ListByDossier(ctx, dossierID)
	if err != nil {
		return nil, fmt.Errorf("list consultations: %w", err)
	}
	return details, nil
}

// ParseSymptoms decodes the serialized observed-symptoms field. A JSON string
// array is authoritative; anything else is treated as comma-separated text.
// Malformed JSON is a caller error, not a server fault.
func ParseSymptoms(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	if strings.HasPrefix(raw, "[") {
		var symptoms []string
		if err := json.Unmarshal([]byte(raw), &symptoms); err != nil {
			return nil, fmt.Errorf("malformed symptom list: %w", err)
		}
		return symptoms, nil
	}

	parts := strings.Split(raw, ",")
	symptoms := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			symptoms = append(symptoms, p)
		}
	}
	return symptoms, nil
}
