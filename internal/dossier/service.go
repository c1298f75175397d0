package dossier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chronocare/chronocare-api/internal/apperr"
	"github.com/chronocare/chronocare-api/internal/document"
	"github.com/chronocare/chronocare-api/internal/identity"
)

var (
	ErrForbidden = errors.New("caller may not delete this dossier")
)

// Directory is the identity slice the store needs.
type Directory interface {
	Resolve(ctx context.Context, accountID uuid.UUID) (*identity.Account, error)
}

type Service struct {
	repo      Repository
	directory Directory
	docs      document.Store
	log       zerolog.Logger
}

func NewService(repo Repository, directory Directory, docs document.Store, log zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		directory: directory,
		docs:      docs,
		log:       log,
	}
}

// CreateRequest carries the dossier form fields.
type CreateRequest struct {
	DossierNumber  string
	PatientID      uuid.UUID
	PatientEmail   string
	FullName       string
	Gender         string
	BirthDate      time.Time
	Phone          string
	ChronicDisease bool
	ChronicDetail  string
	Weight         *float64
	Height         *float64
}

// Upload is an optional attachment supplied with a create request.
type Upload struct {
	FileName string
	Content  io.Reader
}

// Create validates the dossier fields, persists the optional document first,
// and records only its reference path. If the record insert then fails the
// stored blob is removed again; that cleanup is logged but never reported
// over the original error.
func (s *Service) Create(ctx context.Context, providerID uuid.UUID, req CreateRequest, doc *Upload) (*Detail, error) {
	if _, err := s.directory.Resolve(ctx, providerID); err != nil {
		if errors.Is(err, identity.ErrAccountNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("resolve provider: %w", err)
	}

	missing := map[string]string{
		"dossierNumber": req.DossierNumber,
		"fullName":      req.FullName,
		"gender":        req.Gender,
		"phone":         req.Phone,
		"email":         req.PatientEmail,
	}
	verr := apperr.RequireFields(missing)
	if req.PatientID == uuid.Nil {
		if verr == nil {
			verr = &apperr.ValidationError{}
		}
		verr.Fields = append(verr.Fields, "patientId")
	}
	if req.BirthDate.IsZero() {
		if verr == nil {
			verr = &apperr.ValidationError{}
		}
		verr.Fields = append(verr.Fields, "birthDate")
	}
	if verr != nil {
		sort.Strings(verr.Fields)
		return nil, verr
	}

	var docPath *string
	if doc != nil {
		path, err := s.docs.Save(ctx, doc.FileName, doc.Content)
		if err != nil {
			return nil, fmt.Errorf("store document: %w", err)
		}
		docPath = &path
	}

	created, err := s.repo.Insert(ctx, &Dossier{
		DossierNumber:  req.DossierNumber,
		PatientID:      req.PatientID,
		PatientEmail:   req.PatientEmail,
		ProviderID:     providerID,
		FullName:       req.FullName,
		Gender:         req.Gender,
		BirthDate:      req.BirthDate,
		Phone:          req.Phone,
		ChronicDisease: req.ChronicDisease,
		ChronicDetail:  req.ChronicDetail,
		Weight:         req.Weight,
		Height:         req.Height,
		DocumentPath:   docPath,
	})
	if err != nil {
		if docPath != nil {
			if rmErr := s.docs.Remove(ctx, *docPath); rmErr != nil {
				s.log.Warn().Err(rmErr).Str("path", *docPath).Msg("cleanup orphaned document")
			}
		}
		return nil, fmt.Errorf("insert dossier: %w", err)
	}

	detail := &Detail{Dossier: *created}
	if patient, err := s.directory.Resolve(ctx, created.PatientID); err == nil {
		detail.Patient = &PatientSnapshot{
			FullName: patient.FullName,
			Email:    patient.Email,
			Phone:    patient.Phone,
		}
	}

	return detail, nil
}

// ListForPatient returns all dossiers for the email with their consultations
// embedded, most recent consultation first.
func (s *Service) ListForPatient(ctx context.Context, patientEmail string) ([]Detail, error) {
	details, err := s.repo.ListByPatient(ctx, patientEmail)
	if err != nil {
		return nil, fmt.Errorf("list dossiers: %w", err)
	}
	return details, nil
}

// Delete removes a dossier and all its consultations. A patient caller may
// only delete their own dossier; health personnel may delete any.
func (s *Service) Delete(ctx context.Context, dossierID uuid.UUID, caller *identity.Account) error {
	d, err := s.repo.GetByID(ctx, dossierID)
	if err != nil {
		if errors.Is(err, ErrDossierNotFound) {
			return err
		}
		return fmt.Errorf("load dossier: %w", err)
	}

	if caller.Role == identity.RolePatient && d.PatientID != caller.ID {
		return ErrForbidden
	}

	if err := s.repo.DeleteCascade(ctx, dossierID); err != nil {
		if errors.Is(err, ErrDossierNotFound) {
			return err
		}
		return fmt.Errorf("delete dossier: %w", err)
	}

	return nil
}
