package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chronocare/chronocare-api/internal/apperr"
)

var (
	ErrUnknownRole = errors.New("unknown account role")
	ErrNotAPatient = errors.New("account is not a patient")
)

// Directory resolves opaque account ids to roles and contact addresses, and
// owns the profile/kid operations that hang off an account.
type Directory struct {
	repo Repository
}

func NewDirectory(repo Repository) *Directory {
	return &Directory{repo: repo}
}

// Resolve maps an account id to its full identity record.
func (d *Directory) Resolve(ctx context.Context, accountID uuid.UUID) (*Account, error) {
	acct, err := d.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load account: %w", err)
	}
	return acct, nil
}

// ResolveEmail is the common identity→email hop used by the appointment and
// consultation services.
func (d *Directory) ResolveEmail(ctx context.Context, accountID uuid.UUID) (string, error) {
	acct, err := d.Resolve(ctx, accountID)
	if err != nil {
		return "", err
	}
	return acct.Email, nil
}

// ResolveByEmail looks an account up by its canonical contact address. Used
// for counterpart snapshots on appointment views.
func (d *Directory) ResolveByEmail(ctx context.Context, email string) (*Account, error) {
	acct, err := d.repo.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load account by email: %w", err)
	}
	return acct, nil
}

// UpdateProfile applies a profile update through the handler that matches the
// account's role. The switch is exhaustive over Role; anything else is
// rejected rather than falling through to a nil handler.
func (d *Directory) UpdateProfile(ctx context.Context, accountID uuid.UUID, upd ProfileUpdate) (*Account, error) {
	acct, err := d.Resolve(ctx, accountID)
	if err != nil {
		return nil, err
	}

	switch acct.Role {
	case RolePatient:
		return d.repo.UpdatePatientProfile(ctx, accountID, upd)
	case RoleHealthPersonnel:
		return d.repo.UpdatePersonnelProfile(ctx, accountID, upd)
	case RoleAdmin:
		return d.repo.UpdateAdminProfile(ctx, accountID, upd)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, acct.Role)
	}
}

// AddKid registers a child under a patient account. The child must be under
// 18 at registration time; exactly 18 is rejected.
func (d *Directory) AddKid(ctx context.Context, patientID uuid.UUID, firstName, lastName string, birthDate time.Time) (*Kid, error) {
	if verr := apperr.RequireFields(map[string]string{
		"firstName": firstName,
		"lastName":  lastName,
	}); verr != nil {
		return nil, verr
	}
	if birthDate.IsZero() {
		return nil, apperr.NewValidation("birthDate")
	}

	if !isUnder18(birthDate, time.Now()) {
		return nil, &apperr.ValidationError{Fields: []string{"birthDate: must be under 18"}}
	}

	acct, err := d.Resolve(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if acct.Role != RolePatient {
		return nil, ErrNotAPatient
	}

	kid := &Kid{
		PatientID: patientID,
		FirstName: firstName,
		LastName:  lastName,
		BirthDate: birthDate,
	}

	created, err := d.repo.InsertKid(ctx, kid)
	if err != nil {
		return nil, fmt.Errorf("insert kid: %w", err)
	}
	return created, nil
}

// ListKids returns the registered children for a patient.
func (d *Directory) ListKids(ctx context.Context, patientID uuid.UUID) ([]Kid, error) {
	kids, err := d.repo.ListKidsByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list kids: %w", err)
	}
	return kids, nil
}

// isUnder18 reports whether someone born at birthDate has not yet reached
// their 18th birthday at now. The 18th birthday itself counts as 18.
func isUnder18(birthDate, now time.Time) bool {
	return birthDate.AddDate(18, 0, 0).After(now)
}
