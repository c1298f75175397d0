package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrKidNotFound     = errors.New("kid not found")
)

// Repository contains all DB interactions needed by the directory.
type Repository interface {
	GetAccountByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)

	// Per-role profile updates; the service picks one via Role dispatch.
	UpdatePatientProfile(ctx context.Context, id uuid.UUID, upd ProfileUpdate) (*Account, error)
	UpdatePersonnelProfile(ctx context.Context, id uuid.UUID, upd ProfileUpdate) (*Account, error)
	UpdateAdminProfile(ctx context.Context, id uuid.UUID, upd ProfileUpdate) (*Account, error)

	InsertKid(ctx context.Context, kid *Kid) (*Kid, error)
	ListKidsByPatient(ctx context.Context, patientID uuid.UUID) ([]Kid, error)
}
