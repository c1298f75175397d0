package dossier

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronocare/chronocare-api/internal/apperr"
	"github.com/chronocare/chronocare-api/internal/identity"
)

type fakeRepo struct {
	byID      map[uuid.UUID]*Dossier
	insertErr error
	deleteErr error
	deleted   []uuid.UUID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: make(map[uuid.UUID]*Dossier)}
}

func (f *fakeRepo) Insert(_ context.Context, d *Dossier) (*Dossier, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	cp := *d
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now()
	f.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Dossier, error) {
	d, ok := f.byID[id]
	if !ok {
		return nil, ErrDossierNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeRepo) ListByPatient(_ context.Context, patientEmail string) ([]Detail, error) {
	var out []Detail
	for _, d := range f.byID {
		if d.PatientEmail == patientEmail {
			out = append(out, Detail{Dossier: *d})
		}
	}
	return out, nil
}

func (f *fakeRepo) MostRecentDossierID(_ context.Context, patientEmail string) (uuid.UUID, error) {
	var latest *Dossier
	for _, d := range f.byID {
		if d.PatientEmail == patientEmail && (latest == nil || d.CreatedAt.After(latest.CreatedAt)) {
			latest = d
		}
	}
	if latest == nil {
		return uuid.Nil, nil
	}
	return latest.ID, nil
}

func (f *fakeRepo) DeleteCascade(_ context.Context, id uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.byID[id]; !ok {
		return ErrDossierNotFound
	}
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeDirectory struct {
	accounts map[uuid.UUID]*identity.Account
}

func newFakeDirectory(accounts ...*identity.Account) *fakeDirectory {
	d := &fakeDirectory{accounts: make(map[uuid.UUID]*identity.Account)}
	for _, a := range accounts {
		d.accounts[a.ID] = a
	}
	return d
}

func (d *fakeDirectory) Resolve(_ context.Context, id uuid.UUID) (*identity.Account, error) {
	a, ok := d.accounts[id]
	if !ok {
		return nil, identity.ErrAccountNotFound
	}
	return a, nil
}

type fakeStore struct {
	saved   []string
	removed []string
	saveErr error
}

func (f *fakeStore) Save(_ context.Context, fileName string, _ io.Reader) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	path := "/uploads/" + uuid.NewString() + "-" + fileName
	f.saved = append(f.saved, path)
	return path, nil
}

func (f *fakeStore) Remove(_ context.Context, refPath string) error {
	f.removed = append(f.removed, refPath)
	return nil
}

func provider() *identity.Account {
	return &identity.Account{ID: uuid.New(), Role: identity.RoleHealthPersonnel, Email: "dr@chronocare.test", FullName: "Dr"}
}

func patient(email string) *identity.Account {
	return &identity.Account{ID: uuid.New(), Role: identity.RolePatient, Email: email, FullName: "Patient"}
}

func validRequest(p *identity.Account) CreateRequest {
	return CreateRequest{
		DossierNumber: "DSR-2026-0001",
		PatientID:     p.ID,
		PatientEmail:  p.Email,
		FullName:      p.FullName,
		Gender:        "F",
		BirthDate:     time.Date(1994, 5, 12, 0, 0, 0, 0, time.UTC),
		Phone:         "+33612345678",
	}
}

func TestCreate_Success(t *testing.T) {
	doc := provider()
	pat := patient("s.mansouri@chronocare.test")
	repo := newFakeRepo()
	svc := NewService(repo, newFakeDirectory(doc, pat), &fakeStore{}, zerolog.Nop())

	detail, err := svc.Create(context.Background(), doc.ID, validRequest(pat), nil)

	require.NoError(t, err)
	assert.Equal(t, doc.ID, detail.ProviderID)
	assert.Equal(t, pat.ID, detail.PatientID)
	require.NotNil(t, detail.Patient)
	assert.Equal(t, pat.Email, detail.Patient.Email)
}

func TestCreate_MissingFields(t *testing.T) {
	doc := provider()
	svc := NewService(newFakeRepo(), newFakeDirectory(doc), &fakeStore{}, zerolog.Nop())

	_, err := svc.Create(context.Background(), doc.ID, CreateRequest{}, nil)

	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{
		"birthDate", "dossierNumber", "email", "fullName", "gender", "patientId", "phone",
	}, verr.Fields)
}

func TestCreate_ProviderNotFound(t *testing.T) {
	pat := patient("p@chronocare.test")
	svc := NewService(newFakeRepo(), newFakeDirectory(pat), &fakeStore{}, zerolog.Nop())

	_, err := svc.Create(context.Background(), uuid.New(), validRequest(pat), nil)
	assert.ErrorIs(t, err, identity.ErrAccountNotFound)
}

func TestCreate_InsertFailureRemovesDocument(t *testing.T) {
	doc := provider()
	pat := patient("p@chronocare.test")
	repo := newFakeRepo()
	repo.insertErr = errors.New("connection reset")
	store := &fakeStore{}
	svc := NewService(repo, newFakeDirectory(doc, pat), store, zerolog.Nop())

	_, err := svc.Create(context.Background(), doc.ID, validRequest(pat), &Upload{
		FileName: "carnet.pdf",
		Content:  strings.NewReader("pdf"),
	})

	require.Error(t, err)
	require.Len(t, store.saved, 1)
	assert.Equal(t, store.saved, store.removed)
}

func TestDelete_PatientOwnDossier(t *testing.T) {
	doc := provider()
	pat := patient("p@chronocare.test")
	repo := newFakeRepo()
	svc := NewService(repo, newFakeDirectory(doc, pat), &fakeStore{}, zerolog.Nop())

	detail, err := svc.Create(context.Background(), doc.ID, validRequest(pat), nil)
	require.NoError(t, err)

	err = svc.Delete(context.Background(), detail.ID, pat)
	require.NoError(t, err)
	assert.Contains(t, repo.deleted, detail.ID)
}

func TestDelete_PatientForeignDossierForbidden(t *testing.T) {
	doc := provider()
	owner := patient("owner@chronocare.test")
	other := patient("other@chronocare.test")
	repo := newFakeRepo()
	svc := NewService(repo, newFakeDirectory(doc, owner, other), &fakeStore{}, zerolog.Nop())

	detail, err := svc.Create(context.Background(), doc.ID, validRequest(owner), nil)
	require.NoError(t, err)

	err = svc.Delete(context.Background(), detail.ID, other)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, repo.deleted)
}

func TestDelete_PersonnelAnyDossier(t *testing.T) {
	doc := provider()
	otherDoc := provider()
	otherDoc.Email = "dr2@chronocare.test"
	pat := patient("p@chronocare.test")
	repo := newFakeRepo()
	svc := NewService(repo, newFakeDirectory(doc, otherDoc, pat), &fakeStore{}, zerolog.Nop())

	detail, err := svc.Create(context.Background(), doc.ID, validRequest(pat), nil)
	require.NoError(t, err)

	err = svc.Delete(context.Background(), detail.ID, otherDoc)
	assert.NoError(t, err)
}

func TestDelete_NotFound(t *testing.T) {
	pat := patient("p@chronocare.test")
	svc := NewService(newFakeRepo(), newFakeDirectory(pat), &fakeStore{}, zerolog.Nop())

	err := svc.Delete(context.Background(), uuid.New(), pat)
	assert.ErrorIs(t, err, ErrDossierNotFound)
}
