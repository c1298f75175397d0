package consultation

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronocare/chronocare-api/internal/apperr"
	"github.com/chronocare/chronocare-api/internal/identity"
)

type fakeLog struct {
	inserted  []*Consultation
	insertErr error
}

func (f *fakeLog) Insert(_ context.Context, c *Consultation) (*Consultation, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	cp := *c
	cp.ID = uuid.New()
	f.inserted = append(f.inserted, &cp)
	return &cp, nil
}

func (f *fakeLog) ListByDossier(_ context.Context, dossierID uuid.UUID) ([]Detail, error) {
	var out []Detail
	for _, c := range f.inserted {
		if c.DossierID == dossierID {
			out = append(out, Detail{Consultation: *c})
		}
	}
	return out, nil
}

type fakeResolver struct {
	dossierID uuid.UUID
}

func (f *fakeResolver) MostRecentDossierID(_ context.Context, _ string) (uuid.UUID, error) {
	return f.dossierID, nil
}

type fakeDirectory struct {
	provider *identity.Account
}

func (f *fakeDirectory) Resolve(_ context.Context, id uuid.UUID) (*identity.Account, error) {
	if f.provider == nil || f.provider.ID != id {
		return nil, identity.ErrAccountNotFound
	}
	return f.provider, nil
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

func testProvider() *identity.Account {
	return &identity.Account{
		ID:       uuid.New(),
		Role:     identity.RoleHealthPersonnel,
		Email:    "dr.benali@chronocare.test",
		FullName: "Dr. Amine Benali",
	}
}

func validRequest() CreateRequest {
	return CreateRequest{
		PatientEmail: "s.mansouri@chronocare.test",
		DoctorEmail:  "dr.benali@chronocare.test",
		Motive:       "Douleur thoracique",
		Notes:        "ECG normal",
		Diagnosis:    "Angine stable",
		SymptomsRaw:  "fatigue, essoufflement",
	}
}

func TestCreate_Success(t *testing.T) {
	provider := testProvider()
	log := &fakeLog{}
	svc := NewService(log, &fakeResolver{dossierID: uuid.New()}, &fakeDirectory{provider: provider}, &fakeStore{}, zerolog.Nop())

	c, err := svc.Create(context.Background(), provider.ID, validRequest(), nil)

	require.NoError(t, err)
	assert.Equal(t, provider.Email, c.ProviderEmail)
	assert.Equal(t, []string{"fatigue", "essoufflement"}, c.Symptoms)
	assert.Nil(t, c.DocumentPath)
	require.Len(t, log.inserted, 1)
}

func TestCreate_NoDossierWritesNothing(t *testing.T) {
	provider := testProvider()
	log := &fakeLog{}
	store := &fakeStore{}
	svc := NewService(log, &fakeResolver{dossierID: uuid.Nil}, &fakeDirectory{provider: provider}, store, zerolog.Nop())

	_, err := svc.Create(context.Background(), provider.ID, validRequest(), &Upload{
		FileName: "scan.pdf",
		Content:  strings.NewReader("pdf"),
	})

	assert.ErrorIs(t, err, ErrNoDossier)
	assert.Empty(t, log.inserted)
	assert.Empty(t, store.saved)
}

func TestCreate_ProviderNotFound(t *testing.T) {
	svc := NewService(&fakeLog{}, &fakeResolver{dossierID: uuid.New()}, &fakeDirectory{}, &fakeStore{}, zerolog.Nop())

	_, err := svc.Create(context.Background(), uuid.New(), validRequest(), nil)
	assert.ErrorIs(t, err, identity.ErrAccountNotFound)
}

func TestCreate_MissingFields(t *testing.T) {
	provider := testProvider()
	svc := NewService(&fakeLog{}, &fakeResolver{dossierID: uuid.New()}, &fakeDirectory{provider: provider}, &fakeStore{}, zerolog.Nop())

	req := validRequest()
	req.Motive = ""
	req.DoctorEmail = ""

	_, err := svc.Create(context.Background(), provider.ID, req, nil)

	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"doctorEmail", "motive"}, verr.Fields)
}

func TestCreate_MalformedSymptoms(t *testing.T) {
	provider := testProvider()
	log := &fakeLog{}
	svc := NewService(log, &fakeResolver{dossierID: uuid.New()}, &fakeDirectory{provider: provider}, &fakeStore{}, zerolog.Nop())

	req := validRequest()
	req.SymptomsRaw = `["fatigue",`

	_, err := svc.Create(context.Background(), provider.ID, req, nil)

	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, log.inserted)
}

func TestCreate_WithDocument(t *testing.T) {
	provider := testProvider()
	store := &fakeStore{}
	svc := NewService(&fakeLog{}, &fakeResolver{dossierID: uuid.New()}, &fakeDirectory{provider: provider}, store, zerolog.Nop())

	c, err := svc.Create(context.Background(), provider.ID, validRequest(), &Upload{
		FileName: "scan.pdf",
		Content:  strings.NewReader("pdf"),
	})

	require.NoError(t, err)
	require.NotNil(t, c.DocumentPath)
	require.Len(t, store.saved, 1)
	assert.Equal(t, store.saved[0], *c.DocumentPath)
}

func TestCreate_InsertFailureRemovesDocument(t *testing.T) {
	provider := testProvider()
	store := &fakeStore{}
	log := &fakeLog{insertErr: errors.New("connection reset")}
	svc := NewService(log, &fakeResolver{dossierID: uuid.New()}, &fakeDirectory{provider: provider}, store, zerolog.Nop())

	_, err := svc.Create(context.Background(), provider.ID, validRequest(), &Upload{
		FileName: "scan.pdf",
		Content:  strings.NewReader("pdf"),
	})

	require.Error(t, err)
	require.Len(t, store.saved, 1)
	assert.Equal(t, store.saved, store.removed, "orphaned blob is cleaned up")
}

func TestParseSymptoms(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", nil},
		{"json array", `["fatigue","fièvre"]`, []string{"fatigue", "fièvre"}},
		{"comma separated", "fatigue, fièvre ,toux", []string{"fatigue", "fièvre", "toux"}},
		{"trailing commas", "fatigue,,", []string{"fatigue"}},
		{"single value", "fatigue", []string{"fatigue"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseSymptoms(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseSymptoms_MalformedJSON(t *testing.T) {
	_, err := ParseSymptoms(`[1, 2]`)
	assert.Error(t, err)

	_, err = ParseSymptoms(`["unterminated`)
	assert.Error(t, err)
}
