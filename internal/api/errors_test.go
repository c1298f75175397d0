package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronocare/chronocare-api/internal/apperr"
	"github.com/chronocare/chronocare-api/internal/appointment"
	"github.com/chronocare/chronocare-api/internal/consultation"
	"github.com/chronocare/chronocare-api/internal/document"
	"github.com/chronocare/chronocare-api/internal/dossier"
	"github.com/chronocare/chronocare-api/internal/identity"
)

func callHandleDomainError(t *testing.T, err error) (int, ErrorResponse) {
	t.Helper()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/test", nil)
	handleDomainError(w, r, zerolog.Nop(), err)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return w.Code, body
}

func TestHandleDomainError_Statuses(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", apperr.NewValidation("motive"), http.StatusBadRequest, "validation_error"},
		{"account not found", identity.ErrAccountNotFound, http.StatusNotFound, "account_not_found"},
		{"wrapped account not found", fmt.Errorf("resolve provider: %w", identity.ErrAccountNotFound), http.StatusNotFound, "account_not_found"},
		{"appointment not found", appointment.ErrAppointmentNotFound, http.StatusNotFound, "appointment_not_found"},
		{"dossier not found", dossier.ErrDossierNotFound, http.StatusNotFound, "dossier_not_found"},
		{"no dossier", consultation.ErrNoDossier, http.StatusNotFound, "no_dossier_for_patient"},
		{"not a patient", identity.ErrNotAPatient, http.StatusNotFound, "account_not_found"},
		{"forbidden", dossier.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"invalid transition", appointment.ErrInvalidTransition, http.StatusBadRequest, "invalid_status_transition"},
		{"terminal state", appointment.ErrTerminalState, http.StatusBadRequest, "terminal_state"},
		{"file too large", document.ErrFileTooLarge, http.StatusBadRequest, "file_too_large"},
		{"wrapped file too large", fmt.Errorf("store document: %w", document.ErrFileTooLarge), http.StatusBadRequest, "file_too_large"},
		{"slot being booked", appointment.ErrSlotBeingBooked, http.StatusConflict, "slot_being_booked"},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := callHandleDomainError(t, tc.err)
			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, tc.wantCode, body.Error)
		})
	}
}

func TestHandleDomainError_ValidationFields(t *testing.T) {
	status, body := callHandleDomainError(t, apperr.NewValidation("motive", "doctorEmail"))

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []string{"motive", "doctorEmail"}, body.Fields)
}

func TestHandleDomainError_SlotTakenCarriesConflict(t *testing.T) {
	conflict := &appointment.Appointment{
		ID:            uuid.New(),
		ProviderEmail: "dr@chronocare.test",
		PatientEmail:  "p@chronocare.test",
		Status:        appointment.StatusPlanned,
	}

	status, body := callHandleDomainError(t, &appointment.SlotTakenError{Conflict: conflict})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "slot_taken", body.Error)
	require.NotNil(t, body.Conflict)
	assert.Equal(t, conflict.ID, body.Conflict.ID)
}

func TestHandleDomainError_InternalDetailsHidden(t *testing.T) {
	_, body := callHandleDomainError(t, errors.New("pq: password authentication failed"))

	assert.NotContains(t, body.Details, "password")
}
