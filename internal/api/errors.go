package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/chronocare/chronocare-api/internal/apperr"
	"github.com/chronocare/chronocare-api/internal/appointment"
	"github.com/chronocare/chronocare-api/internal/consultation"
	"github.com/chronocare/chronocare-api/internal/document"
	"github.com/chronocare/chronocare-api/internal/dossier"
	"github.com/chronocare/chronocare-api/internal/identity"
	redisclient "github.com/chronocare/chronocare-api/internal/redis"
)

// handleDomainError maps the deliberate domain errors to client statuses and
// hides everything else behind a generic 500. Unexpected errors are logged in
// full; only the request id leaks to the caller.
func handleDomainError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error) {
	var verr *apperr.ValidationError
	var slotTaken *appointment.SlotTakenError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Details: verr.Error(),
			Fields:  verr.Fields,
		})

	case errors.As(err, &slotTaken):
		resp := ErrorResponse{
			Error:   "slot_taken",
			Details: slotTaken.Error(),
		}
		if slotTaken.Conflict != nil {
			conflict := appointmentResponse(slotTaken.Conflict)
			resp.Conflict = &conflict
		}
		writeJSON(w, http.StatusBadRequest, resp)

	case errors.Is(err, identity.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "account_not_found", err.Error())
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, dossier.ErrDossierNotFound):
		writeError(w, http.StatusNotFound, "dossier_not_found", err.Error())
	case errors.Is(err, consultation.ErrNoDossier):
		writeError(w, http.StatusNotFound, "no_dossier_for_patient", err.Error())
	case errors.Is(err, identity.ErrNotAPatient):
		writeError(w, http.StatusNotFound, "account_not_found", err.Error())

	case errors.Is(err, dossier.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())

	case errors.Is(err, appointment.ErrInvalidTransition):
		writeError(w, http.StatusBadRequest, "invalid_status_transition", err.Error())
	case errors.Is(err, appointment.ErrTerminalState):
		writeError(w, http.StatusBadRequest, "terminal_state", err.Error())
	case errors.Is(err, document.ErrFileTooLarge):
		writeError(w, http.StatusBadRequest, "file_too_large", err.Error())

	case errors.Is(err, appointment.ErrSlotBeingBooked),
		errors.Is(err, redisclient.ErrLockNotAcquired):
		writeError(w, http.StatusConflict, "slot_being_booked", "slot is currently being booked, please retry shortly")

	default:
		log.Error().Err(err).
			Str("request_id", GetRequestID(r.Context())).
			Str("path", r.URL.Path).
			Msg("unhandled error")
		writeError(w, http.StatusInternalServerError, "internal_error", "an internal error occurred")
	}
}
