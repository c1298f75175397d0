package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chronocare/chronocare-api/internal/appointment"
)

func createAppointmentHandler(svc *appointment.Service, guard *roleGuard, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := guard.requireProvider(w, r)
		if !ok {
			return
		}

		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		detail, err := svc.Create(r.Context(), callerID, appointment.CreateRequest{
			PatientEmail: req.PatientEmail,
			ScheduledAt:  req.ScheduledAt,
			VisitType:    req.VisitType,
			Remarks:      req.Remarks,
		})
		if err != nil {
			handleDomainError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusCreated, appointmentDetailResponse(*detail))
	}
}

func updateAppointmentStatusHandler(svc *appointment.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req UpdateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		updated, err := svc.TransitionStatus(r.Context(), id, appointment.Status(req.Status))
		if err != nil {
			handleDomainError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, appointmentResponse(updated))
	}
}

// listProviderAppointmentsHandler lists the calling provider's own
// appointments, newest first.
func listProviderAppointmentsHandler(svc *appointment.Service, guard *roleGuard, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := guard.requireProvider(w, r)
		if !ok {
			return
		}

		details, err := svc.ListForProvider(r.Context(), callerID)
		if err != nil {
			handleDomainError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponses(details))
	}
}

// listPatientAppointmentsHandler lists a patient's appointments by patient
// id, oldest first.
func listPatientAppointmentsHandler(svc *appointment.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "id must be a valid UUID")
			return
		}

		details, err := svc.ListForPatient(r.Context(), patientID)
		if err != nil {
			handleDomainError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponses(details))
	}
}

func toAppointmentResponses(details []appointment.Detail) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(details))
	for _, d := range details {
		out = append(out, appointmentDetailResponse(d))
	}
	return out
}
