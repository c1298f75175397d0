package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chronocare/chronocare-api/internal/consultation"
)

func createConsultationHandler(svc *consultation.Service, guard *roleGuard, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := guard.requireProvider(w, r)
		if !ok {
			return
		}

		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse multipart form")
			return
		}

		req := consultation.CreateRequest{
			PatientEmail: r.FormValue("patient_email"),
			DoctorEmail:  r.FormValue("doctor_email"),
			Motive:       r.FormValue("motive"),
			Notes:        r.FormValue("notes"),
			Prescription: r.FormValue("prescription"),
			Diagnosis:    r.FormValue("diagnosis"),
			SymptomsRaw:  r.FormValue("symptoms"),
		}

		if raw := r.FormValue("next_appointment"); raw != "" {
			t, err := parseDate(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_next_appointment", "next_appointment must be YYYY-MM-DD or RFC 3339")
				return
			}
			req.NextAppointment = &t
		}

		var upload *consultation.Upload
		if file, header, err := r.FormFile("document"); err == nil {
			defer file.Close()
			upload = &consultation.Upload{FileName: header.Filename, Content: file}
		}

		created, err := svc.Create(r.Context(), callerID, req, upload)
		if err != nil {
			handleDomainError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusCreated, consultationResponse(created))
	}
}

func listConsultationsHandler(svc *consultation.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dossierID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_dossier_id", "id must be a valid UUID")
			return
		}

		details, err := svc.ListForDossier(r.Context(), dossierID)
		if err != nil {
			handleDomainError(w, r, log, err)
			return
		}

		out := make([]ConsultationResponse, 0, len(details))
		for _, d := range details {
			out = append(out, consultationDetailResponse(d))
		}
		writeJSON(w, http.StatusOK, out)
	}
}
