package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chronocare/chronocare-api/internal/dossier"
)

// maxMultipartMemory bounds the in-memory part of multipart parsing (32 MB).
const maxMultipartMemory = 32 << 20

func createDossierHandler(svc *dossier.Service, guard *roleGuard, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := guard.requireProvider(w, r)
		if !ok {
			return
		}

		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse multipart form")
			return
		}

		req := dossier.CreateRequest{
			DossierNumber:  r.FormValue("dossier_number"),
			PatientEmail:   r.FormValue("email"),
			FullName:       r.FormValue("full_name"),
			Gender:         r.FormValue("gender"),
			Phone:          r.FormValue("phone"),
			ChronicDisease: r.FormValue("chronic_disease") == "true",
			ChronicDetail:  r.FormValue("chronic_detail"),
		}

		if raw := r.FormValue("patient_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
				return
			}
			req.PatientID = id
		}
		if raw := r.FormValue("birth_date"); raw != "" {
			t, err := parseDate(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_birth_date", "birth_date must be YYYY-MM-DD or RFC 3339")
				return
			}
			req.BirthDate = t
		}
		req.Weight = floatForm(r, "weight")
		req.Height = floatForm(r, "height")

		var upload *dossier.Upload
		if file, header, err := r.FormFile("document"); err == nil {
			defer file.Close()
			upload = &dossier.Upload{FileName: header.Filename, Content: file}
		}

		detail, err := svc.Create(r.Context(), callerID, req, upload)
		if err != nil {
			handleDomainError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusCreated, dossierResponse(*detail))
	}
}

func listDossiersHandler(svc *dossier.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := chi.URLParam(r, "email")
		if email == "" {
			writeError(w, http.StatusBadRequest, "missing_email", "patient email is required")
			return
		}

		details, err := svc.ListForPatient(r.Context(), email)
		if err != nil {
			handleDomainError(w, r, log, err)
			return
		}

		out := make([]DossierResponse, 0, len(details))
		for _, d := range details {
			out = append(out, dossierResponse(d))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func deleteDossierHandler(svc *dossier.Service, guard *roleGuard, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_dossier_id", "id must be a valid UUID")
			return
		}

		caller, ok := guard.resolveCaller(w, r)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), id, caller); err != nil {
			handleDomainError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "dossier deleted"})
	}
}

func floatForm(r *http.Request, name string) *float64 {
	raw := r.FormValue(name)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}

// parseDate accepts plain dates and full timestamps.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
