package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chronocare/chronocare-api/internal/chatbot"
	"github.com/chronocare/chronocare-api/internal/document"
	"github.com/chronocare/chronocare-api/internal/identity"
	"github.com/chronocare/chronocare-api/internal/notification"
)

func updateProfileHandler(directory *identity.Directory, docs document.Store, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_account_id", "id must be a valid UUID")
			return
		}

		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse multipart form")
			return
		}

		upd := identity.ProfileUpdate{
			Gender:    optionalForm(r, "gender"),
			Phone:     optionalForm(r, "phone"),
			Email:     optionalForm(r, "email"),
			Specialty: optionalForm(r, "specialty"),
		}

		if raw := r.FormValue("birth_date"); raw != "" {
			t, err := parseDate(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_birth_date", "birth_date must be YYYY-MM-DD or RFC 3339")
				return
			}
			upd.BirthDate = &t
		}

		if file, header, err := r.FormFile("avatar"); err == nil {
			defer file.Close()
			path, err := docs.Save(r.Context(), header.Filename, file)
			if err != nil {
				handleDomainError(w, r, log, err)
				return
			}
			upd.AvatarPath = &path
		}

		updated, err := directory.UpdateProfile(r.Context(), accountID, upd)
		if err != nil {
			handleDomainError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, accountResponse(updated))
	}
}

func addKidHandler(directory *identity.Directory, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "id must be a valid UUID")
			return
		}

		var req AddKidRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		var birthDate time.Time
		if req.BirthDate != "" {
			birthDate, err = parseDate(req.BirthDate)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_birth_date", "birth_date must be YYYY-MM-DD or RFC 3339")
				return
			}
		}

		kid, err := directory.AddKid(r.Context(), patientID, req.FirstName, req.LastName, birthDate)
		if err != nil {
			handleDomainError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusCreated, kidResponse(kid))
	}
}

func listKidsHandler(directory *identity.Directory, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "id must be a valid UUID")
			return
		}

		kids, err := directory.ListKids(r.Context(), patientID)
		if err != nil {
			handleDomainError(w, r, log, err)
			return
		}

		out := make([]KidResponse, 0, len(kids))
		for i := range kids {
			out = append(out, kidResponse(&kids[i]))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func notificationCountHandler(counter notification.Counter, guard *roleGuard, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := guard.resolveCaller(w, r)
		if !ok {
			return
		}

		count, err := counter.UnreadCount(r.Context(), caller.Email)
		if err != nil {
			handleDomainError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]int{"count": count})
	}
}

func chatHandler(responder *chatbot.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		answer, err := responder.Respond(req.Language, req.Message)
		if err != nil {
			if errors.Is(err, chatbot.ErrNoMatch) || errors.Is(err, chatbot.ErrUnknownLanguage) {
				writeError(w, http.StatusBadRequest, "question_not_recognized", "Question non reconnue")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", "an internal error occurred")
			return
		}

		writeJSON(w, http.StatusOK, answer)
	}
}

type AccountResponse struct {
	ID         uuid.UUID  `json:"id"`
	Role       string     `json:"role"`
	Email      string     `json:"email"`
	FullName   string     `json:"full_name"`
	Phone      *string    `json:"phone,omitempty"`
	Specialty  *string    `json:"specialty,omitempty"`
	Gender     *string    `json:"gender,omitempty"`
	BirthDate  *time.Time `json:"birth_date,omitempty"`
	AvatarPath *string    `json:"avatar_path,omitempty"`
}

func accountResponse(a *identity.Account) AccountResponse {
	return AccountResponse{
		ID:         a.ID,
		Role:       string(a.Role),
		Email:      a.Email,
		FullName:   a.FullName,
		Phone:      a.Phone,
		Specialty:  a.Specialty,
		Gender:     a.Gender,
		BirthDate:  a.BirthDate,
		AvatarPath: a.AvatarPath,
	}
}

type KidResponse struct {
	ID        uuid.UUID `json:"id"`
	PatientID uuid.UUID `json:"patient_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	BirthDate time.Time `json:"birth_date"`
	CreatedAt time.Time `json:"created_at"`
}

func kidResponse(k *identity.Kid) KidResponse {
	return KidResponse{
		ID:        k.ID,
		PatientID: k.PatientID,
		FirstName: k.FirstName,
		LastName:  k.LastName,
		BirthDate: k.BirthDate,
		CreatedAt: k.CreatedAt,
	}
}

func optionalForm(r *http.Request, name string) *string {
	v := r.FormValue(name)
	if v == "" {
		return nil
	}
	return &v
}
