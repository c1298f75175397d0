package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/chronocare/chronocare-api/internal/appointment"
	"github.com/chronocare/chronocare-api/internal/chatbot"
	"github.com/chronocare/chronocare-api/internal/consultation"
	"github.com/chronocare/chronocare-api/internal/document"
	"github.com/chronocare/chronocare-api/internal/dossier"
	"github.com/chronocare/chronocare-api/internal/identity"
	"github.com/chronocare/chronocare-api/internal/notification"
)

type RouterConfig struct {
	Appointments  *appointment.Service
	Dossiers      *dossier.Service
	Consultations *consultation.Service
	Directory     *identity.Directory
	Documents     document.Store
	Notifications notification.Counter
	Chatbot       *chatbot.Responder
	PgPool        *pgxpool.Pool
	Redis         *redis.Client
	Logger        zerolog.Logger
	Env           string
	Version       string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(CallerMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	guard := newRoleGuard(cfg.Directory)
	log := cfg.Logger

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Appointment endpoints
	r.Post("/appointments", createAppointmentHandler(cfg.Appointments, guard, log))
	r.Get("/appointments/provider", listProviderAppointmentsHandler(cfg.Appointments, guard, log))
	r.Get("/appointments/patient/{id}", listPatientAppointmentsHandler(cfg.Appointments, log))
	r.Put("/appointments/{id}/status", updateAppointmentStatusHandler(cfg.Appointments, log))

	// Dossier endpoints
	r.Post("/dossiers", createDossierHandler(cfg.Dossiers, guard, log))
	r.Get("/dossiers/patient/{email}", listDossiersHandler(cfg.Dossiers, log))
	r.Delete("/dossiers/{id}", deleteDossierHandler(cfg.Dossiers, guard, log))

	// Consultation endpoints
	r.Post("/consultations", createConsultationHandler(cfg.Consultations, guard, log))
	r.Get("/consultations/dossier/{id}", listConsultationsHandler(cfg.Consultations, log))

	// Identity endpoints
	r.Put("/profile/{id}", updateProfileHandler(cfg.Directory, cfg.Documents, log))
	r.Post("/patients/{id}/kids", addKidHandler(cfg.Directory, log))
	r.Get("/patients/{id}/kids", listKidsHandler(cfg.Directory, log))

	// Messaging / support
	r.Get("/notifications/count", notificationCountHandler(cfg.Notifications, guard, log))
	r.Post("/chat", chatHandler(cfg.Chatbot))

	return r
}
