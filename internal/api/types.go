package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/chronocare/chronocare-api/internal/appointment"
	"github.com/chronocare/chronocare-api/internal/consultation"
	"github.com/chronocare/chronocare-api/internal/dossier"
)

type CreateAppointmentRequest struct {
	PatientEmail string    `json:"patient_email"`
	ScheduledAt  time.Time `json:"scheduled_at"`
	VisitType    string    `json:"visit_type"`
	Remarks      string    `json:"remarks"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type AppointmentResponse struct {
	ID            uuid.UUID `json:"id"`
	ProviderEmail string    `json:"provider_email"`
	PatientEmail  string    `json:"patient_email"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	Status        string    `json:"status"`
	VisitType     string    `json:"visit_type"`
	Remarks       string    `json:"remarks"`
	PatientName   *string   `json:"patient_name,omitempty"`
	PatientPhone  *string   `json:"patient_phone,omitempty"`
	ProviderName  *string   `json:"provider_name,omitempty"`
	Specialty     *string   `json:"provider_specialty,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func appointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:            a.ID,
		ProviderEmail: a.ProviderEmail,
		PatientEmail:  a.PatientEmail,
		ScheduledAt:   a.ScheduledAt,
		Status:        string(a.Status),
		VisitType:     a.VisitType,
		Remarks:       a.Remarks,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func appointmentDetailResponse(d appointment.Detail) AppointmentResponse {
	resp := appointmentResponse(&d.Appointment)
	if d.Patient != nil {
		resp.PatientName = &d.Patient.FullName
		resp.PatientPhone = d.Patient.Phone
	}
	if d.Provider != nil {
		resp.ProviderName = &d.Provider.FullName
		resp.Specialty = d.Provider.Specialty
	}
	return resp
}

type DossierResponse struct {
	ID             uuid.UUID              `json:"id"`
	DossierNumber  string                 `json:"dossier_number"`
	PatientID      uuid.UUID              `json:"patient_id"`
	PatientEmail   string                 `json:"patient_email"`
	ProviderID     uuid.UUID              `json:"provider_id"`
	FullName       string                 `json:"full_name"`
	Gender         string                 `json:"gender"`
	BirthDate      time.Time              `json:"birth_date"`
	Phone          string                 `json:"phone"`
	ChronicDisease bool                   `json:"chronic_disease"`
	ChronicDetail  string                 `json:"chronic_detail,omitempty"`
	Weight         *float64               `json:"weight,omitempty"`
	Height         *float64               `json:"height,omitempty"`
	DocumentPath   *string                `json:"document_path,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	Consultations  []ConsultationResponse `json:"consultations,omitempty"`
}

func dossierResponse(d dossier.Detail) DossierResponse {
	resp := DossierResponse{
		ID:             d.ID,
		DossierNumber:  d.DossierNumber,
		PatientID:      d.PatientID,
		PatientEmail:   d.PatientEmail,
		ProviderID:     d.ProviderID,
		FullName:       d.FullName,
		Gender:         d.Gender,
		BirthDate:      d.BirthDate,
		Phone:          d.Phone,
		ChronicDisease: d.ChronicDisease,
		ChronicDetail:  d.ChronicDetail,
		Weight:         d.Weight,
		Height:         d.Height,
		DocumentPath:   d.DocumentPath,
		CreatedAt:      d.CreatedAt,
	}
	for _, c := range d.Consultations {
		resp.Consultations = append(resp.Consultations, consultationResponse(&c))
	}
	return resp
}

type ConsultationResponse struct {
	ID                uuid.UUID  `json:"id"`
	DossierID         uuid.UUID  `json:"dossier_id"`
	ProviderEmail     string     `json:"provider_email"`
	PatientEmail      string     `json:"patient_email"`
	Motive            string     `json:"motive"`
	Notes             string     `json:"notes,omitempty"`
	Prescription      string     `json:"prescription,omitempty"`
	Diagnosis         string     `json:"diagnosis,omitempty"`
	Symptoms          []string   `json:"symptoms,omitempty"`
	NextAppointment   *time.Time `json:"next_appointment,omitempty"`
	DocumentPath      *string    `json:"document_path,omitempty"`
	ProviderName      *string    `json:"provider_name,omitempty"`
	ProviderSpecialty *string    `json:"provider_specialty,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

func consultationResponse(c *consultation.Consultation) ConsultationResponse {
	return ConsultationResponse{
		ID:              c.ID,
		DossierID:       c.DossierID,
		ProviderEmail:   c.ProviderEmail,
		PatientEmail:    c.PatientEmail,
		Motive:          c.Motive,
		Notes:           c.Notes,
		Prescription:    c.Prescription,
		Diagnosis:       c.Diagnosis,
		Symptoms:        c.Symptoms,
		NextAppointment: c.NextAppointment,
		DocumentPath:    c.DocumentPath,
		CreatedAt:       c.CreatedAt,
	}
}

func consultationDetailResponse(d consultation.Detail) ConsultationResponse {
	resp := consultationResponse(&d.Consultation)
	if d.Provider != nil {
		resp.ProviderName = &d.Provider.FullName
		resp.ProviderSpecialty = d.Provider.Specialty
	}
	return resp
}

type AddKidRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	BirthDate string `json:"birth_date"` // YYYY-MM-DD
}

type ChatRequest struct {
	Language string `json:"language"`
	Message  string `json:"message"`
}

type ErrorResponse struct {
	Error    string               `json:"error"`
	Details  string               `json:"details,omitempty"`
	Fields   []string             `json:"fields,omitempty"`
	Conflict *AppointmentResponse `json:"conflict,omitempty"`
}
