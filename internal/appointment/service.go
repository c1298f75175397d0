package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chronocare/chronocare-api/internal/apperr"
	"github.com/chronocare/chronocare-api/internal/identity"
	redisclient "github.com/chronocare/chronocare-api/internal/redis"
)

const (
	EventAppointmentCreated = "APPOINTMENT_CREATED"
	EventStatusChanged      = "APPOINTMENT_STATUS_CHANGED"
)

var (
	ErrSlotBeingBooked   = errors.New("slot is currently being booked, please retry")
	ErrInvalidTransition = errors.New("invalid target status")
	ErrTerminalState     = errors.New("appointment is completed and can no longer change")
)

// SlotTakenError carries the blocking appointment so the client can display
// who holds the slot.
type SlotTakenError struct {
	Conflict *Appointment
}

func (e *SlotTakenError) Error() string {
	return "slot already has an active appointment"
}

// Directory is the slice of the identity service the appointment service
// needs: caller→email resolution plus counterpart snapshots.
type Directory interface {
	Resolve(ctx context.Context, accountID uuid.UUID) (*identity.Account, error)
	ResolveByEmail(ctx context.Context, email string) (*identity.Account, error)
}

type Service struct {
	ledger    Ledger
	directory Directory
	locker    redisclient.Locker
	log       zerolog.Logger
}

func NewService(ledger Ledger, directory Directory, locker redisclient.Locker, log zerolog.Logger) *Service {
	return &Service{
		ledger:    ledger,
		directory: directory,
		locker:    locker,
		log:       log,
	}
}

// CreateRequest is the provider-supplied booking input.
type CreateRequest struct {
	PatientEmail string
	ScheduledAt  time.Time
	VisitType    string
	Remarks      string
}

// Create books a slot for a patient on behalf of a provider. The conflict
// check and insert run inside a per-slot distributed lock so two concurrent
// bookings for the same (provider, time) cannot both pass the check; the
// partial unique index on the table is the backstop if the lock is bypassed.
func (s *Service) Create(ctx context.Context, providerID uuid.UUID, req CreateRequest) (*Detail, error) {
	provider, err := s.directory.Resolve(ctx, providerID)
	if err != nil {
		if errors.Is(err, identity.ErrAccountNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("resolve provider: %w", err)
	}

	verr := apperr.RequireFields(map[string]string{
		"patientEmail": req.PatientEmail,
		"visitType":    req.VisitType,
		"remarks":      req.Remarks,
	})
	if req.ScheduledAt.IsZero() {
		if verr == nil {
			verr = &apperr.ValidationError{}
		}
		verr.Fields = append(verr.Fields, "scheduledAt")
		sort.Strings(verr.Fields)
	}
	if verr != nil {
		return nil, verr
	}

	when := req.ScheduledAt.UTC()

	var created *Appointment

	err = s.locker.WithSlotLock(ctx, provider.Email, when, func(lockCtx context.Context) error {
		existing, err := s.ledger.FindConflict(lockCtx, provider.Email, when)
		if err != nil && !errors.Is(err, ErrAppointmentNotFound) {
			return fmt.Errorf("check slot conflict: %w", err)
		}
		if existing != nil {
			return &SlotTakenError{Conflict: existing}
		}

		appt, err := s.ledger.Insert(lockCtx, &Appointment{
			ProviderEmail: provider.Email,
			PatientEmail:  req.PatientEmail,
			ScheduledAt:   when,
			VisitType:     req.VisitType,
			Remarks:       req.Remarks,
		})
		if err != nil {
			if errors.Is(err, ErrSlotOccupied) {
				// Lost a race outside the lock; report the winner.
				conflict, cErr := s.ledger.FindConflict(lockCtx, provider.Email, when)
				if cErr == nil && conflict != nil {
					return &SlotTakenError{Conflict: conflict}
				}
				return &SlotTakenError{}
			}
			return fmt.Errorf("insert appointment: %w", err)
		}

		created = appt
		s.logEvent(lockCtx, appt.ID, EventAppointmentCreated, map[string]any{
			"provider_email": provider.Email,
			"patient_email":  req.PatientEmail,
			"scheduled_at":   when,
		})
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBeingBooked
		}
		return nil, err
	}

	detail := &Detail{Appointment: *created}
	if patient, err := s.directory.ResolveByEmail(ctx, created.PatientEmail); err == nil {
		detail.Patient = &PatientSnapshot{FullName: patient.FullName, Phone: patient.Phone}
	}

	return detail, nil
}

// TransitionStatus applies a status change. Only CONFIRMED, CANCELED and
// COMPLETED are reachable; a COMPLETED appointment never changes again.
func (s *Service) TransitionStatus(ctx context.Context, id uuid.UUID, to Status) (*Appointment, error) {
	switch to {
	case StatusConfirmed, StatusCanceled, StatusCompleted:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidTransition, to)
	}

	appt, err := s.ledger.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	if appt.Status.Terminal() {
		return nil, ErrTerminalState
	}

	updated, err := s.ledger.UpdateStatus(ctx, id, to)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// The CAS refused the row: it was completed between the load and
			// the update.
			return nil, ErrTerminalState
		}
		return nil, fmt.Errorf("update status: %w", err)
	}

	s.logEvent(ctx, updated.ID, EventStatusChanged, map[string]any{
		"from": appt.Status,
		"to":   updated.Status,
	})

	return updated, nil
}

// ListForProvider returns the provider's appointments, newest first, with a
// patient phone snapshot for the desk view.
func (s *Service) ListForProvider(ctx context.Context, providerID uuid.UUID) ([]Detail, error) {
	email, err := s.resolveEmail(ctx, providerID)
	if err != nil {
		return nil, err
	}

	details, err := s.ledger.ListByProvider(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list appointments by provider: %w", err)
	}
	return details, nil
}

// ListForPatient returns the patient's appointments, oldest first, with the
// provider's specialty joined on.
func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]Detail, error) {
	email, err := s.resolveEmail(ctx, patientID)
	if err != nil {
		return nil, err
	}

	details, err := s.ledger.ListByPatient(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list appointments by patient: %w", err)
	}
	return details, nil
}

func (s *Service) resolveEmail(ctx context.Context, accountID uuid.UUID) (string, error) {
	acct, err := s.directory.Resolve(ctx, accountID)
	if err != nil {
		if errors.Is(err, identity.ErrAccountNotFound) {
			return "", err
		}
		return "", fmt.Errorf("resolve account: %w", err)
	}
	return acct.Email, nil
}

func (s *Service) logEvent(ctx context.Context, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Warn().Err(err).Str("event", eventType).Msg("marshal event payload")
		data = nil
	}

	apptID := appointmentID

	ev := EventLog{
		EventType:     eventType,
		AppointmentID: &apptID,
		Payload:       data,
		CreatedAt:     time.Now(),
	}

	if err := s.ledger.InsertEvent(ctx, ev); err != nil {
		s.log.Warn().Err(err).
			Str("event", eventType).
			Str("appointment_id", appointmentID.String()).
			Msg("insert event log")
	}
}
