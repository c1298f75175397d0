package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the Postgres error code raised by the partial unique
// index on (provider_email, scheduled_at) WHERE status IN ('PLANNED','CONFIRMED').
const uniqueViolation = "23505"

type PgLedger struct {
	pool *pgxpool.Pool
}

func NewPgLedger(pool *pgxpool.Pool) *PgLedger {
	return &PgLedger{pool: pool}
}

// Helpers

const appointmentColumns = `id, provider_email, patient_email, scheduled_at, status, visit_type, remarks, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.ProviderEmail,
		&a.PatientEmail,
		&a.ScheduledAt,
		&a.Status,
		&a.VisitType,
		&a.Remarks,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

// Interface methods

func (r *PgLedger) FindConflict(ctx context.Context, providerEmail string, at time.Time) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE provider_email = $1
		  AND scheduled_at = $2
		  AND status IN ('PLANNED', 'CONFIRMED')
	`, providerEmail, at)
	return scanAppointment(row)
}

func (r *PgLedger) Insert(ctx context.Context, appt *Appointment) (*Appointment, error) {
	id := uuid.New()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, provider_email, patient_email, scheduled_at, status, visit_type, remarks, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'PLANNED', $5, $6, now(), now())
		RETURNING `+appointmentColumns+`
	`, id, appt.ProviderEmail, appt.PatientEmail, appt.ScheduledAt, appt.VisitType, appt.Remarks)

	created, err := scanAppointment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrSlotOccupied
		}
		return nil, err
	}

	return created, nil
}

func (r *PgLedger) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

// UpdateStatus is a compare-and-swap: the WHERE clause refuses to touch a
// COMPLETED row so a concurrent completion can never be overwritten.
func (r *PgLedger) UpdateStatus(ctx context.Context, id uuid.UUID, to Status) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status <> 'COMPLETED'
		RETURNING `+appointmentColumns+`
	`, id, to)
	return scanAppointment(row)
}

func (r *PgLedger) ListByProvider(ctx context.Context, providerEmail string) ([]Detail, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.provider_email, a.patient_email, a.scheduled_at, a.status, a.visit_type, a.remarks, a.created_at, a.updated_at,
		       p.full_name, p.phone
		FROM appointments a
		LEFT JOIN accounts p ON p.email = a.patient_email
		WHERE a.provider_email = $1
		ORDER BY a.scheduled_at DESC
	`, providerEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Detail
	for rows.Next() {
		var d Detail
		var name *string
		var phone *string

		err := rows.Scan(
			&d.ID,
			&d.ProviderEmail,
			&d.PatientEmail,
			&d.ScheduledAt,
			&d.Status,
			&d.VisitType,
			&d.Remarks,
			&d.CreatedAt,
			&d.UpdatedAt,
			&name,
			&phone,
		)
		if err != nil {
			return nil, err
		}

		if name != nil {
			d.Patient = &PatientSnapshot{FullName: *name, Phone: phone}
		}
		result = append(result, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgLedger) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointment_events (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.AppointmentID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert appointment event: %w", err)
	}

	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func (r *PgLedger) ListByPatient(ctx context.Context, patientEmail string) ([]Detail, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.provider_email, a.patient_email, a.scheduled_at, a.status, a.visit_type, a.remarks, a.created_at, a.updated_at,
		       pr.full_name, pr.specialty
		FROM appointments a
		LEFT JOIN accounts pr ON pr.email = a.provider_email
		WHERE a.patient_email = $1
		ORDER BY a.scheduled_at ASC
	`, patientEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Detail
	for rows.Next() {
		var d Detail
		var name *string
		var specialty *string

		err := rows.Scan(
			&d.ID,
			&d.ProviderEmail,
			&d.PatientEmail,
			&d.ScheduledAt,
			&d.Status,
			&d.VisitType,
			&d.Remarks,
			&d.CreatedAt,
			&d.UpdatedAt,
			&name,
			&specialty,
		)
		if err != nil {
			return nil, err
		}

		if name != nil {
			d.Provider = &ProviderSnapshot{FullName: *name, Specialty: specialty}
		}
		result = append(result, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
