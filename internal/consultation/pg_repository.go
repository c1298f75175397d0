package consultation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgLog struct {
	pool *pgxpool.Pool
}

func NewPgLog(pool *pgxpool.Pool) *PgLog {
	return &PgLog{pool: pool}
}

const consultationColumns = `id, dossier_id, provider_email, patient_email, motive, notes, prescription, diagnosis, symptoms, next_appointment, document_path, created_at`

func scanConsultation(row pgx.Row) (*Consultation, error) {
	var c Consultation

	err := row.Scan(
		&c.ID,
		&c.DossierID,
		&c.ProviderEmail,
		&c.PatientEmail,
		&c.Motive,
		&c.Notes,
		&c.Prescription,
		&c.Diagnosis,
		&c.Symptoms,
		&c.NextAppointment,
		&c.DocumentPath,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConsultationNotFound
		}
		return nil, err
	}

	return &c, nil
}

func (r *PgLog) Insert(ctx context.Context, c *Consultation) (*Consultation, error) {
	id := uuid.New()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO consultations (id, dossier_id, provider_email, patient_email, motive, notes, prescription, diagnosis, symptoms, next_appointment, document_path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
		RETURNING `+consultationColumns+`
	`, id, c.DossierID, c.ProviderEmail, c.PatientEmail, c.Motive, c.Notes, c.Prescription, c.Diagnosis, c.Symptoms, c.NextAppointment, c.DocumentPath)

	return scanConsultation(row)
}

func (r *PgLog) ListByDossier(ctx context.Context, dossierID uuid.UUID) ([]Detail, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.dossier_id, c.provider_email, c.patient_email, c.motive, c.notes, c.prescription, c.diagnosis, c.symptoms, c.next_appointment, c.document_path, c.created_at,
		       pr.full_name, pr.specialty
		FROM consultations c
		LEFT JOIN accounts pr ON pr.email = c.provider_email
		WHERE c.dossier_id = $1
		ORDER BY c.created_at DESC
	`, dossierID)
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
			&d.DossierID,
			&d.ProviderEmail,
			&d.PatientEmail,
			&d.Motive,
			&d.Notes,
			&d.Prescription,
			&d.Diagnosis,
			&d.Symptoms,
			&d.NextAppointment,
			&d.DocumentPath,
			&d.CreatedAt,
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
