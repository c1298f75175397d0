package dossier

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chronocare/chronocare-api/internal/consultation"
)

// DB is the slice of pgxpool.Pool the repository uses. Begin is part of it so
// the cascade delete can run against a substitute transaction source.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type PgRepository struct {
	db DB
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{db: pool}
}

// Helpers

const dossierColumns = `id, dossier_number, patient_id, patient_email, provider_id, full_name, gender, birth_date, phone, chronic_disease, chronic_detail, weight, height, document_path, created_at`

func scanDossier(row pgx.Row) (*Dossier, error) {
	var d Dossier

	err := row.Scan(
		&d.ID,
		&d.DossierNumber,
		&d.PatientID,
		&d.PatientEmail,
		&d.ProviderID,
		&d.FullName,
		&d.Gender,
		&d.BirthDate,
		&d.Phone,
		&d.ChronicDisease,
		&d.ChronicDetail,
		&d.Weight,
		&d.Height,
		&d.DocumentPath,
		&d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDossierNotFound
		}
		return nil, err
	}

	return &d, nil
}

// Interface methods

func (r *PgRepository) Insert(ctx context.Context, d *Dossier) (*Dossier, error) {
	id := uuid.New()

	row := r.db.QueryRow(ctx, `
		INSERT INTO dossiers (id, dossier_number, patient_id, patient_email, provider_id, full_name, gender, birth_date, phone, chronic_disease, chronic_detail, weight, height, document_path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now())
		RETURNING `+dossierColumns+`
	`, id, d.DossierNumber, d.PatientID, d.PatientEmail, d.ProviderID, d.FullName, d.Gender, d.BirthDate, d.Phone, d.ChronicDisease, d.ChronicDetail, d.Weight, d.Height, d.DocumentPath)

	return scanDossier(row)
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Dossier, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+dossierColumns+`
		FROM dossiers
		WHERE id = $1
	`, id)
	return scanDossier(row)
}

func (r *PgRepository) ListByPatient(ctx context.Context, patientEmail string) ([]Detail, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+dossierColumns+`
		FROM dossiers
		WHERE patient_email = $1
		ORDER BY created_at DESC
	`, patientEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []Detail
	var ids []uuid.UUID
	index := make(map[uuid.UUID]int)

	for rows.Next() {
		d, err := scanDossier(rows)
		if err != nil {
			return nil, err
		}
		index[d.ID] = len(details)
		ids = append(ids, d.ID)
		details = append(details, Detail{Dossier: *d})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return details, nil
	}

	consultRows, err := r.db.Query(ctx, `
		SELECT id, dossier_id, provider_email, patient_email, motive, notes, prescription, diagnosis, symptoms, next_appointment, document_path, created_at
		FROM consultations
		WHERE dossier_id = ANY($1)
		ORDER BY created_at DESC
	`, ids)
	if err != nil {
		return nil, err
	}
	defer consultRows.Close()

	for consultRows.Next() {
		var c consultation.Consultation
		err := consultRows.Scan(
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
			return nil, err
		}
		if i, ok := index[c.DossierID]; ok {
			details[i].Consultations = append(details[i].Consultations, c)
		}
	}
	if err := consultRows.Err(); err != nil {
		return nil, err
	}

	return details, nil
}

// MostRecentDossierID returns uuid.Nil (with a nil error) when the patient
// has no dossier at all.
func (r *PgRepository) MostRecentDossierID(ctx context.Context, patientEmail string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx, `
		SELECT id
		FROM dossiers
		WHERE patient_email = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, patientEmail).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, nil
		}
		return uuid.Nil, err
	}
	return id, nil
}

// DeleteCascade removes consultations then the dossier in one transaction so
// a mid-failure can never strand orphaned consultations or a half-deleted
// dossier.
func (r *PgRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM consultations WHERE dossier_id = $1`, id); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM dossiers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDossierNotFound
	}

	return tx.Commit(ctx)
}
