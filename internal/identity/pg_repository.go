package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

const accountColumns = `id, role, email, full_name, phone, specialty, gender, birth_date, avatar_path, created_at, updated_at`

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account

	err := row.Scan(
		&a.ID,
		&a.Role,
		&a.Email,
		&a.FullName,
		&a.Phone,
		&a.Specialty,
		&a.Gender,
		&a.BirthDate,
		&a.AvatarPath,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	return &a, nil
}

func scanKid(row pgx.Row) (*Kid, error) {
	var k Kid

	err := row.Scan(
		&k.ID,
		&k.PatientID,
		&k.FirstName,
		&k.LastName,
		&k.BirthDate,
		&k.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrKidNotFound
		}
		return nil, err
	}

	return &k, nil
}

// Interface methods

func (r *PgRepository) GetAccountByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1
	`, id)
	return scanAccount(row)
}

func (r *PgRepository) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE email = $1
	`, email)
	return scanAccount(row)
}

func (r *PgRepository) UpdatePatientProfile(ctx context.Context, id uuid.UUID, upd ProfileUpdate) (*Account, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE accounts
		SET gender      = COALESCE($2, gender),
		    birth_date  = COALESCE($3, birth_date),
		    phone       = COALESCE($4, phone),
		    email       = COALESCE($5, email),
		    avatar_path = COALESCE($6, avatar_path),
		    updated_at  = now()
		WHERE id = $1 AND role = 'PATIENT'
		RETURNING `+accountColumns+`
	`, id, upd.Gender, upd.BirthDate, upd.Phone, upd.Email, upd.AvatarPath)
	return scanAccount(row)
}

func (r *PgRepository) UpdatePersonnelProfile(ctx context.Context, id uuid.UUID, upd ProfileUpdate) (*Account, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE accounts
		SET gender      = COALESCE($2, gender),
		    birth_date  = COALESCE($3, birth_date),
		    phone       = COALESCE($4, phone),
		    email       = COALESCE($5, email),
		    specialty   = COALESCE($6, specialty),
		    avatar_path = COALESCE($7, avatar_path),
		    updated_at  = now()
		WHERE id = $1 AND role = 'HEALTH_PERSONNEL'
		RETURNING `+accountColumns+`
	`, id, upd.Gender, upd.BirthDate, upd.Phone, upd.Email, upd.Specialty, upd.AvatarPath)
	return scanAccount(row)
}

func (r *PgRepository) UpdateAdminProfile(ctx context.Context, id uuid.UUID, upd ProfileUpdate) (*Account, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE accounts
		SET gender      = COALESCE($2, gender),
		    birth_date  = COALESCE($3, birth_date),
		    phone       = COALESCE($4, phone),
		    email       = COALESCE($5, email),
		    avatar_path = COALESCE($6, avatar_path),
		    updated_at  = now()
		WHERE id = $1 AND role = 'ADMIN'
		RETURNING `+accountColumns+`
	`, id, upd.Gender, upd.BirthDate, upd.Phone, upd.Email, upd.AvatarPath)
	return scanAccount(row)
}

func (r *PgRepository) InsertKid(ctx context.Context, kid *Kid) (*Kid, error) {
	id := uuid.New()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO kids (id, patient_id, first_name, last_name, birth_date, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING id, patient_id, first_name, last_name, birth_date, created_at
	`, id, kid.PatientID, kid.FirstName, kid.LastName, kid.BirthDate)

	return scanKid(row)
}

func (r *PgRepository) ListKidsByPatient(ctx context.Context, patientID uuid.UUID) ([]Kid, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, patient_id, first_name, last_name, birth_date, created_at
		FROM kids
		WHERE patient_id = $1
		ORDER BY created_at
	`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Kid
	for rows.Next() {
		k, err := scanKid(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *k)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
