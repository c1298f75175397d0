package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chronocare/chronocare-api/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	providers, err := seedPersonnel(context.Background(), pool, 100)
	if err != nil {
		log.Fatalf("seed health personnel: %v", err)
	}
	patients, err := seedPatients(context.Background(), pool, 9000)
	if err != nil {
		log.Fatalf("seed patients: %v", err)
	}
	if err := seedAppointments(context.Background(), pool, providers, patients, 2000); err != nil {
		log.Fatalf("seed appointments: %v", err)
	}

	log.Println("seed complete")
}

func seedPersonnel(ctx context.Context, pool *pgxpool.Pool, count int) ([]string, error) {
	log.Printf("seeding %d health personnel", count)

	specialties := []string{
		"Dermatology",
		"Cardiology",
		"General Practice",
		"Orthopedics",
		"Endocrinology",
		"Neurology",
		"Pediatrics",
		"Psychiatry",
		"Ophthalmology",
		"ENT",
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	emails := make([]string, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		name := gofakeit.Name()
		email := gofakeit.Email()
		phone := gofakeit.Phone()
		spec := specialties[gofakeit.Number(0, len(specialties)-1)]

		_, err := tx.Exec(ctx, `
			INSERT INTO accounts (id, role, email, full_name, phone, specialty, created_at, updated_at)
			VALUES ($1, 'HEALTH_PERSONNEL', $2, $3, $4, $5, now(), now())
		`, id, email, name, phone, spec)
		if err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Println("health personnel seeded")
	return emails, nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) ([]string, error) {
	log.Printf("seeding %d patients", count)

	const batchSize = 500

	emails := make([]string, 0, count)
	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return nil, err
		}

		for i := offset; i < end; i++ {
			id := uuid.New()
			name := gofakeit.Name()
			email := gofakeit.Email()
			phone := gofakeit.Phone()
			birth := gofakeit.DateRange(
				time.Now().AddDate(-90, 0, 0),
				time.Now().AddDate(-18, 0, 0),
			)

			_, err := tx.Exec(ctx, `
				INSERT INTO accounts (id, role, email, full_name, phone, birth_date, created_at, updated_at)
				VALUES ($1, 'PATIENT', $2, $3, $4, $5, now(), now())
			`, id, email, name, phone, birth)
			if err != nil {
				_ = tx.Rollback(ctx)
				return nil, err
			}
			emails = append(emails, email)
		}

		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}

		log.Printf("patients seeded: %d/%d", end, count)
	}

	log.Println("patients seeded")
	return emails, nil
}

// seedAppointments books PLANNED appointments on distinct future hourly slots
// per provider, so listings and transitions have data to work against without
// tripping the slot uniqueness index.
func seedAppointments(ctx context.Context, pool *pgxpool.Pool, providers, patients []string, count int) error {
	log.Printf("seeding %d appointments", count)

	visitTypes := []string{"CONSULTATION", "SUIVI", "CONTROLE", "URGENCE"}
	base := time.Now().UTC().Truncate(time.Hour).Add(48 * time.Hour)

	const batchSize = 500

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			provider := providers[i%len(providers)]
			patient := patients[gofakeit.Number(0, len(patients)-1)]
			// i/len(providers) walks each provider forward one hour per round
			slot := base.Add(time.Duration(i/len(providers)) * time.Hour)
			visit := visitTypes[gofakeit.Number(0, len(visitTypes)-1)]

			_, err := tx.Exec(ctx, `
				INSERT INTO appointments (id, provider_email, patient_email, scheduled_at, status, visit_type, remarks, created_at, updated_at)
				VALUES ($1, $2, $3, $4, 'PLANNED', $5, $6, now(), now())
			`, uuid.New(), provider, patient, slot, visit, gofakeit.Sentence(6))
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		log.Printf("appointments seeded: %d/%d", end, count)
	}

	log.Println("appointments seeded")
	return nil
}
