package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"vayro/config"
	"vayro/logger"

	_ "github.com/lib/pq"
)

var DB *sql.DB

// ErrNotFound is returned when no trip plan has the requested id.
var ErrNotFound = errors.New("trip plan not found")

// ErrNotConnected is returned when the database was never initialized.
var ErrNotConnected = errors.New("database not connected")

// ─── Models ──────────────────────────────────────────────────────────────────

// TripPlan is a generated plan as stored. The budget summary is not stored;
// it is recomputed from ItineraryJSON on every read.
type TripPlan struct {
	ID            string    `json:"id"`
	DestCity      string    `json:"dest_city"`
	DestCountry   string    `json:"dest_country"`
	Budget        float64   `json:"budget"`
	Duration      int       `json:"duration"`
	RawPlan       string    `json:"raw_plan"`
	ItineraryJSON string    `json:"itinerary_json"`
	PDFData       []byte    `json:"pdf_data,omitempty"`
	TravelerName  string    `json:"traveler_name"`
	CreatedAt     time.Time `json:"created_at"`
}

// ─── Init ─────────────────────────────────────────────────────────────────────

const (
	pingAttempts = 10
	pingInterval = 2 * time.Second
)

func InitDB(cfg config.DatabaseConfig) error {
	log := logger.GetLogger()

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Hosted Postgres may take a moment to accept connections.
	for i := 0; i < pingAttempts; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		log.Infow("Waiting for database", "attempt", i+1, "of", pingAttempts, "error", err)
		time.Sleep(pingInterval)
	}
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to connect to database after %d attempts: %w", pingAttempts, err)
	}

	DB = db
	if err := migrate(context.Background()); err != nil {
		return err
	}
	log.Info("Database connected and migrated")
	return nil
}

// Ping reports whether the database answers.
func Ping(ctx context.Context) error {
	if DB == nil {
		return ErrNotConnected
	}
	return DB.PingContext(ctx)
}

// ─── Migrations ───────────────────────────────────────────────────────────────

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS trip_plans (
		id             TEXT PRIMARY KEY,
		dest_city      TEXT NOT NULL,
		dest_country   TEXT NOT NULL DEFAULT '',
		budget         DOUBLE PRECISION NOT NULL DEFAULT 0,
		duration       INTEGER NOT NULL DEFAULT 0,
		raw_plan       TEXT NOT NULL,
		itinerary_json TEXT NOT NULL,
		pdf_data       BYTEA,
		traveler_name  TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_trip_plans_created_at
		ON trip_plans(created_at DESC)`,

	// Summaries are recomputed from the stored budget, so it keeps full float precision.
	`ALTER TABLE trip_plans ALTER COLUMN budget TYPE DOUBLE PRECISION`,
}

func migrate(ctx context.Context) error {
	for _, m := range migrations {
		if _, err := DB.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── CRUD ─────────────────────────────────────────────────────────────────────

func SaveTripPlan(ctx context.Context, p *TripPlan) error {
	if DB == nil {
		return ErrNotConnected
	}
	_, err := DB.ExecContext(ctx, `
		INSERT INTO trip_plans (id, dest_city, dest_country, budget, duration, raw_plan, itinerary_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.DestCity, p.DestCountry, p.Budget, p.Duration, p.RawPlan, p.ItineraryJSON)
	return err
}

func GetTripPlan(ctx context.Context, id string) (*TripPlan, error) {
	if DB == nil {
		return nil, ErrNotConnected
	}
	p := &TripPlan{}
	var travelerName sql.NullString
	err := DB.QueryRowContext(ctx, `
		SELECT id, dest_city, dest_country, budget, duration, raw_plan, itinerary_json, pdf_data, traveler_name, created_at
		FROM trip_plans WHERE id = $1`, id).
		Scan(&p.ID, &p.DestCity, &p.DestCountry, &p.Budget, &p.Duration,
			&p.RawPlan, &p.ItineraryJSON, &p.PDFData, &travelerName, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.TravelerName = travelerName.String
	return p, nil
}

func UpdateTripPlanPDF(ctx context.Context, id string, pdfData []byte, travelerName string) error {
	if DB == nil {
		return ErrNotConnected
	}
	res, err := DB.ExecContext(ctx, `
		UPDATE trip_plans SET pdf_data = $1, traveler_name = $2 WHERE id = $3`,
		pdfData, travelerName, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
