package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
)

// PostgresRecorder persists snapshot history to PostgreSQL.
type PostgresRecorder struct {
	sqlRecorder
}

// NewPostgresRecorder connects, pings and runs migrations.
func NewPostgresRecorder(ctx context.Context, dsn string) (*PostgresRecorder, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	r := &PostgresRecorder{sqlRecorder{db: db, name: "postgres", dollar: true}}
	if err := r.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Println("[INFO] postgres recorder connected")
	return r, nil
}

func (r *PostgresRecorder) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id               BIGSERIAL PRIMARY KEY,
			taken_at         BIGINT NOT NULL,
			cpi_date         BIGINT,
			cpi              DOUBLE PRECISION,
			cpi_change       DOUBLE PRECISION,
			inflation_date   BIGINT,
			inflation        DOUBLE PRECISION,
			inflation_change DOUBLE PRECISION,
			m2_growth_date   BIGINT,
			m2_growth        DOUBLE PRECISION,
			m2_growth_change DOUBLE PRECISION,
			fed_rate_date    BIGINT,
			fed_rate         DOUBLE PRECISION,
			fed_rate_change  DOUBLE PRECISION,
			purchasing_power DOUBLE PRECISION,
			correlation      DOUBLE PRECISION,
			correlation_tier TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_ts ON snapshots(taken_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// Health pings the database.
func (r *PostgresRecorder) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.db.PingContext(ctx)
}
