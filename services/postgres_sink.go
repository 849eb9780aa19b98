package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"sensor-dashboard/models"
)

// PostgresSink stores readings in long form, one row per field:
//
//	CREATE TABLE IF NOT EXISTS sensor_readings (
//	  id          BIGSERIAL PRIMARY KEY,
//	  recorded_at TEXT             NOT NULL,
//	  field       TEXT             NOT NULL,
//	  value       DOUBLE PRECISION NOT NULL
//	);
type PostgresSink struct {
	db *sql.DB
}

// NewPostgresSink wraps an open *sql.DB (pgx stdlib driver).
func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

// EnsureSchema creates the table when missing.
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS sensor_readings (
  id          BIGSERIAL PRIMARY KEY,
  recorded_at TEXT             NOT NULL,
  field       TEXT             NOT NULL,
  value       DOUBLE PRECISION NOT NULL
);`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("postgres sink: create sensor_readings: %w", err)
	}
	return nil
}

// Name implements ReadingSink.
func (s *PostgresSink) Name() string { return "postgres" }

// Save implements ReadingSink with a single multi-row insert.
func (s *PostgresSink) Save(ctx context.Context, r models.Reading) error {
	fields := r.Fields()
	if len(fields) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO sensor_readings (recorded_at, field, value) VALUES ")
	args := make([]any, 0, len(fields)*3)
	for i, f := range fields {
		if i > 0 {
			b.WriteString(",")
		}
		n := i * 3
		fmt.Fprintf(&b, "($%d,$%d,$%d)", n+1, n+2, n+3)
		args = append(args, r.Timestamp, f, r.Values[f])
	}

	if _, err := s.db.ExecContext(ctx, b.String(), args...); err != nil {
		return fmt.Errorf("postgres sink: insert reading: %w", err)
	}
	return nil
}

// Recent returns the latest limit values of field, oldest first.
func (s *PostgresSink) Recent(ctx context.Context, field string, limit int) ([]float64, error) {
	const q = `
SELECT value FROM (
  SELECT id, value FROM sensor_readings
  WHERE field = $1
  ORDER BY id DESC
  LIMIT $2
) latest
ORDER BY id ASC
`
	rows, err := s.db.QueryContext(ctx, q, field, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres sink: query recent: %w", err)
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("postgres sink: scan value: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres sink: rows error: %w", err)
	}
	return out, nil
}
