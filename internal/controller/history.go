package controller

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/sunveil-core/internal/cover"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// EvaluationRecord is one persisted position calculation.
type EvaluationRecord struct {
	ID           string              `json:"id"`
	CoverID      string              `json:"cover_id"`
	EvaluatedAt  time.Time           `json:"evaluated_at"`
	Rule         string              `json:"rule"`
	Value        float64             `json:"value"`
	Gamma        float64             `json:"gamma"`
	Elevation    float64             `json:"elevation"`
	SafetyMargin float64             `json:"safety_margin"`
	Flags        cover.ValidityFlags `json:"flags"`
}

// CommandRecord is one persisted dispatched command.
type CommandRecord struct {
	ID      string    `json:"id"`
	CoverID string    `json:"cover_id"`
	SentAt  time.Time `json:"sent_at"`
	Value   float64   `json:"value"`
	Service string    `json:"service"`
	Rule    string    `json:"rule"`
}

// OverrideRecord is one persisted manual intervention.
type OverrideRecord struct {
	ID         string    `json:"id"`
	CoverID    string    `json:"cover_id"`
	DetectedAt time.Time `json:"detected_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	Reported   float64   `json:"reported"`
	Expected   float64   `json:"expected"`
}

// Repository stores and retrieves controller history.
//
// Implementations must be thread-safe and use UTC timestamps.
type Repository interface {
	// RecordEvaluation persists a position calculation.
	RecordEvaluation(ctx context.Context, rec EvaluationRecord) error

	// RecordCommand persists a dispatched command.
	RecordCommand(ctx context.Context, rec CommandRecord) error

	// RecordOverride persists a detected manual intervention.
	RecordOverride(ctx context.Context, rec OverrideRecord) error

	// GetEvaluations returns recent evaluations for a cover, newest first.
	GetEvaluations(ctx context.Context, coverID string, limit int) ([]EvaluationRecord, error)

	// GetCommands returns recent dispatched commands for a cover, newest first.
	GetCommands(ctx context.Context, coverID string, limit int) ([]CommandRecord, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite history repository.
//
// Parameters:
//   - db: Open SQLite connection used for queries
//
// Returns:
//   - *SQLiteRepository: Repository instance ready for use
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// RecordEvaluation inserts an evaluation row. A missing ID is generated.
func (r *SQLiteRepository) RecordEvaluation(ctx context.Context, rec EvaluationRecord) error {
	if rec.CoverID == "" {
		return fmt.Errorf("cover id is required")
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.EvaluatedAt.IsZero() {
		rec.EvaluatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO evaluations
		 (id, cover_id, evaluated_at, rule, value, gamma, elevation, safety_margin,
		  sun_valid, valid_elevation, in_blind_spot, sunset_period, edge_case)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.CoverID,
		rec.EvaluatedAt.UTC().Format(time.RFC3339),
		rec.Rule,
		rec.Value,
		rec.Gamma,
		rec.Elevation,
		rec.SafetyMargin,
		boolToInt(rec.Flags.SunValid),
		boolToInt(rec.Flags.ValidElevation),
		boolToInt(rec.Flags.InBlindSpot),
		boolToInt(rec.Flags.SunsetPeriod),
		boolToInt(rec.Flags.EdgeCase),
	)
	if err != nil {
		return fmt.Errorf("inserting evaluation: %w", err)
	}
	return nil
}

// RecordCommand inserts a command row. A missing ID is generated.
func (r *SQLiteRepository) RecordCommand(ctx context.Context, rec CommandRecord) error {
	if rec.CoverID == "" {
		return fmt.Errorf("cover id is required")
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.SentAt.IsZero() {
		rec.SentAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO commands (id, cover_id, sent_at, value, service, rule)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.CoverID,
		rec.SentAt.UTC().Format(time.RFC3339),
		rec.Value,
		rec.Service,
		rec.Rule,
	)
	if err != nil {
		return fmt.Errorf("inserting command: %w", err)
	}
	return nil
}

// RecordOverride inserts an override row. A missing ID is generated.
func (r *SQLiteRepository) RecordOverride(ctx context.Context, rec OverrideRecord) error {
	if rec.CoverID == "" {
		return fmt.Errorf("cover id is required")
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.DetectedAt.IsZero() {
		rec.DetectedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO overrides (id, cover_id, detected_at, expires_at, reported, expected)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.CoverID,
		rec.DetectedAt.UTC().Format(time.RFC3339),
		formatOptionalTime(rec.ExpiresAt),
		rec.Reported,
		rec.Expected,
	)
	if err != nil {
		return fmt.Errorf("inserting override: %w", err)
	}
	return nil
}

// GetEvaluations returns recent evaluations for a cover, newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - coverID: Cover identifier
//   - limit: Maximum entries to return (default 50, max 200)
func (r *SQLiteRepository) GetEvaluations(ctx context.Context, coverID string, limit int) ([]EvaluationRecord, error) {
	if coverID == "" {
		return nil, fmt.Errorf("cover id is required")
	}
	limit = clampLimit(limit)

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, cover_id, evaluated_at, rule, value, gamma, elevation, safety_margin,
		        sun_valid, valid_elevation, in_blind_spot, sunset_period, edge_case
		 FROM evaluations
		 WHERE cover_id = ?
		 ORDER BY evaluated_at DESC
		 LIMIT ?`,
		coverID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying evaluations: %w", err)
	}
	defer rows.Close()

	records := make([]EvaluationRecord, 0, limit)
	for rows.Next() {
		var rec EvaluationRecord
		var evaluatedAt string
		var sunValid, validElevation, inBlindSpot, sunsetPeriod, edgeCase int

		if err := rows.Scan(
			&rec.ID, &rec.CoverID, &evaluatedAt, &rec.Rule,
			&rec.Value, &rec.Gamma, &rec.Elevation, &rec.SafetyMargin,
			&sunValid, &validElevation, &inBlindSpot, &sunsetPeriod, &edgeCase,
		); err != nil {
			return nil, fmt.Errorf("scanning evaluation: %w", err)
		}

		timestamp, err := parseHistoryTimestamp(evaluatedAt)
		if err != nil {
			return nil, err
		}
		rec.EvaluatedAt = timestamp
		rec.Flags = cover.ValidityFlags{
			SunValid:       sunValid != 0,
			ValidElevation: validElevation != 0,
			InBlindSpot:    inBlindSpot != 0,
			SunsetPeriod:   sunsetPeriod != 0,
			EdgeCase:       edgeCase != 0,
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating evaluations: %w", err)
	}
	return records, nil
}

// GetCommands returns recent dispatched commands for a cover, newest first.
func (r *SQLiteRepository) GetCommands(ctx context.Context, coverID string, limit int) ([]CommandRecord, error) {
	if coverID == "" {
		return nil, fmt.Errorf("cover id is required")
	}
	limit = clampLimit(limit)

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, cover_id, sent_at, value, service, rule
		 FROM commands
		 WHERE cover_id = ?
		 ORDER BY sent_at DESC
		 LIMIT ?`,
		coverID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying commands: %w", err)
	}
	defer rows.Close()

	records := make([]CommandRecord, 0, limit)
	for rows.Next() {
		var rec CommandRecord
		var sentAt string

		if err := rows.Scan(&rec.ID, &rec.CoverID, &sentAt, &rec.Value, &rec.Service, &rec.Rule); err != nil {
			return nil, fmt.Errorf("scanning command: %w", err)
		}

		timestamp, err := parseHistoryTimestamp(sentAt)
		if err != nil {
			return nil, err
		}
		rec.SentAt = timestamp

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating commands: %w", err)
	}
	return records, nil
}

// PruneEvaluations deletes evaluation rows older than the given duration.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - olderThan: Duration to retain (rows older than now-olderThan are deleted)
//
// Returns:
//   - int64: Number of rows deleted
func (r *SQLiteRepository) PruneEvaluations(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}

	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM evaluations WHERE evaluated_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting evaluations: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return rowsAffected, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		return maxHistoryLimit
	}
	return limit
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatOptionalTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// parseHistoryTimestamp parses a timestamp stored in SQLite.
func parseHistoryTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("timestamp is empty")
	}

	timestamp, err := time.Parse(time.RFC3339, value)
	if err == nil {
		return timestamp, nil
	}

	fallback, fallbackErr := time.Parse("2006-01-02T15:04:05Z", value)
	if fallbackErr == nil {
		return fallback, nil
	}

	return time.Time{}, fmt.Errorf("parsing timestamp: %w", err)
}
