package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// AssignmentEvent is one audit row: a pick attempt and its outcome.
type AssignmentEvent struct {
	ID           int64     `db:"id" json:"id"`
	City         string    `db:"city" json:"city"`
	Country      string    `db:"country" json:"country"`
	Provider     string    `db:"provider" json:"provider"`
	ImageID      string    `db:"image_id" json:"image_id"`
	SourceURL    string    `db:"source_url" json:"source_url"`
	Filename     string    `db:"filename" json:"filename"`
	Success      bool      `db:"success" json:"success"`
	ErrorMessage *string   `db:"error_message" json:"error_message,omitempty"`
	DurationMs   *int64    `db:"duration_ms" json:"duration_ms,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// HistoryRepository persists the assignment audit log.
// Only the interface is exported; the SQLite implementation stays private.
type HistoryRepository interface {
	Record(ctx context.Context, ev *AssignmentEvent) error
	List(ctx context.Context, limit int) ([]AssignmentEvent, error)
	CountSuccessful(ctx context.Context) (int64, error)
}

type sqliteHistoryRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository creates a SQLite-backed HistoryRepository.
func NewHistoryRepository(db *sqlx.DB) HistoryRepository {
	return &sqliteHistoryRepository{db: db}
}

func (r *sqliteHistoryRepository) Record(ctx context.Context, ev *AssignmentEvent) error {
	result, err := r.db.NamedExecContext(ctx, `
		INSERT INTO assignment_events
			(city, country, provider, image_id, source_url, filename, success, error_message, duration_ms)
		VALUES
			(:city, :country, :provider, :image_id, :source_url, :filename, :success, :error_message, :duration_ms)
	`, ev)
	if err != nil {
		return fmt.Errorf("recording assignment event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	ev.ID = id
	return nil
}

func (r *sqliteHistoryRepository) List(ctx context.Context, limit int) ([]AssignmentEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []AssignmentEvent
	err := r.db.SelectContext(ctx, &events,
		"SELECT * FROM assignment_events ORDER BY created_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("listing assignment events: %w", err)
	}
	return events, nil
}

func (r *sqliteHistoryRepository) CountSuccessful(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM assignment_events WHERE success = 1")
	if err != nil {
		return 0, fmt.Errorf("counting successful events: %w", err)
	}
	return count, nil
}
