package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Sokol111/mqtt-event-ingestor/pkg/persistence/sqldb"
)

// EventEntity is a row of the event table.
type EventEntity struct {
	ID        int64
	Topic     string
	FirstName string
	LastName  string
	Timestamp time.Time
}

// EventRepository is append-only: events are inserted and read, never updated.
type EventRepository interface {
	// Insert stores e and returns the id assigned by the store. It joins the
	// transaction carried by ctx, if any.
	Insert(ctx context.Context, e *EventEntity) (int64, error)

	// ListTimestamps returns every event timestamp in ascending order.
	ListTimestamps(ctx context.Context) ([]time.Time, error)

	Count(ctx context.Context) (int64, error)
}

type eventRepository struct {
	db         *sqldb.DB
	insertStmt string
}

func NewEventRepository(db *sqldb.DB) EventRepository {
	return &eventRepository{
		db: db,
		insertStmt: db.Rebind(
			"INSERT INTO event (topic, first_name, last_name, timestamp) VALUES (?, ?, ?, ?) RETURNING id",
		),
	}
}

func (r *eventRepository) Insert(ctx context.Context, e *EventEntity) (int64, error) {
	ctx, cancel := r.db.WithQueryTimeout(ctx)
	defer cancel()

	var id int64
	err := r.db.Conn(ctx).
		QueryRowContext(ctx, r.insertStmt, e.Topic, e.FirstName, e.LastName, e.Timestamp).
		Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert event: %w", err)
	}
	return id, nil
}

func (r *eventRepository) ListTimestamps(ctx context.Context) ([]time.Time, error) {
	ctx, cancel := r.db.WithQueryTimeout(ctx)
	defer cancel()

	rows, err := r.db.Conn(ctx).QueryContext(ctx, "SELECT timestamp FROM event ORDER BY timestamp ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query event timestamps: %w", err)
	}
	defer rows.Close()

	var result []time.Time
	for rows.Next() {
		var ts time.Time
		if err := rows.Scan(&ts); err != nil {
			return nil, fmt.Errorf("failed to scan event timestamp: %w", err)
		}
		result = append(result, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read event timestamps: %w", err)
	}
	return result, nil
}

func (r *eventRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.db.WithQueryTimeout(ctx)
	defer cancel()

	var n int64
	if err := r.db.Conn(ctx).QueryRowContext(ctx, "SELECT COUNT(*) FROM event").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return n, nil
}
