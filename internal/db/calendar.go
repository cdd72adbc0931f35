package db

import (
	"context"
	"fmt"
	"time"

	"github.com/stocknexus/backend/internal/models"
)

const eventColumns = `id, branch_id, title, description, event_date, event_type, created_by, reminded, created_at`

func scanEvent(row interface{ Scan(...interface{}) error }) (*models.CalendarEvent, error) {
	var e models.CalendarEvent
	err := row.Scan(&e.ID, &e.BranchID, &e.Title, &e.Description, &e.EventDate,
		&e.EventType, &e.CreatedBy, &e.Reminded, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateEvent inserts a calendar event for a branch.
func (db *Database) CreateEvent(ctx context.Context, branchID, userID string, req models.CreateEventRequest) (*models.CalendarEvent, error) {
	query := `
        INSERT INTO calendar_events (branch_id, title, description, event_date, event_type, created_by)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING ` + eventColumns
	e, err := scanEvent(db.Pool.QueryRow(ctx, query, branchID, req.Title, req.Description, req.EventDate, req.EventType, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}
	return e, nil
}

// ListEvents returns the events of a branch inside an optional window,
// soonest first.
func (db *Database) ListEvents(ctx context.Context, branchID string, from, to time.Time) ([]models.CalendarEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM calendar_events WHERE branch_id = $1`
	args := []interface{}{branchID}
	if !from.IsZero() {
		args = append(args, from)
		query += fmt.Sprintf(` AND event_date >= $%d`, len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		query += fmt.Sprintf(` AND event_date <= $%d`, len(args))
	}
	query += ` ORDER BY event_date`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := []models.CalendarEvent{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	return events, nil
}

// GetEvent fetches a single calendar event.
func (db *Database) GetEvent(ctx context.Context, id string) (*models.CalendarEvent, error) {
	e, err := scanEvent(db.Pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM calendar_events WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event: %w", err)
	}
	return e, nil
}

// UpdateEvent applies a partial event update.
func (db *Database) UpdateEvent(ctx context.Context, id string, req models.UpdateEventRequest) (*models.CalendarEvent, error) {
	query := `
        UPDATE calendar_events SET
            title = COALESCE($2, title),
            description = COALESCE($3, description),
            event_date = COALESCE($4, event_date),
            event_type = COALESCE($5, event_type)
        WHERE id = $1
        RETURNING ` + eventColumns
	e, err := scanEvent(db.Pool.QueryRow(ctx, query, id, req.Title, req.Description, req.EventDate, req.EventType))
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return e, nil
}

// DeleteEvent removes a calendar event.
func (db *Database) DeleteEvent(ctx context.Context, id string) error {
	result, err := db.Pool.Exec(ctx, `DELETE FROM calendar_events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("event %s not found", id)
	}
	return nil
}

// DueReminders returns unreminded events starting within the window.
func (db *Database) DueReminders(ctx context.Context, window time.Duration) ([]models.CalendarEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM calendar_events
        WHERE reminded = false AND event_date >= now() AND event_date <= now() + $1
        ORDER BY event_date`

	rows, err := db.Pool.Query(ctx, query, window)
	if err != nil {
		return nil, fmt.Errorf("failed to query due reminders: %w", err)
	}
	defer rows.Close()

	events := []models.CalendarEvent{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating due reminders: %w", err)
	}
	return events, nil
}

// MarkEventReminded flags an event so its reminder is sent only once.
func (db *Database) MarkEventReminded(ctx context.Context, id string) error {
	_, err := db.Pool.Exec(ctx, `UPDATE calendar_events SET reminded = true WHERE id = $1`, id)
	return err
}
