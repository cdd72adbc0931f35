package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stocknexus/backend/internal/models"
)

// LogActivity writes an audit row. Callers treat failures as
// non-fatal; the action being logged must never be blocked by the log.
func (db *Database) LogActivity(ctx context.Context, userID, action string, details map[string]interface{}) error {
	var detailsParam interface{}
	if details != nil {
		encoded, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("failed to encode activity details: %w", err)
		}
		detailsParam = string(encoded)
	}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO activity_logs (user_id, action, details) VALUES ($1, $2, $3::jsonb)`,
		userID, action, detailsParam)
	if err != nil {
		return fmt.Errorf("failed to insert activity log: %w", err)
	}
	return nil
}

// ListActivity returns recent activity rows. With onlyUserID set the
// listing is restricted to that user's own actions (the staff view);
// otherwise it covers every user visible to the viewer's branch scope.
func (db *Database) ListActivity(ctx context.Context, viewer *models.Profile, onlyUserID string, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var query string
	var args []interface{}
	if onlyUserID != "" {
		query = `
            SELECT a.id, a.user_id, COALESCE(p.name, ''), a.action, a.details, a.created_at
            FROM activity_logs a
            LEFT JOIN profiles p ON p.id = a.user_id
            WHERE a.user_id = $1
            ORDER BY a.created_at DESC LIMIT $2`
		args = []interface{}{onlyUserID, limit}
	} else {
		cond, scopeArgs := ProfileScope(viewer)
		args = scopeArgs
		args = append(args, limit)
		query = fmt.Sprintf(`
            SELECT a.id, a.user_id, COALESCE(p.name, ''), a.action, a.details, a.created_at
            FROM activity_logs a
            JOIN profiles p ON p.id = a.user_id
            WHERE %s
            ORDER BY a.created_at DESC LIMIT $%d`, cond, len(args))
	}

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity logs: %w", err)
	}
	defer rows.Close()

	logs := []models.ActivityLog{}
	for rows.Next() {
		var a models.ActivityLog
		var details []byte
		if err := rows.Scan(&a.ID, &a.UserID, &a.UserName, &a.Action, &details, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}
		if len(details) > 0 {
			_ = json.Unmarshal(details, &a.Details)
		}
		logs = append(logs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity logs: %w", err)
	}
	return logs, nil
}
