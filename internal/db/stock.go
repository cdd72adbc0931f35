package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stocknexus/backend/internal/models"
)

// ErrInsufficientStock is returned when an out movement would drive
// current_quantity below zero. The guard lives in the movement
// transaction itself, so concurrent movements against one item
// serialize on the stock row and the check cannot be raced past.
var ErrInsufficientStock = errors.New("insufficient stock for movement")

// ErrStockNotFound is returned when an item has no stock row.
var ErrStockNotFound = errors.New("stock record not found")

// ListStock returns the stock of a branch joined with item data.
// Classification is applied in Go via models.ClassifyStock, the single
// source of the threshold rule.
func (db *Database) ListStock(ctx context.Context, branchID string) ([]models.StockEntry, error) {
	query := `
        SELECT s.item_id, i.name, i.category, i.branch_id, s.current_quantity,
               i.threshold_level, s.updated_at, s.updated_by
        FROM stock s
        JOIN items i ON i.id = s.item_id
        WHERE i.branch_id = $1
        ORDER BY i.name`

	rows, err := db.Pool.Query(ctx, query, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock: %w", err)
	}
	defer rows.Close()

	entries := []models.StockEntry{}
	for rows.Next() {
		var e models.StockEntry
		err := rows.Scan(&e.ItemID, &e.ItemName, &e.Category, &e.BranchID,
			&e.CurrentQuantity, &e.ThresholdLevel, &e.UpdatedAt, &e.UpdatedBy)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock entry: %w", err)
		}
		e.Status = models.ClassifyStock(e.CurrentQuantity, e.ThresholdLevel)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock: %w", err)
	}
	return entries, nil
}

// RecordMovement applies a stock movement atomically: the quantity
// update and the ledger insert commit together or not at all. For out
// movements the update only matches when enough stock remains, so a
// movement that would go negative writes nothing.
func (db *Database) RecordMovement(ctx context.Context, itemID string, userID string, req models.MovementRequest) (*models.StockMovement, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var result int64
	if req.MovementType == models.MovementIn {
		tag, err := tx.Exec(ctx, `
            UPDATE stock SET current_quantity = current_quantity + $1,
                   updated_at = CURRENT_TIMESTAMP, updated_by = $3
            WHERE item_id = $2`, req.Quantity, itemID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to apply in movement: %w", err)
		}
		result = tag.RowsAffected()
		if result == 0 {
			return nil, ErrStockNotFound
		}
	} else {
		tag, err := tx.Exec(ctx, `
            UPDATE stock SET current_quantity = current_quantity - $1,
                   updated_at = CURRENT_TIMESTAMP, updated_by = $3
            WHERE item_id = $2 AND current_quantity >= $1`, req.Quantity, itemID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to apply out movement: %w", err)
		}
		if tag.RowsAffected() == 0 {
			// Distinguish a missing stock row from an insufficient balance.
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM stock WHERE item_id = $1)`, itemID).Scan(&exists); err != nil {
				return nil, fmt.Errorf("failed to check stock row: %w", err)
			}
			if !exists {
				return nil, ErrStockNotFound
			}
			return nil, ErrInsufficientStock
		}
	}

	reference := uuid.NewString()
	var m models.StockMovement
	err = tx.QueryRow(ctx, `
        INSERT INTO stock_movements (item_id, movement_type, quantity, reason, reference, user_id)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, item_id, movement_type, quantity, reason, reference, user_id, created_at`,
		itemID, string(req.MovementType), req.Quantity, req.Reason, reference, userID,
	).Scan(&m.ID, &m.ItemID, &m.MovementType, &m.Quantity, &m.Reason, &m.Reference, &m.UserID, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert movement: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit movement: %w", err)
	}
	return &m, nil
}

// MovementFilter narrows a ledger listing. Zero values mean no filter.
type MovementFilter struct {
	ItemID string
	Type   models.MovementType
	From   time.Time
	To     time.Time
	Limit  int
}

// ListMovements returns ledger entries for a branch, newest first,
// joined with item and actor names.
func (db *Database) ListMovements(ctx context.Context, branchID string, filter MovementFilter) ([]models.StockMovement, error) {
	query := `
        SELECT m.id, m.item_id, i.name, m.movement_type, m.quantity, m.reason,
               m.reference, m.user_id, COALESCE(p.name, ''), m.created_at
        FROM stock_movements m
        JOIN items i ON i.id = m.item_id
        LEFT JOIN profiles p ON p.id = m.user_id
        WHERE i.branch_id = $1`
	args := []interface{}{branchID}

	if filter.ItemID != "" {
		args = append(args, filter.ItemID)
		query += fmt.Sprintf(` AND m.item_id = $%d`, len(args))
	}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		query += fmt.Sprintf(` AND m.movement_type = $%d`, len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(` AND m.created_at >= $%d`, len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(` AND m.created_at <= $%d`, len(args))
	}

	query += ` ORDER BY m.created_at DESC`
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(args))

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements: %w", err)
	}
	defer rows.Close()

	movements := []models.StockMovement{}
	for rows.Next() {
		var m models.StockMovement
		err := rows.Scan(&m.ID, &m.ItemID, &m.ItemName, &m.MovementType, &m.Quantity,
			&m.Reason, &m.Reference, &m.UserID, &m.UserName, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating movements: %w", err)
	}
	return movements, nil
}

// StockSummary computes the dashboard tile counts for a branch.
// Critical and low come from the same classification pass, so an item
// is never counted in both tiles.
func (db *Database) StockSummary(ctx context.Context, branchID string) (*models.StockSummary, error) {
	entries, err := db.ListStock(ctx, branchID)
	if err != nil {
		return nil, err
	}

	summary := models.StockSummary{TotalItems: len(entries)}
	for _, e := range entries {
		switch e.Status {
		case models.StockCritical:
			summary.Critical++
		case models.StockLow:
			summary.Low++
		default:
			summary.Adequate++
		}
	}

	err = db.Pool.QueryRow(ctx, `
        SELECT COUNT(*) FROM stock_movements m
        JOIN items i ON i.id = m.item_id
        WHERE i.branch_id = $1 AND m.created_at >= date_trunc('day', now())`, branchID,
	).Scan(&summary.MovementsToday)
	if err != nil {
		return nil, fmt.Errorf("failed to count today's movements: %w", err)
	}

	err = db.Pool.QueryRow(ctx, `
        SELECT COUNT(*) FROM calendar_events
        WHERE branch_id = $1 AND event_date >= now() AND event_date < now() + interval '7 days'`, branchID,
	).Scan(&summary.UpcomingEvents)
	if err != nil {
		return nil, fmt.Errorf("failed to count upcoming events: %w", err)
	}

	return &summary, nil
}

// MovementTrends aggregates daily in/out totals for the last n days.
func (db *Database) MovementTrends(ctx context.Context, branchID string, days int) ([]models.MovementTrend, error) {
	if days <= 0 || days > 90 {
		days = 14
	}
	query := `
        SELECT to_char(date_trunc('day', m.created_at), 'YYYY-MM-DD') AS day,
               COALESCE(SUM(m.quantity) FILTER (WHERE m.movement_type = 'in'), 0),
               COALESCE(SUM(m.quantity) FILTER (WHERE m.movement_type = 'out'), 0)
        FROM stock_movements m
        JOIN items i ON i.id = m.item_id
        WHERE i.branch_id = $1 AND m.created_at >= now() - make_interval(days => $2)
        GROUP BY day
        ORDER BY day`

	rows, err := db.Pool.Query(ctx, query, branchID, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query movement trends: %w", err)
	}
	defer rows.Close()

	trends := []models.MovementTrend{}
	for rows.Next() {
		var t models.MovementTrend
		if err := rows.Scan(&t.Date, &t.TotalIn, &t.TotalOut); err != nil {
			return nil, fmt.Errorf("failed to scan trend: %w", err)
		}
		trends = append(trends, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trends: %w", err)
	}
	return trends, nil
}

// LowStockEntries returns the critical and low entries of a branch for
// alert digests.
func (db *Database) LowStockEntries(ctx context.Context, branchID string) ([]models.StockEntry, error) {
	entries, err := db.ListStock(ctx, branchID)
	if err != nil {
		return nil, err
	}
	urgent := []models.StockEntry{}
	for _, e := range entries {
		if e.Status != models.StockAdequate {
			urgent = append(urgent, e)
		}
	}
	return urgent, nil
}
