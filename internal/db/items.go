package db

import (
	"context"
	"fmt"

	"github.com/stocknexus/backend/internal/models"
)

const itemColumns = `id, branch_id, name, category, threshold_level, image_url, description, created_at, updated_at`

func scanItem(row interface{ Scan(...interface{}) error }) (*models.Item, error) {
	var it models.Item
	err := row.Scan(
		&it.ID, &it.BranchID, &it.Name, &it.Category, &it.ThresholdLevel,
		&it.ImageURL, &it.Description, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// CreateItem inserts an item and seeds its stock row at quantity zero
// in the same transaction, so every item always has a stock record.
func (db *Database) CreateItem(ctx context.Context, branchID string, req models.CreateItemRequest) (*models.Item, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO items (branch_id, name, category, threshold_level, description)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + itemColumns
	it, err := scanItem(tx.QueryRow(ctx, query, branchID, req.Name, req.Category, req.ThresholdLevel, req.Description))
	if err != nil {
		return nil, fmt.Errorf("failed to insert item: %w", err)
	}

	_, err = tx.Exec(ctx, `INSERT INTO stock (item_id, current_quantity) VALUES ($1, 0)`, it.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to seed stock row: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return it, nil
}

// GetItem fetches a single item.
func (db *Database) GetItem(ctx context.Context, id string) (*models.Item, error) {
	it, err := scanItem(db.Pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch item: %w", err)
	}
	return it, nil
}

// ListItems returns the items of a branch, optionally filtered by
// category (empty string means all categories).
func (db *Database) ListItems(ctx context.Context, branchID, category string) ([]models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE branch_id = $1`
	args := []interface{}{branchID}
	if category != "" {
		args = append(args, category)
		query += fmt.Sprintf(` AND category = $%d`, len(args))
	}
	query += ` ORDER BY name`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return items, nil
}

// UpdateItem applies a partial item update.
func (db *Database) UpdateItem(ctx context.Context, id string, req models.UpdateItemRequest) (*models.Item, error) {
	query := `
        UPDATE items SET
            name = COALESCE($2, name),
            category = COALESCE($3, category),
            threshold_level = COALESCE($4, threshold_level),
            description = COALESCE($5, description),
            updated_at = CURRENT_TIMESTAMP
        WHERE id = $1
        RETURNING ` + itemColumns
	it, err := scanItem(db.Pool.QueryRow(ctx, query, id, req.Name, req.Category, req.ThresholdLevel, req.Description))
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return it, nil
}

// SetItemImage links an uploaded image URL to an item.
func (db *Database) SetItemImage(ctx context.Context, id string, imageURL string) error {
	result, err := db.Pool.Exec(ctx,
		`UPDATE items SET image_url = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`, id, imageURL)
	if err != nil {
		return fmt.Errorf("failed to set item image: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("item %s not found", id)
	}
	return nil
}

// DeleteItem removes an item together with its stock row. Movement
// history is kept; the ledger is append-only.
func (db *Database) DeleteItem(ctx context.Context, id string) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `DELETE FROM stock WHERE item_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete stock row: %w", err)
	}
	result, err := tx.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("item %s not found", id)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
