package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stocknexus/backend/internal/models"
)

// ListRegions returns every region ordered by name.
func (db *Database) ListRegions(ctx context.Context) ([]models.Region, error) {
	rows, err := db.Pool.Query(ctx, `SELECT id, name, created_at FROM regions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query regions: %w", err)
	}
	defer rows.Close()

	regions := []models.Region{}
	for rows.Next() {
		var r models.Region
		if err := rows.Scan(&r.ID, &r.Name, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan region: %w", err)
		}
		regions = append(regions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating regions: %w", err)
	}
	return regions, nil
}

// ListDistricts returns the districts of a region ordered by name.
func (db *Database) ListDistricts(ctx context.Context, regionID string) ([]models.District, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, region_id, created_at FROM districts WHERE region_id = $1 ORDER BY name`, regionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query districts: %w", err)
	}
	defer rows.Close()

	districts := []models.District{}
	for rows.Next() {
		var d models.District
		if err := rows.Scan(&d.ID, &d.Name, &d.RegionID, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan district: %w", err)
		}
		districts = append(districts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating districts: %w", err)
	}
	return districts, nil
}

// GetDistrict fetches a single district.
func (db *Database) GetDistrict(ctx context.Context, id string) (*models.District, error) {
	var d models.District
	err := db.Pool.QueryRow(ctx,
		`SELECT id, name, region_id, created_at FROM districts WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.RegionID, &d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch district: %w", err)
	}
	return &d, nil
}

const branchColumns = `id, name, address, location, region_id, district_id,
	notification_settings, alert_frequency, last_alert_at, created_at, updated_at`

func scanBranch(row interface{ Scan(...interface{}) error }) (*models.Branch, error) {
	var b models.Branch
	var settings []byte
	err := row.Scan(
		&b.ID, &b.Name, &b.Address, &b.Location, &b.RegionID, &b.DistrictID,
		&settings, &b.AlertFrequency, &b.LastAlertAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &b.NotificationSettings); err != nil {
			return nil, fmt.Errorf("invalid notification settings for branch %s: %w", b.ID, err)
		}
	}
	return &b, nil
}

// ListBranches returns branches, optionally restricted to a region or
// district (empty string means no restriction).
func (db *Database) ListBranches(ctx context.Context, regionID, districtID string) ([]models.Branch, error) {
	query := `SELECT ` + branchColumns + ` FROM branches`
	args := []interface{}{}
	switch {
	case districtID != "":
		query += ` WHERE district_id = $1`
		args = append(args, districtID)
	case regionID != "":
		query += ` WHERE region_id = $1`
		args = append(args, regionID)
	}
	query += ` ORDER BY name`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query branches: %w", err)
	}
	defer rows.Close()

	branches := []models.Branch{}
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan branch: %w", err)
		}
		branches = append(branches, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating branches: %w", err)
	}
	return branches, nil
}

// GetBranch fetches a single branch.
func (db *Database) GetBranch(ctx context.Context, id string) (*models.Branch, error) {
	b, err := scanBranch(db.Pool.QueryRow(ctx, `SELECT `+branchColumns+` FROM branches WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch branch: %w", err)
	}
	return b, nil
}

// CreateBranch inserts a branch with default notification settings.
func (db *Database) CreateBranch(ctx context.Context, req models.CreateBranchRequest) (*models.Branch, error) {
	query := `
        INSERT INTO branches (name, address, location, region_id, district_id)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + branchColumns
	b, err := scanBranch(db.Pool.QueryRow(ctx, query, req.Name, req.Address, req.Location, req.RegionID, req.DistrictID))
	if err != nil {
		return nil, fmt.Errorf("failed to insert branch: %w", err)
	}
	return b, nil
}

// UpdateBranch applies a partial branch update.
func (db *Database) UpdateBranch(ctx context.Context, id string, req models.UpdateBranchRequest) (*models.Branch, error) {
	query := `
        UPDATE branches SET
            name = COALESCE($2, name),
            address = COALESCE($3, address),
            location = COALESCE($4, location),
            updated_at = CURRENT_TIMESTAMP
        WHERE id = $1
        RETURNING ` + branchColumns
	b, err := scanBranch(db.Pool.QueryRow(ctx, query, id, req.Name, req.Address, req.Location))
	if err != nil {
		return nil, fmt.Errorf("failed to update branch: %w", err)
	}
	return b, nil
}

// DeleteBranch removes a branch.
func (db *Database) DeleteBranch(ctx context.Context, id string) error {
	result, err := db.Pool.Exec(ctx, `DELETE FROM branches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete branch: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("branch %s not found", id)
	}
	return nil
}

// UpdateBranchSettings updates notification toggles and/or alert
// cadence for a branch.
func (db *Database) UpdateBranchSettings(ctx context.Context, id string, req models.BranchSettingsRequest) (*models.Branch, error) {
	var settingsParam interface{}
	if req.NotificationSettings != nil {
		encoded, err := json.Marshal(req.NotificationSettings)
		if err != nil {
			return nil, fmt.Errorf("failed to encode notification settings: %w", err)
		}
		settingsParam = string(encoded)
	}
	var freqParam interface{}
	if req.AlertFrequency != nil {
		freqParam = string(*req.AlertFrequency)
	}

	query := `
        UPDATE branches SET
            notification_settings = COALESCE($2::jsonb, notification_settings),
            alert_frequency = COALESCE($3, alert_frequency),
            updated_at = CURRENT_TIMESTAMP
        WHERE id = $1
        RETURNING ` + branchColumns
	b, err := scanBranch(db.Pool.QueryRow(ctx, query, id, settingsParam, freqParam))
	if err != nil {
		return nil, fmt.Errorf("failed to update branch settings: %w", err)
	}
	return b, nil
}

// MarkBranchAlerted records that a regular alert digest was just sent.
func (db *Database) MarkBranchAlerted(ctx context.Context, id string) error {
	_, err := db.Pool.Exec(ctx, `UPDATE branches SET last_alert_at = CURRENT_TIMESTAMP WHERE id = $1`, id)
	return err
}

// BranchRecipients returns the manager-level profiles attached to a
// branch, for alert fan-out across channels.
func (db *Database) BranchRecipients(ctx context.Context, branchID string) ([]models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles p
        WHERE p.branch_id = $1 AND p.role IN ('manager', 'assistant_manager')`
	rows, err := db.Pool.Query(ctx, query, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query branch recipients: %w", err)
	}
	defer rows.Close()

	recipients := []models.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipient: %w", err)
		}
		recipients = append(recipients, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipients: %w", err)
	}
	return recipients, nil
}
