package db

import (
	"context"
	"fmt"

	"github.com/stocknexus/backend/internal/models"
)

const profileColumns = `p.id, p.email, p.name, p.phone, p.position, p.photo_url, p.role,
	p.branch_id, p.branch_context, p.region_id, p.district_id,
	p.access_count, p.last_access, p.created_at, p.updated_at`

func scanProfile(row interface{ Scan(...interface{}) error }) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(
		&p.ID, &p.Email, &p.Name, &p.Phone, &p.Position, &p.PhotoURL, &p.Role,
		&p.BranchID, &p.BranchContext, &p.RegionID, &p.DistrictID,
		&p.AccessCount, &p.LastAccess, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProfile inserts a new profile with a bcrypt password hash and
// returns the stored row.
func (db *Database) CreateProfile(ctx context.Context, req models.CreateStaffRequest, passwordHash string) (*models.Profile, error) {
	query := `
        INSERT INTO profiles (email, password_hash, name, phone, position, role, branch_id, region_id, district_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING ` + profileColumns
	row := db.Pool.QueryRow(ctx, query,
		req.Email, passwordHash, req.Name, req.Phone, req.Position,
		string(req.Role), req.BranchID, req.RegionID, req.DistrictID,
	)
	p, err := scanProfile(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert profile: %w", err)
	}
	return p, nil
}

// GetProfileByID fetches a single profile.
func (db *Database) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles p WHERE p.id = $1`
	p, err := scanProfile(db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return p, nil
}

// GetCredentialsByEmail fetches a profile plus its password hash for
// login verification.
func (db *Database) GetCredentialsByEmail(ctx context.Context, email string) (*models.Profile, string, error) {
	query := `SELECT p.password_hash, ` + profileColumns + ` FROM profiles p WHERE p.email = $1`
	var hash string
	var p models.Profile
	err := db.Pool.QueryRow(ctx, query, email).Scan(
		&hash,
		&p.ID, &p.Email, &p.Name, &p.Phone, &p.Position, &p.PhotoURL, &p.Role,
		&p.BranchID, &p.BranchContext, &p.RegionID, &p.DistrictID,
		&p.AccessCount, &p.LastAccess, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch credentials: %w", err)
	}
	return &p, hash, nil
}

// ListProfiles returns the profiles the viewer may see, most recently
// created first. Visibility is entirely decided by ProfileScope.
func (db *Database) ListProfiles(ctx context.Context, viewer *models.Profile) ([]models.Profile, error) {
	cond, args := ProfileScope(viewer)
	query := `SELECT ` + profileColumns + ` FROM profiles p WHERE ` + cond + ` ORDER BY p.created_at DESC`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	profiles := []models.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}
	return profiles, nil
}

// UpdateProfile applies a self-service update; nil fields are left
// untouched via COALESCE.
func (db *Database) UpdateProfile(ctx context.Context, id string, req models.UpdateProfileRequest) (*models.Profile, error) {
	query := `
        UPDATE profiles p SET
            name = COALESCE($2, name),
            phone = COALESCE($3, phone),
            position = COALESCE($4, position),
            photo_url = COALESCE($5, photo_url),
            updated_at = CURRENT_TIMESTAMP
        WHERE p.id = $1
        RETURNING ` + profileColumns
	p, err := scanProfile(db.Pool.QueryRow(ctx, query, id, req.Name, req.Phone, req.Position, req.PhotoURL))
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return p, nil
}

// UpdateStaff applies a managerial update to another profile.
func (db *Database) UpdateStaff(ctx context.Context, id string, req models.UpdateStaffRequest) (*models.Profile, error) {
	var roleParam interface{}
	if req.Role != nil {
		roleParam = string(*req.Role)
	}
	query := `
        UPDATE profiles p SET
            name = COALESCE($2, name),
            role = COALESCE($3, role),
            phone = COALESCE($4, phone),
            position = COALESCE($5, position),
            branch_id = COALESCE($6, branch_id),
            region_id = COALESCE($7, region_id),
            district_id = COALESCE($8, district_id),
            updated_at = CURRENT_TIMESTAMP
        WHERE p.id = $1
        RETURNING ` + profileColumns
	p, err := scanProfile(db.Pool.QueryRow(ctx, query, id,
		req.Name, roleParam, req.Phone, req.Position, req.BranchID, req.RegionID, req.DistrictID))
	if err != nil {
		return nil, fmt.Errorf("failed to update staff profile: %w", err)
	}
	return p, nil
}

// DeleteProfile removes a profile.
func (db *Database) DeleteProfile(ctx context.Context, id string) error {
	result, err := db.Pool.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("profile %s not found", id)
	}
	return nil
}

// SetBranchContext switches (or clears, for empty branchID) the branch
// a multi-branch manager is operating against.
func (db *Database) SetBranchContext(ctx context.Context, id string, branchID string) (*models.Profile, error) {
	var param interface{}
	if branchID != "" {
		param = branchID
	}
	query := `
        UPDATE profiles p SET branch_context = $2, updated_at = CURRENT_TIMESTAMP
        WHERE p.id = $1
        RETURNING ` + profileColumns
	p, err := scanProfile(db.Pool.QueryRow(ctx, query, id, param))
	if err != nil {
		return nil, fmt.Errorf("failed to set branch context: %w", err)
	}
	return p, nil
}

// RecordAccess bumps the login counters for a profile.
func (db *Database) RecordAccess(ctx context.Context, id string) error {
	_, err := db.Pool.Exec(ctx, `
        UPDATE profiles SET access_count = access_count + 1, last_access = CURRENT_TIMESTAMP
        WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to record access: %w", err)
	}
	return nil
}
