package models

import (
	"time"
)

// Role is the position of a profile in the management hierarchy.
type Role string

const (
	RoleAdmin            Role = "admin"
	RoleRegionalManager  Role = "regional_manager"
	RoleDistrictManager  Role = "district_manager"
	RoleManager          Role = "manager"
	RoleAssistantManager Role = "assistant_manager"
	RoleStaff            Role = "staff"
)

// roleRanks orders roles from staff (lowest) to admin (highest).
var roleRanks = map[Role]int{
	RoleStaff:            0,
	RoleAssistantManager: 1,
	RoleManager:          2,
	RoleDistrictManager:  3,
	RoleRegionalManager:  4,
	RoleAdmin:            5,
}

// Rank returns the hierarchy rank of the role, or -1 for unknown roles.
func (r Role) Rank() int {
	if rank, ok := roleRanks[r]; ok {
		return rank
	}
	return -1
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// CanView reports whether a viewer with this role may list profiles
// holding the target role. Each role sees its own role and everything
// below it.
func (r Role) CanView(target Role) bool {
	vr, tr := r.Rank(), target.Rank()
	return vr >= 0 && tr >= 0 && tr <= vr
}

// CanManage reports whether a viewer with this role may create, update
// or delete profiles holding the target role. Managing requires being
// strictly above the target; admin may manage anyone including admins.
func (r Role) CanManage(target Role) bool {
	if r == RoleAdmin {
		return target.Valid()
	}
	vr, tr := r.Rank(), target.Rank()
	return vr >= 0 && tr >= 0 && tr < vr
}

// VisibleRoles returns every role the viewer may list, highest first.
func (r Role) VisibleRoles() []Role {
	ordered := []Role{RoleAdmin, RoleRegionalManager, RoleDistrictManager, RoleManager, RoleAssistantManager, RoleStaff}
	var out []Role
	for _, candidate := range ordered {
		if r.CanView(candidate) {
			out = append(out, candidate)
		}
	}
	return out
}

// Profile represents a user account and its place in the
// region/district/branch hierarchy.
type Profile struct {
	ID            string     `json:"id" db:"id"`
	Email         string     `json:"email" db:"email"`
	Name          string     `json:"name" db:"name"`
	Phone         *string    `json:"phone,omitempty" db:"phone"`
	Position      *string    `json:"position,omitempty" db:"position"`
	PhotoURL      *string    `json:"photo_url,omitempty" db:"photo_url"`
	Role          Role       `json:"role" db:"role"`
	BranchID      *string    `json:"branch_id,omitempty" db:"branch_id"`
	BranchContext *string    `json:"branch_context,omitempty" db:"branch_context"`
	RegionID      *string    `json:"region_id,omitempty" db:"region_id"`
	DistrictID    *string    `json:"district_id,omitempty" db:"district_id"`
	AccessCount   int        `json:"access_count" db:"access_count"`
	LastAccess    *time.Time `json:"last_access,omitempty" db:"last_access"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// EffectiveBranch returns the branch the profile is currently operating
// against: the explicit branch context if one is set, otherwise the
// permanent home branch. Nil means no branch is resolvable and
// branch-scoped endpoints must trigger the selection flow.
func (p *Profile) EffectiveBranch() *string {
	if p.BranchContext != nil && *p.BranchContext != "" {
		return p.BranchContext
	}
	if p.BranchID != nil && *p.BranchID != "" {
		return p.BranchID
	}
	return nil
}

// SignupRequest represents the request payload for user registration
type SignupRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	Name     string  `json:"name" binding:"required,min=2"`
	Phone    *string `json:"phone,omitempty"`
	BranchID *string `json:"branch_id,omitempty"`
}

// LoginRequest represents the request payload for user login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents the response after successful authentication
type AuthResponse struct {
	Token            string    `json:"token"`
	ExpiresAt        time.Time `json:"expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
	User             Profile   `json:"user"`
}

// UpdateProfileRequest represents the self-service profile update payload
type UpdateProfileRequest struct {
	Name     *string `json:"name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Position *string `json:"position,omitempty"`
	PhotoURL *string `json:"photo_url,omitempty"`
}

// BranchContextRequest switches the branch a multi-branch manager is
// operating against. An empty branch_id clears the context.
type BranchContextRequest struct {
	BranchID string `json:"branch_id"`
}

// CreateStaffRequest represents the admin/manager user creation payload
type CreateStaffRequest struct {
	Email      string  `json:"email" binding:"required,email"`
	Password   string  `json:"password" binding:"required,min=8"`
	Name       string  `json:"name" binding:"required,min=2"`
	Role       Role    `json:"role" binding:"required"`
	Phone      *string `json:"phone,omitempty"`
	Position   *string `json:"position,omitempty"`
	BranchID   *string `json:"branch_id,omitempty"`
	RegionID   *string `json:"region_id,omitempty"`
	DistrictID *string `json:"district_id,omitempty"`
}

// UpdateStaffRequest represents the admin/manager user update payload
type UpdateStaffRequest struct {
	Name       *string `json:"name,omitempty"`
	Role       *Role   `json:"role,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Position   *string `json:"position,omitempty"`
	BranchID   *string `json:"branch_id,omitempty"`
	RegionID   *string `json:"region_id,omitempty"`
	DistrictID *string `json:"district_id,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
