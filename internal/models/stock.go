package models

import "time"

// StockStatus classifies how urgent a stock level is relative to the
// item's reorder threshold.
type StockStatus string

const (
	StockCritical StockStatus = "critical"
	StockLow      StockStatus = "low"
	StockAdequate StockStatus = "adequate"
)

// ClassifyStock is the single authoritative stock classification rule:
// critical at or below half the threshold, low at or below the
// threshold, adequate above it. Every pair of non-negative inputs maps
// to exactly one status.
func ClassifyStock(currentQuantity, thresholdLevel int) StockStatus {
	// Integer form of quantity <= threshold * 0.5 avoids float rounding.
	if 2*currentQuantity <= thresholdLevel {
		return StockCritical
	}
	if currentQuantity <= thresholdLevel {
		return StockLow
	}
	return StockAdequate
}

// MovementType marks the direction of a stock movement.
type MovementType string

const (
	MovementIn  MovementType = "in"
	MovementOut MovementType = "out"
)

// Valid reports whether t is a known movement direction.
func (t MovementType) Valid() bool {
	return t == MovementIn || t == MovementOut
}

// StockEntry is a stock row joined with its item, as served by the
// stock listing and analytics endpoints.
type StockEntry struct {
	ItemID          string      `json:"item_id" db:"item_id"`
	ItemName        string      `json:"item_name" db:"item_name"`
	Category        string      `json:"category" db:"category"`
	BranchID        string      `json:"branch_id" db:"branch_id"`
	CurrentQuantity int         `json:"current_quantity" db:"current_quantity"`
	ThresholdLevel  int         `json:"threshold_level" db:"threshold_level"`
	Status          StockStatus `json:"status"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
	UpdatedBy       *string     `json:"updated_by,omitempty" db:"updated_by"`
}

// StockMovement is an immutable ledger entry for a quantity change.
type StockMovement struct {
	ID           string       `json:"id" db:"id"`
	ItemID       string       `json:"item_id" db:"item_id"`
	ItemName     string       `json:"item_name,omitempty" db:"item_name"`
	MovementType MovementType `json:"movement_type" db:"movement_type"`
	Quantity     int          `json:"quantity" db:"quantity"`
	Reason       *string      `json:"reason,omitempty" db:"reason"`
	Reference    string       `json:"reference" db:"reference"`
	UserID       string       `json:"user_id" db:"user_id"`
	UserName     string       `json:"user_name,omitempty" db:"user_name"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
}

// MovementRequest records an in/out movement against an item.
type MovementRequest struct {
	MovementType MovementType `json:"movement_type" binding:"required"`
	Quantity     int          `json:"quantity" binding:"required,gt=0"`
	Reason       *string      `json:"reason,omitempty"`
}

// StockSummary backs the dashboard tiles. Critical and low are
// mutually exclusive counts.
type StockSummary struct {
	TotalItems     int `json:"total_items"`
	Critical       int `json:"critical"`
	Low            int `json:"low"`
	Adequate       int `json:"adequate"`
	MovementsToday int `json:"movements_today"`
	UpcomingEvents int `json:"upcoming_events"`
}

// MovementTrend is one day of aggregated movement totals.
type MovementTrend struct {
	Date     string `json:"date"`
	TotalIn  int    `json:"total_in"`
	TotalOut int    `json:"total_out"`
}
