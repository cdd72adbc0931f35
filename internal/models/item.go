package models

import "time"

// Item is a branch-scoped catalog entry with a reorder threshold.
type Item struct {
	ID             string    `json:"id" db:"id"`
	BranchID       string    `json:"branch_id" db:"branch_id"`
	Name           string    `json:"name" db:"name"`
	Category       string    `json:"category" db:"category"`
	ThresholdLevel int       `json:"threshold_level" db:"threshold_level"`
	ImageURL       *string   `json:"image_url,omitempty" db:"image_url"`
	Description    *string   `json:"description,omitempty" db:"description"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// CreateItemRequest represents the item creation payload
type CreateItemRequest struct {
	Name           string  `json:"name" binding:"required,min=2"`
	Category       string  `json:"category" binding:"required"`
	ThresholdLevel int     `json:"threshold_level" binding:"required,gte=0"`
	Description    *string `json:"description,omitempty"`
}

// UpdateItemRequest represents the item update payload
type UpdateItemRequest struct {
	Name           *string `json:"name,omitempty"`
	Category       *string `json:"category,omitempty"`
	ThresholdLevel *int    `json:"threshold_level,omitempty"`
	Description    *string `json:"description,omitempty"`
}
