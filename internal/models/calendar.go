package models

import "time"

// CalendarEvent is a branch-scoped calendar entry.
type CalendarEvent struct {
	ID          string    `json:"id" db:"id"`
	BranchID    string    `json:"branch_id" db:"branch_id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description,omitempty" db:"description"`
	EventDate   time.Time `json:"event_date" db:"event_date"`
	EventType   string    `json:"event_type" db:"event_type"`
	CreatedBy   string    `json:"created_by" db:"created_by"`
	Reminded    bool      `json:"reminded" db:"reminded"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// CreateEventRequest represents the calendar event creation payload
type CreateEventRequest struct {
	Title       string    `json:"title" binding:"required,min=2"`
	Description *string   `json:"description,omitempty"`
	EventDate   time.Time `json:"event_date" binding:"required"`
	EventType   string    `json:"event_type" binding:"required"`
}

// UpdateEventRequest represents the calendar event update payload
type UpdateEventRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	EventDate   *time.Time `json:"event_date,omitempty"`
	EventType   *string    `json:"event_type,omitempty"`
}
