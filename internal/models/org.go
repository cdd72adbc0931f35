package models

import "time"

// Region is the top level of the geographic hierarchy.
type Region struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// District belongs to a region and groups branches.
type District struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	RegionID  string    `json:"region_id" db:"region_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AlertFrequency controls how often a branch receives regular stock
// digests.
type AlertFrequency string

const (
	AlertDaily   AlertFrequency = "daily"
	AlertWeekly  AlertFrequency = "weekly"
	AlertMonthly AlertFrequency = "monthly"
)

// Valid reports whether f is a known alert frequency.
func (f AlertFrequency) Valid() bool {
	return f == AlertDaily || f == AlertWeekly || f == AlertMonthly
}

// NotificationSettings holds the per-branch channel toggles.
type NotificationSettings struct {
	EmailEnabled    bool `json:"email_enabled"`
	SmsEnabled      bool `json:"sms_enabled"`
	WhatsappEnabled bool `json:"whatsapp_enabled"`
}

// Branch is a physical location holding items and staff. Location is
// the city used for weather lookups.
type Branch struct {
	ID                   string               `json:"id" db:"id"`
	Name                 string               `json:"name" db:"name"`
	Address              *string              `json:"address,omitempty" db:"address"`
	Location             string               `json:"location" db:"location"`
	RegionID             string               `json:"region_id" db:"region_id"`
	DistrictID           string               `json:"district_id" db:"district_id"`
	NotificationSettings NotificationSettings `json:"notification_settings" db:"notification_settings"`
	AlertFrequency       AlertFrequency       `json:"alert_frequency" db:"alert_frequency"`
	LastAlertAt          *time.Time           `json:"last_alert_at,omitempty" db:"last_alert_at"`
	CreatedAt            time.Time            `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at" db:"updated_at"`
}

// CreateBranchRequest represents the admin branch creation payload
type CreateBranchRequest struct {
	Name       string  `json:"name" binding:"required,min=2"`
	Address    *string `json:"address,omitempty"`
	Location   string  `json:"location" binding:"required"`
	RegionID   string  `json:"region_id" binding:"required"`
	DistrictID string  `json:"district_id" binding:"required"`
}

// UpdateBranchRequest represents the admin branch update payload
type UpdateBranchRequest struct {
	Name     *string `json:"name,omitempty"`
	Address  *string `json:"address,omitempty"`
	Location *string `json:"location,omitempty"`
}

// BranchSettingsRequest updates notification toggles and the alert
// cadence for a branch.
type BranchSettingsRequest struct {
	NotificationSettings *NotificationSettings `json:"notification_settings,omitempty"`
	AlertFrequency       *AlertFrequency       `json:"alert_frequency,omitempty"`
}

// BranchSelection is returned with a 428 when a regional or district
// manager has no branch context yet; it carries everything the client
// needs to render the selection flow.
type BranchSelection struct {
	Districts []District `json:"districts,omitempty"`
	Branches  []Branch   `json:"branches"`
}
