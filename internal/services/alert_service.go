package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/stocknexus/backend/internal/db"
	"github.com/stocknexus/backend/internal/models"
)

// AlertService periodically sends stock digests and event reminders
// for each branch, honoring the branch's alert frequency and channel
// toggles. Every send is best-effort: a failed channel is logged and
// skipped, never retried within the tick.
type AlertService struct {
	db       *db.Database
	email    *EmailService
	sms      *SmsService
	whatsapp *WhatsAppService
	interval time.Duration
	stopChan chan bool
}

// NewAlertService creates a new alert scheduler.
func NewAlertService(database *db.Database, email *EmailService, sms *SmsService, whatsapp *WhatsAppService, intervalMinutes int) *AlertService {
	return &AlertService{
		db:       database,
		email:    email,
		sms:      sms,
		whatsapp: whatsapp,
		interval: time.Duration(intervalMinutes) * time.Minute,
		stopChan: make(chan bool),
	}
}

// Start begins the periodic alert process
func (a *AlertService) Start() {
	log.Printf("Starting alert service with %v interval", a.interval)

	// Run once immediately so a restart never delays a due digest
	a.runCycle()

	ticker := time.NewTicker(a.interval)

	go func() {
		for {
			select {
			case <-ticker.C:
				a.runCycle()
			case <-a.stopChan:
				ticker.Stop()
				log.Println("Alert service stopped")
				return
			}
		}
	}()
}

// Stop stops the alert service
func (a *AlertService) Stop() {
	a.stopChan <- true
}

// runCycle performs one pass of maintenance, digests and reminders.
func (a *AlertService) runCycle() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	log.Println("Running alert cycle...")

	if err := a.db.CleanupExpiredRefreshTokens(ctx); err != nil {
		log.Printf("Error cleaning up refresh tokens: %v", err)
	}

	a.sendStockDigests(ctx)
	a.sendEventReminders(ctx)
}

// alertDue reports whether a branch's regular digest is due again.
func alertDue(branch models.Branch, now time.Time) bool {
	if branch.LastAlertAt == nil {
		return true
	}
	var gap time.Duration
	switch branch.AlertFrequency {
	case models.AlertWeekly:
		gap = 7 * 24 * time.Hour
	case models.AlertMonthly:
		gap = 30 * 24 * time.Hour
	default:
		gap = 24 * time.Hour
	}
	return now.Sub(*branch.LastAlertAt) >= gap
}

func (a *AlertService) sendStockDigests(ctx context.Context) {
	branches, err := a.db.ListBranches(ctx, "", "")
	if err != nil {
		log.Printf("Error listing branches for digests: %v", err)
		return
	}

	now := time.Now()
	for _, branch := range branches {
		if !alertDue(branch, now) {
			continue
		}

		entries, err := a.db.LowStockEntries(ctx, branch.ID)
		if err != nil {
			log.Printf("Error fetching low stock for branch %s: %v", branch.ID, err)
			continue
		}
		if len(entries) == 0 {
			// Nothing urgent; still advance the clock so healthy
			// branches are not rechecked every tick.
			if err := a.db.MarkBranchAlerted(ctx, branch.ID); err != nil {
				log.Printf("Error marking branch %s alerted: %v", branch.ID, err)
			}
			continue
		}

		a.fanOutStockAlert(ctx, branch, entries)

		if err := a.db.MarkBranchAlerted(ctx, branch.ID); err != nil {
			log.Printf("Error marking branch %s alerted: %v", branch.ID, err)
		}
	}
}

// fanOutStockAlert delivers a digest through every enabled channel and
// records an in-app notification per recipient.
func (a *AlertService) fanOutStockAlert(ctx context.Context, branch models.Branch, entries []models.StockEntry) {
	recipients, err := a.db.BranchRecipients(ctx, branch.ID)
	if err != nil {
		log.Printf("Error fetching recipients for branch %s: %v", branch.ID, err)
		return
	}

	summary := stockAlertText(branch, entries)
	for _, recipient := range recipients {
		if branch.NotificationSettings.EmailEnabled && a.email != nil {
			if err := a.email.SendStockAlert(ctx, recipient.Email, branch, entries); err != nil {
				log.Printf("Error sending stock alert email to %s: %v", recipient.Email, err)
			}
		}
		if branch.NotificationSettings.SmsEnabled && a.sms != nil && recipient.Phone != nil {
			if err := a.sms.SendStockAlert(ctx, *recipient.Phone, branch, entries); err != nil {
				log.Printf("Error sending stock alert SMS to %s: %v", *recipient.Phone, err)
			}
		}
		if branch.NotificationSettings.WhatsappEnabled && a.whatsapp != nil && recipient.Phone != nil {
			if err := a.whatsapp.Send(ctx, *recipient.Phone, summary); err != nil {
				log.Printf("Error sending stock alert WhatsApp message to %s: %v", *recipient.Phone, err)
			}
		}
		if err := a.db.CreateNotification(ctx, recipient.ID, "Stock alert", summary, "stock_alert"); err != nil {
			log.Printf("Error creating stock alert notification for %s: %v", recipient.ID, err)
		}
	}
}

func (a *AlertService) sendEventReminders(ctx context.Context) {
	events, err := a.db.DueReminders(ctx, 24*time.Hour)
	if err != nil {
		log.Printf("Error fetching due reminders: %v", err)
		return
	}

	for _, event := range events {
		branch, err := a.db.GetBranch(ctx, event.BranchID)
		if err != nil {
			log.Printf("Error fetching branch %s for reminder: %v", event.BranchID, err)
			continue
		}
		recipients, err := a.db.BranchRecipients(ctx, event.BranchID)
		if err != nil {
			log.Printf("Error fetching recipients for reminder: %v", err)
			continue
		}

		message := fmt.Sprintf("Reminder: %s on %s at %s",
			event.Title, event.EventDate.Format("Mon 02 Jan 15:04"), branch.Name)
		for _, recipient := range recipients {
			if branch.NotificationSettings.EmailEnabled && a.email != nil {
				if err := a.email.SendEventReminder(ctx, recipient.Email, *branch, event); err != nil {
					log.Printf("Error sending event reminder email to %s: %v", recipient.Email, err)
				}
			}
			if err := a.db.CreateNotification(ctx, recipient.ID, "Event reminder", message, "event_reminder"); err != nil {
				log.Printf("Error creating reminder notification for %s: %v", recipient.ID, err)
			}
		}

		if err := a.db.MarkEventReminded(ctx, event.ID); err != nil {
			log.Printf("Error marking event %s reminded: %v", event.ID, err)
		}
	}
}
