package services

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/stocknexus/backend/internal/models"
)

// EmailService handles email sending via AWS SES (SESv2 API)
type EmailService struct {
	sesClient *sesv2.Client
	fromEmail string
}

// NewEmailService creates a new email service instance using AWS SDK (role-based)
func NewEmailService(cfg aws.Config) *EmailService {
	region := cfg.Region
	if region == "" {
		region = os.Getenv("SES_AWS_REGION")
		if region == "" {
			if os.Getenv("AWS_DEFAULT_REGION") != "" {
				region = os.Getenv("AWS_DEFAULT_REGION")
			} else {
				region = "eu-central-1"
			}
		}
	}
	cfg.Region = region
	return &EmailService{
		sesClient: sesv2.NewFromConfig(cfg),
		fromEmail: os.Getenv("SES_FROM_EMAIL"),
	}
}

// SendStockAlert sends a stock digest for a branch listing every item
// at or below its threshold.
func (e *EmailService) SendStockAlert(ctx context.Context, toEmail string, branch models.Branch, entries []models.StockEntry) error {
	subject := fmt.Sprintf("Stock Nexus - Stock Alert for %s", branch.Name)
	return e.sendEmail(ctx, toEmail, subject, e.stockAlertHTML(branch, entries))
}

// SendEventReminder sends a reminder for an upcoming calendar event.
func (e *EmailService) SendEventReminder(ctx context.Context, toEmail string, branch models.Branch, event models.CalendarEvent) error {
	subject := fmt.Sprintf("Stock Nexus - Reminder: %s", event.Title)
	return e.sendEmail(ctx, toEmail, subject, e.eventReminderHTML(branch, event))
}

// sendEmail sends an email via AWS SESv2 using the instance role
func (e *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody string) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(e.fromEmail),
		Destination:      &sestypes.Destination{ToAddresses: []string{toEmail}},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(subject)},
				Body:    &sestypes.Body{Html: &sestypes.Content{Data: aws.String(htmlBody)}},
			},
		},
	}
	if _, err := e.sesClient.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// stockAlertHTML creates the HTML stock digest template
func (e *EmailService) stockAlertHTML(branch models.Branch, entries []models.StockEntry) string {
	var rows strings.Builder
	for _, entry := range entries {
		color := "#e53e3e"
		if entry.Status == models.StockLow {
			color = "#dd6b20"
		}
		rows.WriteString(fmt.Sprintf(`
        <tr>
            <td style="padding:8px;border-bottom:1px solid #eee;">%s</td>
            <td style="padding:8px;border-bottom:1px solid #eee;text-align:center;">%d</td>
            <td style="padding:8px;border-bottom:1px solid #eee;text-align:center;">%d</td>
            <td style="padding:8px;border-bottom:1px solid #eee;text-align:center;color:%s;font-weight:bold;">%s</td>
        </tr>`, entry.ItemName, entry.CurrentQuantity, entry.ThresholdLevel, color, strings.ToUpper(string(entry.Status))))
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Stock Nexus - Stock Alert</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
            background-color: #f5f5f5;
        }
        .container {
            background-color: white;
            border-radius: 8px;
            padding: 40px;
            box-shadow: 0 2px 10px rgba(0,0,0,0.1);
        }
        .header {
            text-align: center;
            margin-bottom: 30px;
        }
        .logo {
            font-size: 28px;
            font-weight: bold;
            color: #1976d2;
        }
        table {
            width: 100%%;
            border-collapse: collapse;
            margin: 20px 0;
        }
        th {
            text-align: left;
            padding: 8px;
            border-bottom: 2px solid #1976d2;
        }
        .footer {
            margin-top: 30px;
            padding-top: 20px;
            border-top: 1px solid #eee;
            color: #666;
            font-size: 14px;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <div class="logo">Stock Nexus</div>
            <div>Stock Alert - %s</div>
        </div>

        <p>The following items at <strong>%s</strong> are at or below their reorder threshold:</p>

        <table>
            <tr><th>Item</th><th>Quantity</th><th>Threshold</th><th>Status</th></tr>
            %s
        </table>

        <p>Please review the stock page and record replenishment movements as needed.</p>

        <div class="footer">
            <p><strong>Stock Nexus</strong><br>
            This is an automated alert. Please do not reply to this email.</p>
        </div>
    </div>
</body>
</html>`, branch.Name, branch.Name, rows.String())
}

// eventReminderHTML creates the HTML event reminder template
func (e *EmailService) eventReminderHTML(branch models.Branch, event models.CalendarEvent) string {
	description := ""
	if event.Description != nil {
		description = *event.Description
	}
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Stock Nexus - Event Reminder</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
            background-color: #f5f5f5;
        }
        .container {
            background-color: white;
            border-radius: 8px;
            padding: 40px;
            box-shadow: 0 2px 10px rgba(0,0,0,0.1);
        }
        .logo {
            font-size: 28px;
            font-weight: bold;
            color: #1976d2;
            text-align: center;
        }
        .event {
            background-color: #f8f9fa;
            border-left: 4px solid #1976d2;
            padding: 15px;
            margin: 20px 0;
        }
        .footer {
            margin-top: 30px;
            padding-top: 20px;
            border-top: 1px solid #eee;
            color: #666;
            font-size: 14px;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="logo">Stock Nexus</div>

        <h2>Upcoming event at %s</h2>

        <div class="event">
            <strong>%s</strong> (%s)<br>
            %s<br>
            %s
        </div>

        <div class="footer">
            <p><strong>Stock Nexus</strong><br>
            This is an automated reminder. Please do not reply to this email.</p>
        </div>
    </div>
</body>
</html>`, branch.Name, event.Title, event.EventType, event.EventDate.Format("Mon, 02 Jan 2006 15:04"), description)
}
