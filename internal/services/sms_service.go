package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"github.com/stocknexus/backend/internal/models"
)

// SmsService delivers stock digests and other short alerts via AWS SNS.
type SmsService struct {
	client   *sns.Client
	senderID string
}

// NewSmsService creates a new SMS service client. SMS_SENDER_ID sets
// the alphanumeric sender shown to recipients where the carrier
// supports it.
func NewSmsService(cfg aws.Config) *SmsService {
	return &SmsService{
		client:   sns.NewFromConfig(cfg),
		senderID: os.Getenv("SMS_SENDER_ID"),
	}
}

// SendStockAlert sends the short-form stock digest for a branch.
func (s *SmsService) SendStockAlert(ctx context.Context, phoneNumber string, branch models.Branch, entries []models.StockEntry) error {
	return s.SendSMS(ctx, phoneNumber, stockAlertText(branch, entries))
}

// SendSMS sends an alert message to a phone number.
// The phone number must be in E.164 format (e.g., +12065550100).
func (s *SmsService) SendSMS(ctx context.Context, phoneNumber, message string) error {
	log.Printf("Attempting to send SMS to %s", phoneNumber)

	// Alerts are operational, not marketing, so SMSType is Transactional.
	messageAttributes := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {
			DataType:    aws.String("String"),
			StringValue: aws.String("Transactional"),
		},
	}
	if s.senderID != "" {
		messageAttributes["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(s.senderID),
		}
	}

	input := &sns.PublishInput{
		Message:           aws.String(message),
		PhoneNumber:       aws.String(phoneNumber),
		MessageAttributes: messageAttributes,
	}

	result, err := s.client.Publish(ctx, input)
	if err != nil {
		log.Printf("Failed to send SMS to %s: %v", phoneNumber, err)
		return err
	}

	log.Printf("Successfully sent SMS. Message ID: %s", *result.MessageId)
	return nil
}

// stockAlertText builds the short-form digest shared by SMS, WhatsApp
// and in-app notifications. At most three item names are spelled out.
func stockAlertText(branch models.Branch, entries []models.StockEntry) string {
	var critical, low int
	names := make([]string, 0, 3)
	for _, e := range entries {
		if e.Status == models.StockCritical {
			critical++
		} else {
			low++
		}
		if len(names) < 3 {
			names = append(names, e.ItemName)
		}
	}
	msg := fmt.Sprintf("Stock Nexus: %s has %d critical and %d low items", branch.Name, critical, low)
	if len(names) > 0 {
		msg += " (" + strings.Join(names, ", ")
		if len(entries) > len(names) {
			msg += ", ..."
		}
		msg += ")"
	}
	return msg
}
