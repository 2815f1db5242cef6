package utils

import (
	"fmt"
	"log"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"grocery-backend/models"
)

// EmailService sends notification emails through SendGrid. With no API key
// configured it logs and skips sending, so local setups work without one.
type EmailService struct {
	client *sendgrid.Client
	sender string
}

// NewEmailService initializes the service from SENDGRID_API_KEY and
// EMAIL_SENDER.
func NewEmailService() *EmailService {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" {
		log.Println("SENDGRID_API_KEY not set; email notifications disabled")
		return &EmailService{}
	}
	return &EmailService{
		client: sendgrid.NewSendClient(apiKey),
		sender: os.Getenv("EMAIL_SENDER"),
	}
}

// SendEmail sends a basic HTML email to the recipient.
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	if es.client == nil {
		return nil
	}

	from := mail.NewEmail("Grocery App", es.sender)
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, htmlContent, htmlContent)

	resp, err := es.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}

// SendOrderAssignedEmail notifies a delivery partner about a newly assigned
// order.
func (es *EmailService) SendOrderAssignedEmail(toEmail string, order models.Order) error {
	subject := "New Delivery Assigned"
	htmlContent := fmt.Sprintf(
		"<strong>You have been assigned a new delivery.</strong><br><br>Order ID: <strong>%s</strong><br>Deliver to: <strong>%s</strong><br>Total: <strong>₹%.2f</strong>",
		order.ID.Hex(),
		order.DeliveryAddress.FullAddress,
		order.TotalPrice,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}
