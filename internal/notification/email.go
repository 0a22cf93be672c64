package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"time"

	"github.com/asengupta/surveillance-server/internal/protocol"
	"github.com/asengupta/surveillance-server/pkg/config"
)

// EmailNotifier sends email notifications
type EmailNotifier struct {
	config *config.SMTPConfig
}

// NewEmailNotifier creates a new email notifier
func NewEmailNotifier(cfg *config.SMTPConfig) *EmailNotifier {
	return &EmailNotifier{config: cfg}
}

// SendOutbreakNotification sends an email for an outbreak notification
func (e *EmailNotifier) SendOutbreakNotification(notification *protocol.OutbreakNotification) error {
	var subject string
	var body string
	var err error

	switch notification.Type {
	case protocol.OutbreakTypeDetected:
		subject = fmt.Sprintf("🚨 Outbreak DETECTED - %s (%s)", notification.Category, notification.Severity)
		body, err = e.renderDetectedTemplate(notification)
	case protocol.OutbreakTypeCleared:
		subject = fmt.Sprintf("✅ Outbreak CLEARED - %s", notification.Category)
		body, err = e.renderClearedTemplate(notification)
	default:
		return fmt.Errorf("unknown notification type: %s", notification.Type)
	}

	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return e.sendEmail(subject, body)
}

func (e *EmailNotifier) renderDetectedTemplate(notification *protocol.OutbreakNotification) (string, error) {
	tmpl := `
Disease Outbreak Detected
=========================

Category: {{.Category}}
Severity: {{.Severity}}
Case Trend: {{printf "%.2f" .Slope}} cases/day
Latest Daily Count: {{printf "%.0f" .LastCount}}
First Detected: {{.StartTime}}
Outbreak ID: {{.OutbreakID}}

Description:
Reported {{.Category}} cases across the surveillance network are rising at
{{printf "%.2f" .Slope}} cases per day, with {{printf "%.0f" .LastCount}}
cases reported on the most recent day. The trend has persisted through the
confirmation window and is classified {{.Severity}}.

Please review the surveillance dashboard and alert district health officers.

---
Surveillance Server Notification System
`

	t, err := template.New("detected").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, notification); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (e *EmailNotifier) renderClearedTemplate(notification *protocol.OutbreakNotification) (string, error) {
	tmpl := `
Disease Outbreak Cleared
========================

Category: {{.Category}}
Outbreak ID: {{.OutbreakID}}

Description:
The case trend for {{.Category}} is no longer rising. The outbreak watch
has been stood down.

---
Surveillance Server Notification System
`

	t, err := template.New("cleared").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, notification); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (e *EmailNotifier) sendEmail(subject, body string) error {
	// Skip sending if SMTP is not configured
	if e.config.Username == "" || e.config.Password == "" {
		fmt.Printf("SMTP not configured, skipping email:\nSubject: %s\n%s\n", subject, body)
		return nil
	}

	// Construct message
	message := fmt.Sprintf("From: %s\r\n", e.config.From)
	message += fmt.Sprintf("To: %s\r\n", e.config.To)
	message += fmt.Sprintf("Subject: %s\r\n", subject)
	message += fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	message += "\r\n"
	message += body

	// Setup authentication
	auth := smtp.PlainAuth("", e.config.Username, e.config.Password, e.config.Host)

	// Send email
	addr := fmt.Sprintf("%s:%d", e.config.Host, e.config.Port)
	err := smtp.SendMail(addr, auth, e.config.From, []string{e.config.To}, []byte(message))
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	fmt.Printf("Email sent successfully: %s\n", subject)
	return nil
}

// TestConnection tests the SMTP connection
func (e *EmailNotifier) TestConnection() error {
	if e.config.Username == "" {
		return fmt.Errorf("SMTP not configured")
	}

	addr := fmt.Sprintf("%s:%d", e.config.Host, e.config.Port)
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Close()

	fmt.Println("SMTP connection test successful")
	return nil
}
