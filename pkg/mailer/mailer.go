package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/prism-worklet/prism-api/pkg/metrics"
	"gopkg.in/gomail.v2"
)

// Template names used for logging and metrics labels.
const (
	TemplateVerification  = "verification"
	TemplatePasswordReset = "password_reset"
)

// Mailer sends transactional mail. Implementations must be safe for
// concurrent use.
type Mailer interface {
	SendVerificationCode(email, name, code string) error
	SendPasswordResetCode(email, name, code string) error
}

// Config holds SMTP settings
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

// SMTPMailer delivers mail over SMTP with STARTTLS.
type SMTPMailer struct {
	dialer *gomail.Dialer
	sender string
}

// NewSMTPMailer creates an SMTPMailer from config.
func NewSMTPMailer(cfg Config) *SMTPMailer {
	sender := cfg.Sender
	if sender == "" {
		sender = cfg.Username
	}

	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		sender: sender,
	}
}

// SendVerificationCode sends the signup OTP mail.
func (m *SMTPMailer) SendVerificationCode(email, name, code string) error {
	body, err := renderTemplate(verificationTemplate, name, code)
	if err != nil {
		return err
	}
	return m.send(email, "Your PRISM Verification Code", body)
}

// SendPasswordResetCode sends the password reset OTP mail.
func (m *SMTPMailer) SendPasswordResetCode(email, name, code string) error {
	body, err := renderTemplate(passwordResetTemplate, name, code)
	if err != nil {
		return err
	}
	return m.send(email, "PRISM Password Reset", body)
}

func (m *SMTPMailer) send(recipient, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

type templateData struct {
	Name string
	Code string
	Year int
}

func renderTemplate(tmpl *template.Template, name, code string) (string, error) {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, templateData{
		Name: name,
		Code: code,
		Year: time.Now().Year(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render email template: %w", err)
	}
	return buf.String(), nil
}

func observeDispatch(tmplName string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.EmailDispatches.WithLabelValues(tmplName, status).Inc()
}
