package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go-headhunter-backend/config"
	"go-headhunter-backend/internal/domain"
	"html/template"
	"net/smtp"
)

// ErrNotConfigured is returned when SMTP credentials are missing.
var ErrNotConfigured = errors.New("email service is not configured")

// SendFunc matches smtp.SendMail; replaced in tests.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailService sends account emails via SMTP
type EmailService struct {
	host        string
	port        string
	username    string
	password    string
	fromEmail   string
	frontendURL string
	send        SendFunc
}

// ActivationEmailData holds the data for activation emails
type ActivationEmailData struct {
	Email          string
	Password       string
	ActivationLink string
	IsHR           bool
}

// NewEmailService creates a new email service with Brevo SMTP configuration
func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:        cfg.SMTPHost,
		port:        cfg.SMTPPort,
		username:    cfg.SMTPUsername,
		password:    cfg.SMTPPassword,
		fromEmail:   cfg.SMTPFromEmail,
		frontendURL: cfg.FrontendURL,
		send:        smtp.SendMail,
	}
}

// WithSendFunc replaces the SMTP transport.
func (s *EmailService) WithSendFunc(f SendFunc) *EmailService {
	s.send = f
	return s
}

var activationTemplate = template.Must(template.New("activation").Parse(activationEmailTemplate))

const activationEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Activate your account</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #0066cc; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .button { display: inline-block; background: #0066cc; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Welcome to HeadHunter</h1>
        </div>
        <div class="content">
            {{if .IsHR}}<p>A recruiter account has been created for you.</p>{{else}}<p>Your student profile has been imported from the bootcamp results.</p>{{end}}
            <p>Login: <strong>{{.Email}}</strong><br>Password: <strong>{{.Password}}</strong></p>
            <p style="text-align: center;"><a class="button" href="{{.ActivationLink}}">Activate account</a></p>
            <p>If the button does not work, open this link: {{.ActivationLink}}</p>
        </div>
        <div class="footer">
            <p>If you did not expect this email, you can ignore it.</p>
        </div>
    </div>
</body>
</html>`

// ActivationLink builds the frontend URL the user opens to activate the account
func (s *EmailService) ActivationLink(userID, token string) string {
	return fmt.Sprintf("%s/activate/%s/%s", s.frontendURL, userID, token)
}

// RenderActivationEmail renders the HTML body of an activation email
func RenderActivationEmail(data ActivationEmailData) (string, error) {
	var body bytes.Buffer
	if err := activationTemplate.Execute(&body, data); err != nil {
		return "", fmt.Errorf("failed to execute email template: %w", err)
	}
	return body.String(), nil
}

// SendActivationLink sends the activation email for a newly registered account
func (s *EmailService) SendActivationLink(ctx context.Context, msg domain.ActivationMessage) error {
	if !s.IsConfigured() {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := RenderActivationEmail(ActivationEmailData{
		Email:          msg.ToEmail,
		Password:       msg.Password,
		ActivationLink: s.ActivationLink(msg.UserID, msg.Token),
		IsHR:           msg.Role == domain.RoleHR,
	})
	if err != nil {
		return err
	}

	raw := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		s.fromEmail,
		msg.ToEmail,
		"Activate your HeadHunter account",
		body,
	))

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := s.send(addr, auth, s.fromEmail, []string{msg.ToEmail}, raw); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// IsConfigured checks if the email service has valid SMTP configuration
func (s *EmailService) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != ""
}
