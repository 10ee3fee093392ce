package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"time"

	"moondev-backend/config"
)

// EmailService sends decision notifications via SMTP
type EmailService struct {
	host      string
	port      string
	username  string
	password  string
	fromEmail string
	timeout   time.Duration
}

// decisionEmailData holds the data for decision notification emails
type decisionEmailData struct {
	FullName string
	Feedback string
	Accepted bool
}

// NewEmailService creates a new email service from SMTP configuration
func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		fromEmail: cfg.SMTPFromEmail,
		timeout:   time.Duration(cfg.SMTPTimeoutSeconds) * time.Second,
	}
}

// decisionEmailTemplate is the HTML template for decision notifications.
// Copy mirrors the notification the evaluators' review tool has always sent.
const decisionEmailTemplate = `<!DOCTYPE html>
<html>
<body>
    <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
        <h1 style="color: {{if .Accepted}}#10B981{{else}}#EF4444{{end}};">
            {{if .Accepted}}Congratulations!{{else}}Thank You for Your Application{{end}}
        </h1>
        <p>Dear {{.FullName}},</p>
        <p>{{.Feedback}}</p>
        {{if .Accepted}}
        <p>We are excited to welcome you to our team!</p>
        {{else}}
        <p>Thank you for your interest in MoonDev.</p>
        {{end}}
        <p>Best regards,<br>MoonDev Team</p>
    </div>
</body>
</html>`

// SendDecision sends one decision notification to the developer. One
// message per decision; a failure is terminal for this attempt and the
// caller decides whether to resend.
func (s *EmailService) SendDecision(ctx context.Context, to, decision, feedback, fullName string) error {
	tmpl, err := template.New("decision").Parse(decisionEmailTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse email template: %w", err)
	}

	accepted := decision == "accepted"
	var body bytes.Buffer
	if err := tmpl.Execute(&body, decisionEmailData{
		FullName: fullName,
		Feedback: feedback,
		Accepted: accepted,
	}); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	subject := "Your MoonDev Application"
	if accepted {
		subject = "Welcome to the Team!"
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		s.fromEmail,
		to,
		subject,
		body.String(),
	))

	if err := s.send(ctx, to, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// send delivers the message over a dialed SMTP session so the attempt
// is bounded by the configured timeout instead of hanging on a dead
// relay. Context cancellation is honored up to the dial; SMTP commands
// run against a connection deadline.
func (s *EmailService) send(ctx context.Context, to string, msg []byte) error {
	addr := net.JoinHostPort(s.host, s.port)

	dialer := &net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(s.timeout))
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.host, MinVersion: tls.VersionTLS12}); err != nil {
			return err
		}
	}

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	if ok, _ := client.Extension("AUTH"); ok {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(s.fromEmail); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// IsConfigured checks if the email service has valid SMTP configuration
func (s *EmailService) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != ""
}
