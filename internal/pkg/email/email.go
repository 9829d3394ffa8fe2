package email

import (
	"fmt"
	"net/smtp"
	"strconv"

	"github.com/rs/zerolog"
)

// EmailService defines the interface for email operations
type EmailService interface {
	SendStudentNumberEmail(toEmail, toName, studentNumber string) error
	SendApplicationReceivedEmail(toEmail, toName, applicationNumber string) error
}

// SMTPConfig holds configuration for the SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
}

// EmailServiceImpl implements EmailService
type EmailServiceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewEmailService creates a new EmailService
func NewEmailService(config SMTPConfig, logger zerolog.Logger) EmailService {
	return &EmailServiceImpl{
		config: config,
		logger: logger,
	}
}

// SendStudentNumberEmail notifies an applicant of their assigned student number.
func (s *EmailServiceImpl) SendStudentNumberEmail(toEmail, toName, studentNumber string) error {
	subject := "Your Student Number"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Congratulations! Your enrollment has been confirmed.</p>
		<p>Your student number is <strong>%s</strong>. Please keep it for your records.</p>
		<p>— The Registrar's Office</p>`, toName, studentNumber)

	return s.send(toEmail, subject, body)
}

// SendApplicationReceivedEmail acknowledges a submitted application.
func (s *EmailServiceImpl) SendApplicationReceivedEmail(toEmail, toName, applicationNumber string) error {
	subject := "Application Received"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>We received your enrollment application. Your application number is
		<strong>%s</strong>. Use it in any follow-up with the Registrar's Office.</p>
		<p>— The Registrar's Office</p>`, toName, applicationNumber)

	return s.send(toEmail, subject, body)
}

func (s *EmailServiceImpl) send(toEmail, subject, htmlBody string) error {
	// Without SMTP credentials, log the message instead of sending (development)
	if s.config.Username == "" || s.config.Password == "" {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("subject", subject).
			Msg("SMTP credentials not configured - email not sent")
		return nil
	}

	addr := s.config.Host + ":" + strconv.Itoa(s.config.Port)
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)

	msg := []byte("From: " + s.config.FromName + " <" + s.config.FromEmail + ">\r\n" +
		"To: " + toEmail + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n" +
		"\r\n" +
		htmlBody)

	if err := smtp.SendMail(addr, auth, s.config.FromEmail, []string{toEmail}, msg); err != nil {
		s.logger.Error().Err(err).Str("toEmail", toEmail).Msg("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info().Str("toEmail", toEmail).Str("subject", subject).Msg("Email sent")
	return nil
}
