package services

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"
)

var (
	ErrNoRecipients        = errors.New("no digest recipients configured")
	ErrMailerNotConfigured = errors.New("mailer not configured")
)

// Attachment is an in-memory file attached to an outgoing mail.
type Attachment struct {
	Name string
	Data []byte
}

type EmailService interface {
	SendDigest(to []string, subject, html string, attachments ...Attachment) error
}

// Sender delivers a composed message. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	sender Sender
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return NewEmailServiceWithSender(dialer, fromEmail)
}

func NewEmailServiceWithSender(sender Sender, fromEmail string) EmailService {
	return &emailService{sender: sender, from: fromEmail}
}

func (s *emailService) SendDigest(to []string, subject, html string, attachments ...Attachment) error {
	if len(to) == 0 {
		return ErrNoRecipients
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	for _, a := range attachments {
		data := a.Data
		m.Attach(a.Name, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}))
	}

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send digest email: %w", err)
	}
	return nil
}
