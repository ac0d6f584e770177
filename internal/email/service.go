package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/schoolhealth/consult-api/internal/model"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Service delivers notice digests to the school coordinators' mailboxes.
// Student-facing delivery goes through the broker, not email.
type Service interface {
	SendNoticeDigest(ctx context.Context, to string, notices []*model.Notice) error
	SendCustom(ctx context.Context, to, subject, content string) error
}

type service struct {
	config Config
	dialer *gomail.Dialer
}

func NewService(config Config) Service {
	return &service{
		config: config,
		dialer: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
	}
}

func (s *service) SendNoticeDigest(_ context.Context, to string, notices []*model.Notice) error {
	if len(notices) == 0 {
		return nil
	}

	body := "Recent consultation notices:\n\n"
	for _, n := range notices {
		body += fmt.Sprintf("- [%s] %s: %s\n", n.Type, n.Title, n.Message)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Consultation notices (%d new)", len(notices)))
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send digest: %w", err)
	}
	return nil
}

func (s *service) SendCustom(_ context.Context, to, subject, content string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.config.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", content)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
