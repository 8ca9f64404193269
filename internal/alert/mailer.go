package alert

import (
	"github.com/kridmal/nerd-stationery-sub000/config"
	"gopkg.in/gomail.v2"
)

// Sender delivers a single HTML email. The alert cycle treats a nil
// Sender as "transport unavailable" and skips without erroring.
type Sender interface {
	Send(to string, cc []string, subject, html string) error
}

type smtpSender struct {
	cfg config.SmtpConfig
}

// NewSMTPSender builds a gomail-backed sender from the SMTP config.
// Returns nil when the host or port is missing, which disables alert
// delivery for the process.
func NewSMTPSender(cfg config.SmtpConfig) Sender {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil
	}
	return &smtpSender{cfg: cfg}
}

func (s *smtpSender) Send(to string, cc []string, subject, html string) error {
	from := s.cfg.From
	if from == "" {
		from = s.cfg.Username
	}
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	if len(cc) > 0 {
		m.SetHeader("Cc", cc...)
	}
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	return d.DialAndSend(m)
}
