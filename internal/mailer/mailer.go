// Package mailer sends deal decision notifications over SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/iliyamo/carmarket/internal/config"
	"github.com/iliyamo/carmarket/internal/queue"
)

// ErrNotConfigured is returned by New when SMTP_HOST is empty.
var ErrNotConfigured = errors.New("smtp not configured")

type Mailer struct {
	from string
	send func(...*gomail.Message) error
}

func New(cfg config.SMTPConfig) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, ErrNotConfigured
	}
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	if from == "" {
		return nil, fmt.Errorf("smtp sender address: %w", ErrNotConfigured)
	}
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	return &Mailer{from: from, send: d.DialAndSend}, nil
}

// NotifyDecision mails the seeker the outcome of their request.
func (m *Mailer) NotifyDecision(ctx context.Context, ev queue.DealEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := m.decisionMessage(ev)
	if err != nil {
		return err
	}
	return m.send(msg)
}

func (m *Mailer) decisionMessage(ev queue.DealEvent) (*gomail.Message, error) {
	if ev.SeekerEmail == "" {
		return nil, errors.New("event has no seeker email")
	}
	var verb string
	switch ev.Type {
	case queue.EventDealApproved:
		verb = "approved"
	case queue.EventDealRejected:
		verb = "rejected"
	default:
		return nil, fmt.Errorf("no notification for event type %q", ev.Type)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", ev.SeekerEmail)
	msg.SetHeader("Subject", fmt.Sprintf("Your request for %q was %s", ev.CarTitle, verb))
	msg.SetBody("text/plain", fmt.Sprintf(
		"Hello,\n\nThe owner of %q has %s your deal request #%d.\n",
		ev.CarTitle, verb, ev.DealRequestID))
	return msg, nil
}
