package mailer

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/iliyamo/carmarket/internal/config"
	"github.com/iliyamo/carmarket/internal/queue"
)

func TestNewRequiresHostAndSender(t *testing.T) {
	_, err := New(config.SMTPConfig{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = New(config.SMTPConfig{Host: "smtp.example.com", Port: 587})
	assert.ErrorIs(t, err, ErrNotConfigured)

	m, err := New(config.SMTPConfig{Host: "smtp.example.com", Port: 587, User: "bot@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "bot@example.com", m.from)
}

func TestNotifyDecision(t *testing.T) {
	var sent []*gomail.Message
	m := &Mailer{from: "noreply@example.com", send: func(msgs ...*gomail.Message) error {
		sent = append(sent, msgs...)
		return nil
	}}
	ev := queue.DealEvent{Type: queue.EventDealApproved, DealRequestID: 12, CarTitle: "Golf", SeekerEmail: "s@example.com"}

	require.NoError(t, m.NotifyDecision(context.Background(), ev))
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"s@example.com"}, sent[0].GetHeader("To"))
	assert.Equal(t, []string{`Your request for "Golf" was approved`}, sent[0].GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := sent[0].WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "deal request #12")
}

func TestNotifyDecisionSkipsOtherEvents(t *testing.T) {
	m := &Mailer{from: "noreply@example.com", send: func(...*gomail.Message) error {
		t.Fatal("unexpected send")
		return nil
	}}
	assert.Error(t, m.NotifyDecision(context.Background(), queue.DealEvent{Type: queue.EventDealSubmitted, SeekerEmail: "s@example.com"}))
	assert.Error(t, m.NotifyDecision(context.Background(), queue.DealEvent{Type: queue.EventDealRejected}))
}
