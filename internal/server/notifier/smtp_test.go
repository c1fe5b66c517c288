package notifier

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sent  []*gomail.Message
	err   error
	block chan struct{}
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if f.block != nil {
		<-f.block
	}
	f.sent = append(f.sent, m...)
	return f.err
}

func TestSMTP_Send(t *testing.T) {
	d := &fakeDialer{}
	s := NewSMTP(SMTPConfig{Host: "smtp.test", Port: 2525, Username: "mailer@acme.io", FromName: "Acme"}, mustTemplates(t))
	s.dialer = d

	err := s.Send(context.Background(), Message{To: "a@b.com", Code: 246810, ValidFor: 3 * time.Minute})
	require.NoError(t, err)
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	assert.Equal(t, []string{"a@b.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Your Acme sign-in code"}, m.GetHeader("Subject"))
	assert.Contains(t, m.GetHeader("From")[0], "mailer@acme.io")

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "246810")
}

func TestSMTP_SendError(t *testing.T) {
	s := NewSMTP(SMTPConfig{Host: "smtp.test", Port: 25}, mustTemplates(t))
	s.dialer = &fakeDialer{err: errors.New("connection refused")}

	err := s.Send(context.Background(), Message{To: "a@b.com", Code: 123456})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSMTP_ContextDeadline(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	s := NewSMTP(SMTPConfig{Host: "smtp.test", Port: 25}, mustTemplates(t))
	s.dialer = &fakeDialer{block: block}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.Send(ctx, Message{To: "a@b.com", Code: 123456})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
