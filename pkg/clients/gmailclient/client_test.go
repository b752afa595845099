package gmailclient

import (
	"context"
	"encoding/base64"
	"errors"
	"mime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu    sync.Mutex
	raws  []string
	times []time.Time
	err   error
}

func (s *recordingSender) Send(ctx context.Context, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.raws = append(s.raws, raw)
	s.times = append(s.times, time.Now())
	return nil
}

func decode(t *testing.T, raw string) string {
	t.Helper()
	data, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)
	return string(data)
}

func TestSendEmail_EncodesMessage(t *testing.T) {
	sender := &recordingSender{}
	client := NewWithSender(sender, "staff@tholdem.example", 0)

	require.NoError(t, client.SendEmail(context.Background(), "dealer@example.com", "근무 확정", "2024-01-05 18:00 dealer"))

	require.Len(t, sender.raws, 1)
	msg := decode(t, sender.raws[0])
	assert.Contains(t, msg, "From: staff@tholdem.example\r\n")
	assert.Contains(t, msg, "To: dealer@example.com\r\n")
	assert.Contains(t, msg, "Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\n2024-01-05 18:00 dealer"))

	var subject string
	for _, line := range strings.Split(msg, "\r\n") {
		if strings.HasPrefix(line, "Subject: ") {
			subject = strings.TrimPrefix(line, "Subject: ")
		}
	}
	decoded, err := new(mime.WordDecoder).DecodeHeader(subject)
	require.NoError(t, err)
	assert.Equal(t, "근무 확정", decoded)
}

func TestSendEmail_Throttles(t *testing.T) {
	sender := &recordingSender{}
	client := NewWithSender(sender, "", 50*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, client.SendEmail(ctx, "a@example.com", "s", "b"))
	require.NoError(t, client.SendEmail(ctx, "b@example.com", "s", "b"))

	require.Len(t, sender.times, 2)
	assert.GreaterOrEqual(t, sender.times[1].Sub(sender.times[0]), 45*time.Millisecond)
	assert.NotContains(t, decode(t, sender.raws[0]), "From:")
}

func TestSendEmail_CancelledWhileWaiting(t *testing.T) {
	sender := &recordingSender{}
	client := NewWithSender(sender, "", time.Hour)

	require.NoError(t, client.SendEmail(context.Background(), "a@example.com", "s", "b"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := client.SendEmail(ctx, "b@example.com", "s", "b")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, sender.raws, 1)
}

func TestSendEmail_Error(t *testing.T) {
	client := NewWithSender(&recordingSender{err: errors.New("quota exceeded")}, "", 0)

	err := client.SendEmail(context.Background(), "a@example.com", "s", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send email")
}
