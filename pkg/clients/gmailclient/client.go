package gmailclient

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/tholdem/holdem-staff/internal/config"
	"github.com/tholdem/holdem-staff/pkg/utils"
)

const EMAIL_INTERVAL = 3 * time.Second

// Sender delivers a raw RFC 2822 message
type Sender interface {
	Send(ctx context.Context, raw string) error
}

type gmailSender struct {
	service *gmail.Service
}

func (s *gmailSender) Send(ctx context.Context, raw string) error {
	_, err := s.service.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	return err
}

// Client sends confirmation notices through the Gmail API
type Client struct {
	sender       Sender
	from         string
	interval     time.Duration
	lastSendTime time.Time
	sendMutex    sync.Mutex
}

// NewClient creates a Gmail client using a token that already carries the
// gmail.send scope, usually the one obtained by the Sheets client
func NewClient(ctx context.Context, oauthCfg *config.OAuthClientConfig, token *oauth2.Token, from string) (*Client, error) {
	oauthConfig, err := utils.GetOAuthConfig(oauthCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get oauth config: %w", err)
	}

	service, err := gmail.NewService(ctx, option.WithHTTPClient(oauthConfig.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	return NewWithSender(&gmailSender{service: service}, from, EMAIL_INTERVAL), nil
}

// NewWithSender creates a client over any Sender, waiting interval between sends
func NewWithSender(sender Sender, from string, interval time.Duration) *Client {
	return &Client{sender: sender, from: from, interval: interval}
}

// SendEmail sends an email with the specified subject and body.
// Requests are throttled to respect Gmail API rate limits.
func (c *Client) SendEmail(ctx context.Context, to, subject, body string) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	if !c.lastSendTime.IsZero() {
		if wait := c.interval - time.Since(c.lastSendTime); wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	if err := c.sender.Send(ctx, encodeMessage(c.from, to, subject, body)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	c.lastSendTime = time.Now()
	return nil
}

// encodeMessage builds a base64url encoded UTF-8 message
func encodeMessage(from, to, subject, body string) string {
	var b strings.Builder
	if from != "" {
		fmt.Fprintf(&b, "From: %s\r\n", from)
	}
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.BEncoding.Encode("UTF-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	return base64.URLEncoding.EncodeToString([]byte(b.String()))
}
