// Package messaging delivers user-facing replies over WhatsApp through the
// Green API gateway.
//
// Destinations resolve per user: a known user's profile supplies their phone
// number and, when they run their own Green API instance, their own gateway
// credentials. Unknown users fall back to their id (ids are phone numbers)
// and the system-wide instance.
package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/daniel5812/brain-dump-server/internal/user"
)

// Sender delivers one message to one user.
type Sender interface {
	Send(ctx context.Context, userID, message string) error
}

// GreenAPI is a [Sender] backed by the Green API WhatsApp gateway.
type GreenAPI struct {
	httpClient   *http.Client
	log          *slog.Logger
	baseURL      string
	instanceID   string
	token        string
	defaultPhone string
	users        user.Store
	disabled     bool
}

var _ Sender = (*GreenAPI)(nil)

// Option configures a [GreenAPI].
type Option func(*GreenAPI)

// WithHTTPClient overrides the HTTP client used for gateway calls.
func WithHTTPClient(c *http.Client) Option {
	return func(g *GreenAPI) {
		g.httpClient = c
	}
}

// WithBaseURL overrides the default Green API base URL.
func WithBaseURL(url string) Option {
	return func(g *GreenAPI) {
		g.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithDefaultPhone sets the destination used when a user id cannot be
// resolved to a phone number.
func WithDefaultPhone(phone string) Option {
	return func(g *GreenAPI) {
		g.defaultPhone = phone
	}
}

// WithUserDirectory lets the sender resolve per-user phone numbers and
// gateway credentials.
func WithUserDirectory(s user.Store) Option {
	return func(g *GreenAPI) {
		g.users = s
	}
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *GreenAPI) {
		g.log = l
	}
}

// Disabled turns the sender into a log-only no-op. Useful in development and
// test environments.
func Disabled() Option {
	return func(g *GreenAPI) {
		g.disabled = true
	}
}

// New constructs a Green API sender for the given system-wide instance.
func New(instanceID, token string, opts ...Option) (*GreenAPI, error) {
	g := &GreenAPI{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        slog.Default(),
		baseURL:    "https://api.green-api.com",
		instanceID: instanceID,
		token:      token,
	}
	for _, opt := range opts {
		opt(g)
	}
	if !g.disabled && (g.instanceID == "" || g.token == "") {
		return nil, errors.New("messaging: instance id and token must not be empty")
	}
	return g, nil
}

// Send implements [Sender].
func (g *GreenAPI) Send(ctx context.Context, userID, message string) error {
	if g.disabled {
		g.log.Info("whatsapp sending disabled", "to", userID, "message", message)
		return nil
	}

	baseURL, instanceID, token := g.baseURL, g.instanceID, g.token
	phone := userID

	if g.users != nil && userID != "" {
		switch cfg, err := g.users.Get(ctx, userID); {
		case err == nil:
			if cfg.Phone != "" {
				phone = cfg.Phone
			}
			if cfg.GreenAPIInstanceID != "" && cfg.GreenAPIToken != "" {
				instanceID, token = cfg.GreenAPIInstanceID, cfg.GreenAPIToken
				if cfg.GreenAPIURL != "" {
					baseURL = strings.TrimSuffix(cfg.GreenAPIURL, "/")
				}
			}
		case !errors.Is(err, user.ErrNotFound):
			return fmt.Errorf("messaging: resolve user %q: %w", userID, err)
		}
	}

	if phone == "" {
		phone = g.defaultPhone
	}
	if phone == "" {
		return errors.New("messaging: no destination phone number")
	}

	payload, err := json.Marshal(map[string]string{
		"chatId":  formatChatID(phone),
		"message": message,
	})
	if err != nil {
		return fmt.Errorf("messaging: marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/waInstance%s/sendMessage/%s", baseURL, instanceID, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("messaging: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("messaging: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("messaging: green api status %d: %s", resp.StatusCode, body)
	}

	var result struct {
		IDMessage string `json:"idMessage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil && result.IDMessage != "" {
		g.log.Debug("whatsapp sent", "id", result.IDMessage, "to", userID)
	}
	return nil
}

// formatChatID converts a phone number to the Green API chat id format.
func formatChatID(phone string) string {
	cleaned := strings.TrimSpace(phone)
	cleaned = strings.TrimPrefix(cleaned, "whatsapp:")
	cleaned = strings.TrimPrefix(cleaned, "+")
	cleaned = strings.TrimSuffix(cleaned, "@c.us")
	return cleaned + "@c.us"
}
