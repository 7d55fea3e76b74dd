package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"CoinSentinel/internal/model"
)

// TelegramNotifier sends alerts via the Telegram Bot API. ChatIDs may hold
// several destinations; delivery is confirmed only when every chat accepted
// the message.
type TelegramNotifier struct {
	BotToken   string
	ChatIDs    []string
	MaxRetries int
	Client     *http.Client

	apiBase string
	log     zerolog.Logger
}

// NewTelegramNotifier creates a notifier with optional proxy support. chatID
// may be a comma-separated list.
func NewTelegramNotifier(botToken, chatID, proxyURL string, log zerolog.Logger) *TelegramNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	var chats []string
	for _, c := range strings.Split(chatID, ",") {
		if c = strings.TrimSpace(c); c != "" {
			chats = append(chats, c)
		}
	}
	return &TelegramNotifier{
		BotToken:   botToken,
		ChatIDs:    chats,
		MaxRetries: 3,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		apiBase: "https://api.telegram.org",
		log:     log,
	}
}

// SendAlert formats and delivers the alert to every configured chat.
func (t *TelegramNotifier) SendAlert(ctx context.Context, alert *model.Alert) error {
	text := FormatAlert(alert)
	for _, chat := range t.ChatIDs {
		if err := t.sendWithRetry(ctx, chat, text); err != nil {
			return fmt.Errorf("deliver to chat %s: %w", chat, err)
		}
	}
	return nil
}

func (t *TelegramNotifier) send(ctx context.Context, chatID, text string) error {
	apiURL := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.BotToken)
	payload := map[string]string{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// sendWithRetry retries with exponential backoff before giving up.
func (t *TelegramNotifier) sendWithRetry(ctx context.Context, chatID, text string) error {
	var lastErr error
	for i := 0; i <= t.MaxRetries; i++ {
		if err := t.send(ctx, chatID, text); err != nil {
			lastErr = err
			if i == t.MaxRetries {
				break
			}
			backoff := time.Duration(1<<uint(i)) * time.Second
			t.log.Warn().Err(err).Int("attempt", i+1).Dur("backoff", backoff).Msg("telegram send failed, retrying")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				continue
			}
		}
		return nil
	}
	return fmt.Errorf("all %d attempts failed: %w", t.MaxRetries+1, lastErr)
}
