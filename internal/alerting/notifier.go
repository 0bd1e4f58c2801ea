package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"forex-rsi-alerts/internal/signal"
)

// Notifier delivers alerts and plain lifecycle messages. Delivery failures
// are recoverable by contract: the monitor logs them and moves on, and the
// evaluator's cooldown state is set before delivery is attempted.
type Notifier interface {
	Notify(ctx context.Context, alert signal.Alert) error
	NotifyText(ctx context.Context, text string) error
}

// TelegramNotifier pushes messages through the Telegram Bot API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	display  *time.Location
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier constructs a Telegram notifier. display controls the
// timezone shown in alert messages; nil means UTC.
func NewTelegramNotifier(botToken, chatID, baseURL string, display *time.Location, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	if display == nil {
		display = time.UTC
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		display:  display,
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "alert_telegram").Logger(),
	}
}

// Notify renders and sends an RSI alert.
func (n *TelegramNotifier) Notify(ctx context.Context, alert signal.Alert) error {
	if err := n.send(ctx, renderAlert(alert, n.display)); err != nil {
		return err
	}

	n.logger.Info().
		Str("pair", alert.Pair.String()).
		Str("timeframe", alert.Timeframe.Interval()).
		Str("zone", alert.Zone.String()).
		Float64("rsi", alert.RSI).
		Msg("alert delivered")
	return nil
}

// NotifyText sends a pre-rendered message (startup, sleep, wake).
func (n *TelegramNotifier) NotifyText(ctx context.Context, text string) error {
	return n.send(ctx, text)
}

func (n *TelegramNotifier) send(ctx context.Context, text string) error {
	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    text,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram responded with status %d", resp.StatusCode)
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
		if !result.OK {
			return fmt.Errorf("telegram returned ok=false")
		}
	}

	return nil
}

func renderAlert(alert signal.Alert, display *time.Location) string {
	var action, headline string
	switch alert.Zone {
	case signal.Oversold:
		headline = "OVERSOLD SIGNAL"
		action = "Potential BUY opportunity"
	default:
		headline = "OVERBOUGHT SIGNAL"
		action = "Potential SELL opportunity"
	}

	builder := strings.Builder{}
	builder.WriteString("[RSI Alert]\n")
	builder.WriteString(fmt.Sprintf("Pair: %s\n", alert.Pair))
	builder.WriteString(fmt.Sprintf("Timeframe: %s\n", alert.Timeframe.Interval()))
	builder.WriteString(fmt.Sprintf("RSI(14): %.2f\n", alert.RSI))
	builder.WriteString(fmt.Sprintf("Price: %s\n", alert.Price))
	builder.WriteString(fmt.Sprintf("Time: %s\n", alert.Time.In(display).Format("02/01/2006 15:04 MST")))
	builder.WriteString("\n")
	builder.WriteString(headline + "\n")
	builder.WriteString(action + "\n")
	builder.WriteString("\nNot financial advice")
	return builder.String()
}

var _ Notifier = (*TelegramNotifier)(nil)
