package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"eumenides/internal/eventbus"
)

// AlertNotifier posts a short summary of every flagged account to an ops
// Telegram chat via the bot API. It is one of the independent AccountFlagged
// consumers; its failures stay inside the event bus boundary.
type AlertNotifier struct {
	botToken string
	chatID   string
	client   *http.Client
}

// NewAlertNotifier registers bot token and chat identifier.
func NewAlertNotifier(botToken, chatID string) *AlertNotifier {
	return &AlertNotifier{
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Handle formats and sends the alert message for one flagged account.
func (n *AlertNotifier) Handle(ctx context.Context, payload eventbus.FlaggedPayload) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram alert notifier misconfigured")
	}

	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", buildAlertMessage(payload))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

func buildAlertMessage(payload eventbus.FlaggedPayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Flagged: %s/%s\nScore: %.3f\n", payload.Platform, payload.Handle, payload.RiskScore)
	for _, reason := range payload.Reasons {
		fmt.Fprintf(&b, "- %s\n", reason)
	}
	return b.String()
}
