package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"solana-copy-trader/internal/domain"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramNotifier delivers trade summaries to a Telegram chat via the
// Bot API sendMessage method.
type TelegramNotifier struct {
	botToken   string
	chatID     string
	httpClient *http.Client
	baseURL    string
}

var _ Notifier = (*TelegramNotifier)(nil)

// TelegramOption customizes a TelegramNotifier.
type TelegramOption func(*TelegramNotifier)

// WithTelegramHTTPClient overrides the HTTP client, for tests.
func WithTelegramHTTPClient(client *http.Client) TelegramOption {
	return func(n *TelegramNotifier) {
		n.httpClient = client
	}
}

// WithTelegramBaseURL overrides the API base URL, for tests.
func WithTelegramBaseURL(url string) TelegramOption {
	return func(n *TelegramNotifier) {
		n.baseURL = url
	}
}

// NewTelegramNotifier creates a notifier for one bot and chat.
func NewTelegramNotifier(botToken, chatID string, opts ...TelegramOption) (*TelegramNotifier, error) {
	if botToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}
	if chatID == "" {
		return nil, fmt.Errorf("chat id is required")
	}
	n := &TelegramNotifier{
		botToken:   botToken,
		chatID:     chatID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    telegramAPIBase,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// NotifyTrade sends one message summarizing the replication round.
func (n *TelegramNotifier) NotifyTrade(ctx context.Context, results []domain.TradeExecutionResult) error {
	if len(results) == 0 {
		return nil
	}
	return n.sendMessage(ctx, formatTradeSummary(results))
}

func (n *TelegramNotifier) sendMessage(ctx context.Context, text string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: n.chatID, Text: text})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var parsed sendMessageResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return fmt.Errorf("parse response (status %d): %w", resp.StatusCode, err)
	}
	if !parsed.OK {
		return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, parsed.Description)
	}
	return nil
}

func formatTradeSummary(results []domain.TradeExecutionResult) string {
	first := &results[0]
	var b strings.Builder
	fmt.Fprintf(&b, "Copied trade from %s\n", first.SourceWallet)
	fmt.Fprintf(&b, "%s -> %s, amount %f\n", first.TokenIn, first.TokenOut, first.AmountIn)
	for i := range results {
		res := &results[i]
		if res.Result.Success {
			fmt.Fprintf(&b, "✅ %s: %s (%.1f%% slippage)\n", res.Follower, res.Result.Signature, res.Result.SlippageUsed)
		} else {
			fmt.Fprintf(&b, "❌ %s: %s\n", res.Follower, res.Result.Failure)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
