package solana

import "context"

// WSClient defines the Solana WebSocket subscription interface.
type WSClient interface {
	// SubscribeLogs subscribes to log notifications matching the filter.
	SubscribeLogs(ctx context.Context, filter LogsFilter) (<-chan LogNotification, error)

	// Close closes the WebSocket connection.
	Close() error
}

// LogsFilter defines the subscription scope for logs.
type LogsFilter struct {
	// Mentions filters logs that mention any of these addresses.
	// Empty subscribes to the full stream.
	Mentions []string
}

// LogNotification represents a logs subscription message.
// AccountKeys is populated when the provider includes decoded account
// keys in the notification; the consumer falls back to getTransaction
// when it is empty.
type LogNotification struct {
	Signature   string
	Slot        int64
	Logs        []string
	AccountKeys []string
	Err         interface{}
}
