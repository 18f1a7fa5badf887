package domain

// ObservedActivity is emitted once per (notification, monitored wallet) match.
// It is immutable after emission and consumed exactly once by the trading service.
type ObservedActivity struct {
	Signature string   // transaction signature that touched the wallet
	Wallet    string   // monitored wallet address that matched
	Slot      int64    // slot the notification was observed at
	RawLogs   []string // raw log lines carried by the notification
}
