// Package main runs the copy-trading bot:
// - Monitor (continuous): WebSocket log subscription over monitored wallets
// - Trading (continuous): reconstruction → evaluation → replication
// - Management: HTTP API for wallets, bot toggle, status, metrics
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"solana-copy-trader/internal/decision"
	"solana-copy-trader/internal/domain"
	"solana-copy-trader/internal/executor"
	"solana-copy-trader/internal/market"
	"solana-copy-trader/internal/monitor"
	"solana-copy-trader/internal/notify"
	"solana-copy-trader/internal/observability"
	"solana-copy-trader/internal/replicator"
	"solana-copy-trader/internal/solana"
	"solana-copy-trader/internal/storage"
	chstore "solana-copy-trader/internal/storage/clickhouse"
	"solana-copy-trader/internal/storage/memory"
	"solana-copy-trader/internal/storage/migrations"
	pgstore "solana-copy-trader/internal/storage/postgres"
	"solana-copy-trader/internal/trading"
	"solana-copy-trader/internal/wallet"
)

// Bot holds all components of the running service.
type Bot struct {
	monitored *monitor.Registry
	followers *wallet.Registry
	service   *trading.Service
	wallets   storage.WalletStore
	trades    storage.TradeRecordStore

	ws        solana.WSClient
	notifCh   chan solana.LogNotification
	forwardWG sync.WaitGroup

	logger  *log.Logger
	started time.Time
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("SOLANA_WS_ENDPOINT"), "Solana WebSocket endpoint")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	monitored := flag.String("monitored", os.Getenv("MONITORED_WALLETS"), "Comma-separated monitored wallet addresses")
	followerKeys := flag.String("follower-keys", os.Getenv("FOLLOWER_KEYS"), "Comma-separated base58 follower keypairs")
	minProfit := flag.Float64("min-profit", decision.DefaultMinProfitPct, "Minimum profit percentage to copy a trade")
	initialSlippage := flag.Float64("initial-slippage", executor.DefaultInitialSlippage, "Initial slippage tolerance, percent")
	slippageStep := flag.Float64("slippage-step", executor.DefaultSlippageStep, "Slippage increment per retry, percent")
	maxSlippage := flag.Float64("max-slippage", executor.DefaultMaxSlippage, "Slippage ceiling, percent")
	httpAddr := flag.String("http-addr", ":9090", "Management and metrics HTTP address")
	telegramToken := flag.String("telegram-token", os.Getenv("TELEGRAM_BOT_TOKEN"), "Telegram bot token (optional)")
	telegramChat := flag.String("telegram-chat", os.Getenv("TELEGRAM_CHAT_ID"), "Telegram chat ID (optional)")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}
	if *wsEndpoint == "" {
		logger.Fatal("--ws-endpoint is required")
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Create stores
	walletStore, tradeStore, attemptStore, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Solana clients
	rpc := solana.NewHTTPClient(*rpcEndpoint)
	ws, err := solana.NewWSClient(ctx, *wsEndpoint, nil)
	if err != nil {
		logger.Fatalf("Failed to connect websocket: %v", err)
	}
	defer ws.Close()

	// Monitored wallet registry
	monitoredRegistry := monitor.NewRegistry()
	for _, addr := range splitList(*monitored) {
		if err := monitoredRegistry.Add(addr); err != nil {
			logger.Fatalf("Invalid monitored wallet %s: %v", addr, err)
		}
	}
	logger.Printf("Monitoring %d wallets", monitoredRegistry.Len())

	// Follower registry: derive addresses from keypairs, ensure a wallet
	// record exists, and attach the signer.
	followerRegistry := wallet.NewRegistry(walletStore)
	for _, encoded := range splitList(*followerKeys) {
		kp, err := wallet.KeypairFromBase58(encoded)
		if err != nil {
			logger.Fatalf("Invalid follower keypair: %v", err)
		}
		addr := kp.PublicKey()
		if err := ensureWalletRecord(ctx, walletStore, addr); err != nil {
			logger.Fatalf("Failed to register follower %s: %v", addr, err)
		}
		if err := followerRegistry.RegisterSigner(addr, kp); err != nil {
			logger.Fatalf("Failed to register signer %s: %v", addr, err)
		}
		logger.Printf("Registered follower %s", addr)
	}

	// Monitor filter
	filter := monitor.NewFilter(monitor.FilterOptions{
		Registry: monitoredRegistry,
		RPC:      rpc,
		Logger:   log.New(os.Stdout, "[monitor] ", log.LstdFlags),
	})

	// Market resolution with a process-lifetime cache
	resolver, err := market.NewAMMResolver(market.AMMResolverOptions{RPC: rpc})
	if err != nil {
		logger.Fatalf("Failed to create market resolver: %v", err)
	}
	markets := market.NewCache(resolver)

	// Swap execution
	submitter, err := executor.NewRPCSubmitter(rpc, nil)
	if err != nil {
		logger.Fatalf("Failed to create submitter: %v", err)
	}
	exec, err := executor.New(executor.Options{
		Submitter:       submitter,
		InitialSlippage: *initialSlippage,
		SlippageStep:    *slippageStep,
		MaxSlippage:     *maxSlippage,
	})
	if err != nil {
		logger.Fatalf("Failed to create executor: %v", err)
	}

	repl, err := replicator.New(replicator.Options{
		Registry: followerRegistry,
		Markets:  markets,
		Executor: exec,
	})
	if err != nil {
		logger.Fatalf("Failed to create replicator: %v", err)
	}

	// Notifications
	notifier := notify.Notifier(notify.NewLogNotifier(nil))
	if *telegramToken != "" && *telegramChat != "" {
		tg, err := notify.NewTelegramNotifier(*telegramToken, *telegramChat)
		if err != nil {
			logger.Fatalf("Failed to create telegram notifier: %v", err)
		}
		notifier = notify.Multi{notify.NewLogNotifier(nil), tg}
		logger.Printf("Telegram notifications enabled")
	}

	service, err := trading.New(trading.Options{
		RPC:        rpc,
		Events:     filter.Events(),
		Evaluator:  decision.NewEvaluator(*minProfit),
		Replicator: repl,
		Trades:     tradeStore,
		Attempts:   attemptStore,
		Notifier:   notifier,
	})
	if err != nil {
		logger.Fatalf("Failed to create trading service: %v", err)
	}

	bot := &Bot{
		monitored: monitoredRegistry,
		followers: followerRegistry,
		service:   service,
		wallets:   walletStore,
		trades:    tradeStore,
		ws:        ws,
		notifCh:   make(chan solana.LogNotification, 1024),
		logger:    logger,
		started:   time.Now(),
	}

	// Subscribe to each monitored wallet
	for _, addr := range monitoredRegistry.List() {
		if err := bot.subscribeWallet(ctx, addr); err != nil {
			logger.Fatalf("Failed to subscribe to %s: %v", addr, err)
		}
	}

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	// Start HTTP server
	go bot.startHTTPServer(ctx, *httpAddr)

	// Run monitor filter over the merged notification stream
	go filter.Run(ctx, bot.notifCh)

	// Run the trading service
	err = service.Run(ctx)
	done <- err
	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Bot error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// subscribeWallet opens a per-wallet log subscription and forwards its
// notifications into the merged stream the filter consumes.
func (b *Bot) subscribeWallet(ctx context.Context, address string) error {
	ch, err := b.ws.SubscribeLogs(ctx, solana.LogsFilter{Mentions: []string{address}})
	if err != nil {
		return err
	}
	b.forwardWG.Add(1)
	go func() {
		defer b.forwardWG.Done()
		for notif := range ch {
			select {
			case b.notifCh <- notif:
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// ensureWalletRecord creates an active wallet record if one does not exist.
func ensureWalletRecord(ctx context.Context, store storage.WalletStore, address string) error {
	now := time.Now().UnixMilli()
	err := store.Insert(ctx, &domain.WalletRecord{
		Address:   address,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if errors.Is(err, storage.ErrDuplicateKey) {
		return nil
	}
	return err
}

// splitList splits a comma-separated flag value, dropping empty entries.
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// createStores creates the wallet, trade record, and attempt log stores.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (storage.WalletStore, storage.TradeRecordStore, storage.AttemptLogStore, func(), error) {
	if useMemory {
		return memory.NewWalletStore(), memory.NewTradeRecordStore(), memory.NewAttemptLogStore(), func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	// ClickHouse
	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}
	return pgstore.NewWalletStore(pool), pgstore.NewTradeRecordStore(pool), chstore.NewAttemptLogStore(chConn), cleanup, nil
}

// startHTTPServer starts the management and metrics HTTP server.
func (b *Bot) startHTTPServer(ctx context.Context, addr string) {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	// Management
	mux.HandleFunc("/status", b.handleStatus)
	mux.HandleFunc("/wallets", func(w http.ResponseWriter, r *http.Request) {
		b.handleWallets(ctx, w, r)
	})
	mux.HandleFunc("/wallets/", func(w http.ResponseWriter, r *http.Request) {
		b.handleWalletByAddress(w, r)
	})
	mux.HandleFunc("/bot/start", b.handleBotToggle(true))
	mux.HandleFunc("/bot/stop", b.handleBotToggle(false))

	b.logger.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		b.logger.Printf("HTTP server error: %v", err)
	}
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status         string   `json:"status"`
	Active         bool     `json:"active"`
	Uptime         string   `json:"uptime"`
	MonitoredCount int      `json:"monitored_count"`
	Monitored      []string `json:"monitored"`
}

// handleStatus returns bot status as JSON.
func (b *Bot) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Status:         "running",
		Active:         b.service.Active(),
		Uptime:         time.Since(b.started).String(),
		MonitoredCount: b.monitored.Len(),
		Monitored:      b.monitored.List(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

type addWalletRequest struct {
	Address string `json:"address"`
}

// handleWallets lists monitored wallets (GET) or adds one (POST).
// A newly added wallet gets its own log subscription immediately.
func (b *Bot) handleWallets(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]interface{}{"wallets": b.monitored.List()})
	case http.MethodPost:
		var req addWalletRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if err := b.monitored.Add(req.Address); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		if err := b.subscribeWallet(ctx, req.Address); err != nil {
			b.monitored.Remove(req.Address)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		b.logger.Printf("Now monitoring wallet %s", req.Address)
		writeJSON(w, http.StatusCreated, map[string]string{"address": req.Address})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleWalletByAddress removes a monitored wallet. The log subscription
// stays open; the filter discards notifications for removed wallets.
func (b *Bot) handleWalletByAddress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	address := strings.TrimPrefix(r.URL.Path, "/wallets/")
	if address == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "address is required"})
		return
	}
	if !b.monitored.Remove(address) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "wallet not monitored"})
		return
	}
	b.logger.Printf("Stopped monitoring wallet %s", address)
	w.WriteHeader(http.StatusNoContent)
}

// handleBotToggle enables or pauses copy trading.
func (b *Bot) handleBotToggle(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		b.service.SetActive(active)
		writeJSON(w, http.StatusOK, map[string]bool{"active": b.service.Active()})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
