// Package main runs the game-item token service: the HTTP lifecycle API,
// persisted configuration, audit trails, and Prometheus metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gameitem-nft/internal/audit"
	"gameitem-nft/internal/config"
	"gameitem-nft/internal/domain"
	"gameitem-nft/internal/ethereum"
	"gameitem-nft/internal/httpapi"
	"gameitem-nft/internal/observability"
	"gameitem-nft/internal/storage"
	chstore "gameitem-nft/internal/storage/clickhouse"
	"gameitem-nft/internal/storage/memory"
	"gameitem-nft/internal/storage/migrations"
	pgstore "gameitem-nft/internal/storage/postgres"
	"gameitem-nft/internal/token"
)

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	listenAddr := flag.String("listen-addr", envOr("LISTEN_ADDR", ":8080"), "HTTP API listen address")
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("ETH_RPC_ENDPOINT"), "Ethereum RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("ETH_WS_ENDPOINT"), "Ethereum WebSocket endpoint (optional, wakes confirmation polling)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (optional, operation analytics)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	contractAddress := flag.String("contract-address", os.Getenv("CONTRACT_ADDRESS"), "Default contract address (overrides the persisted record)")
	signingKeyFile := flag.String("signing-key-file", os.Getenv("SIGNING_KEY_FILE"), "Path to the hex-encoded signing key file")
	authToken := flag.String("auth-token", os.Getenv("API_AUTH_TOKEN"), "Bearer token required on /api routes (empty disables auth)")
	uploadDir := flag.String("upload-dir", envOr("UPLOAD_DIR", "uploads"), "Directory for uploaded images")
	auditCSV := flag.String("audit-csv", os.Getenv("AUDIT_CSV"), "CSV audit trail file (optional)")
	pollInterval := flag.Duration("poll-interval", 5*time.Second, "Receipt poll interval")
	confirmAttempts := flag.Int("confirm-attempts", 60, "Receipt poll attempts before timing out")
	supplyFallback := flag.Bool("supply-fallback", false, "Derive unknown token identifiers from total supply (unsafe under concurrent mints)")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if *rpcEndpoint == "" {
		logger.Printf("--rpc-endpoint not set, using %s", config.DefaultEndpoint)
		*rpcEndpoint = config.DefaultEndpoint
	}
	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics("")

	// Stores
	configStore, auditStore, eventStore, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Audit trails
	var trails audit.MultiRecorder
	trails = append(trails, audit.NewStoreRecorder(auditStore))
	if eventStore != nil {
		trails = append(trails, audit.NewEventRecorder(eventStore))
	}
	if *auditCSV != "" {
		csvTrail := audit.NewCSVTrail(*auditCSV)
		defer csvTrail.Close()
		trails = append(trails, csvTrail)
	}

	// Configuration resolution
	var credentials config.CredentialSource
	if *signingKeyFile != "" {
		credentials = config.FileCredential{Path: *signingKeyFile}
	}
	resolver := config.NewResolver(configStore, credentials, *rpcEndpoint)

	// Optional new-head wakeups for confirmation polling
	var heads <-chan struct{}
	if *wsEndpoint != "" {
		sub, err := ethereum.NewHeadSubscriber(ctx, *wsEndpoint, nil)
		if err != nil {
			logger.Printf("Head subscription unavailable, falling back to timer-only polling: %v", err)
		} else {
			defer sub.Close()
			heads = sub.Heads()
		}
	}

	service := token.NewService(token.Options{
		Resolver:        resolver,
		Logger:          logger,
		Metrics:         metrics,
		Audit:           trails,
		Heads:           heads,
		PollInterval:    *pollInterval,
		ConfirmAttempts: *confirmAttempts,
		SupplyFallback:  *supplyFallback,
	})

	// Seed the persisted defaults from the flag when the store is empty.
	if *contractAddress != "" {
		seedContractConfig(ctx, configStore, *contractAddress, logger)
	}

	api := httpapi.NewServer(httpapi.Options{
		Service:     service,
		ConfigStore: configStore,
		UploadDir:   *uploadDir,
		AuthToken:   *authToken,
		Logger:      logger,
		Metrics:     metrics,
	})

	// Metrics server
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	httpServer := &http.Server{
		Addr:    *listenAddr,
		Handler: api.Router(),
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Shutdown error: %v", err)
		}
	}()

	logger.Printf("Starting API server on %s (rpc=%s)", *listenAddr, *rpcEndpoint)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores wires the configured storage backends. The event store is nil
// when no ClickHouse DSN is supplied.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool, logger *log.Logger) (storage.ConfigStore, storage.AuditStore, storage.OperationEventStore, func(), error) {
	if useMemory {
		return memory.NewConfigStore(), memory.NewAuditStore(), memory.NewOperationEventStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, nil, err
	}

	var (
		eventStore storage.OperationEventStore
		chConn     *chstore.Conn
	)
	if clickhouseDSN != "" {
		chConn, err = migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, nil, nil, nil, err
		}
		eventStore = chstore.NewOperationEventStore(chConn)
	} else {
		logger.Println("No ClickHouse DSN, operation analytics disabled")
	}

	cleanup := func() {
		pool.Close()
		if chConn != nil {
			chConn.Close()
		}
	}
	return pgstore.NewConfigStore(pool), pgstore.NewAuditStore(pool), eventStore, cleanup, nil
}

// seedContractConfig writes the flag-supplied contract address when no
// persisted record exists yet. An existing record wins over the flag.
func seedContractConfig(ctx context.Context, store storage.ConfigStore, address string, logger *log.Logger) {
	_, err := store.Get(ctx)
	if err == nil {
		return
	}
	if !errors.Is(err, storage.ErrNotFound) {
		logger.Printf("Failed to read persisted config: %v", err)
		return
	}

	err = store.Put(ctx, &domain.ContractConfig{
		ContractAddress: address,
		UpdatedAt:       time.Now().UnixMilli(),
	})
	if err != nil {
		logger.Printf("Failed to seed contract config: %v", err)
		return
	}
	logger.Printf("Seeded contract config: %s", address)
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

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
