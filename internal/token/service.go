// Package token implements the token-lifecycle client: minting game items on
// the ledger, discovering what an address holds, and verifying ownership of a
// single token. Every call resolves its own configuration and opens its own
// ledger connection, so concurrent requests are fully isolated.
package token

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"time"

	"gameitem-nft/internal/audit"
	"gameitem-nft/internal/config"
	"gameitem-nft/internal/domain"
	"gameitem-nft/internal/ethereum"
	"gameitem-nft/internal/observability"
)

// Default confirmation-polling behavior: a multi-minute ceiling with a fixed
// per-poll delay.
const (
	DefaultPollInterval    = 5 * time.Second
	DefaultConfirmAttempts = 60
)

// DefaultEntryPoints is the ordered list of candidate mint entry points. The
// deployed contract's write surface is not known at compile time, so each is
// probed in order and the first accepted submission wins.
var DefaultEntryPoints = []string{"mintNFT", "mint", "safeMint"}

// Audit operation names.
const (
	opMint        = "mint"
	opGetToken    = "get_token"
	opListOwned   = "list_owned"
	opVerifyOwner = "verify_owner"
)

// DialFunc opens a ledger connection for one call using resolved settings.
// forWrite requests a connection capable of signing.
type DialFunc func(settings *config.Settings, forWrite bool) (Ledger, error)

// Options configures the Service.
type Options struct {
	// Resolver supplies per-call configuration. Required.
	Resolver *config.Resolver

	// Dial opens the per-call ledger connection. Defaults to a JSON-RPC
	// gateway with the item contract bound at the resolved address.
	Dial DialFunc

	// Logger receives operational log lines. Defaults to the standard logger.
	Logger *log.Logger

	// Metrics is optional.
	Metrics *observability.Metrics

	// Audit is the optional audit trail.
	Audit audit.Recorder

	// Heads optionally wakes confirmation polling when a new block arrives.
	Heads <-chan struct{}

	// PollInterval and ConfirmAttempts bound confirmation polling.
	PollInterval    time.Duration
	ConfirmAttempts int

	// EntryPoints overrides the candidate mint entry points.
	EntryPoints []string

	// SupplyFallback enables deriving an unextractable token identifier
	// from the post-mint total supply. Off by default: the heuristic
	// breaks under concurrent mints, and an unknown identifier is a valid
	// result.
	SupplyFallback bool
}

// Service is the token-lifecycle client.
type Service struct {
	resolver        *config.Resolver
	dial            DialFunc
	logger          *log.Logger
	metrics         *observability.Metrics
	audit           audit.Recorder
	heads           <-chan struct{}
	pollInterval    time.Duration
	confirmAttempts int
	entryPoints     []string
	supplyFallback  bool
}

// NewService creates a token-lifecycle client.
func NewService(opts Options) *Service {
	s := &Service{
		resolver:        opts.Resolver,
		dial:            opts.Dial,
		logger:          opts.Logger,
		metrics:         opts.Metrics,
		audit:           opts.Audit,
		heads:           opts.Heads,
		pollInterval:    opts.PollInterval,
		confirmAttempts: opts.ConfirmAttempts,
		entryPoints:     opts.EntryPoints,
		supplyFallback:  opts.SupplyFallback,
	}
	if s.dial == nil {
		s.dial = dialContract
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.pollInterval <= 0 {
		s.pollInterval = DefaultPollInterval
	}
	if s.confirmAttempts <= 0 {
		s.confirmAttempts = DefaultConfirmAttempts
	}
	if len(s.entryPoints) == 0 {
		s.entryPoints = DefaultEntryPoints
	}
	return s
}

// dialContract is the production DialFunc: a JSON-RPC HTTP gateway with the
// item contract bound at the resolved address.
func dialContract(settings *config.Settings, forWrite bool) (Ledger, error) {
	gateway := ethereum.NewHTTPClient(settings.EndpointURL)

	var signer *ethereum.Signer
	if forWrite {
		var err error
		signer, err = ethereum.NewSigner(settings.SigningKey)
		if err != nil {
			return nil, err
		}
	}

	return ethereum.NewItemContract(gateway, settings.ContractAddress, signer)
}

// connect resolves configuration and opens the per-call ledger connection.
func (s *Service) connect(ctx context.Context, ov *config.Override, forWrite bool) (Ledger, *config.Settings, error) {
	settings, err := s.resolver.Resolve(ctx, ov, forWrite)
	if err != nil {
		return nil, nil, err
	}
	ledger, err := s.dial(settings, forWrite)
	if err != nil {
		return nil, nil, fmt.Errorf("open ledger connection: %w", err)
	}
	return ledger, settings, nil
}

// record appends an audit record and observes operation metrics. Audit
// failures are logged, never propagated.
func (s *Service) record(ctx context.Context, operation, actor string, tokenID *big.Int, txHash string, start time.Time, opErr error) {
	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.OperationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	}
	if s.audit == nil {
		return
	}

	outcome := domain.OutcomeOK
	detail := ""
	if opErr != nil {
		outcome = domain.OutcomeError
		detail = opErr.Error()
	}
	id := ""
	if tokenID != nil {
		id = tokenID.String()
	}

	rec := audit.NewRecord(operation, actor, id, txHash, outcome, detail, elapsed)
	if err := s.audit.Record(ctx, rec); err != nil {
		s.logger.Printf("audit record failed for %s: %v", operation, err)
	}
}
