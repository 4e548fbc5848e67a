package token

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"gameitem-nft/internal/config"
	"gameitem-nft/internal/domain"
	"gameitem-nft/internal/ethereum"
	"gameitem-nft/internal/metadata"
)

// Mint creates a new item token for the destination address. The flow is
// validate, submit through the first usable entry point, poll for a receipt,
// then extract the assigned identifier from the confirmation's events. An
// identifier that cannot be extracted is returned as nil; the write itself
// succeeded.
func (s *Service) Mint(ctx context.Context, req *domain.MintRequest, ov *config.Override) (result *domain.MintResult, err error) {
	start := time.Now()
	destination := ""
	if req != nil {
		destination = req.Destination
	}
	defer func() {
		var tokenID *big.Int
		txHash := ""
		if result != nil {
			tokenID = result.TokenID
			txHash = result.TxHash
		}
		s.record(ctx, opMint, destination, tokenID, txHash, start, err)
		if s.metrics != nil {
			outcome := domain.OutcomeOK
			if err != nil {
				outcome = domain.OutcomeError
			}
			s.metrics.MintsTotal.WithLabelValues(outcome).Inc()
		}
	}()

	// Validating: no ledger interaction on malformed input.
	if err := validateMintRequest(req); err != nil {
		return nil, err
	}

	ledger, _, err := s.connect(ctx, ov, true)
	if err != nil {
		return nil, err
	}

	blob, err := metadata.Encode(req.ImageReference, req.Traits)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	// Submitting: probe candidate entry points in order; the first whose
	// submission is accepted wins.
	txHash, entryPoint, err := s.submit(ctx, ledger, req.Destination, blob)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("mint submitted via %s: tx=%s dest=%s", entryPoint, txHash, req.Destination)

	// AwaitingConfirmation.
	receipt, err := s.awaitReceipt(ctx, ledger, txHash)
	if err != nil {
		return nil, err
	}
	if receipt.Status == 0 {
		return nil, fmt.Errorf("%w: tx=%s", ErrTransactionReverted, txHash)
	}

	// Resolved: extract the assigned identifier.
	tokenID := s.resolveTokenID(ctx, ledger, receipt)
	if tokenID == nil {
		s.logger.Printf("mint confirmed but token id unresolved: tx=%s", txHash)
		if s.metrics != nil {
			s.metrics.TokenIDUnresolved.Inc()
		}
	}

	return &domain.MintResult{
		TxHash:         receipt.TxHash,
		BlockNumber:    receipt.BlockNumber,
		TokenID:        tokenID,
		Destination:    req.Destination,
		ImageReference: req.ImageReference,
		Traits:         req.Traits,
		EntryPoint:     entryPoint,
	}, nil
}

// validateMintRequest checks caller input before any ledger interaction.
func validateMintRequest(req *domain.MintRequest) error {
	if req == nil {
		return fmt.Errorf("%w: empty request", ErrValidation)
	}
	if !common.IsHexAddress(req.Destination) {
		return fmt.Errorf("%w: malformed destination address %q", ErrValidation, req.Destination)
	}
	if err := metadata.ValidateImageReference(req.ImageReference); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if req.Traits == nil {
		return fmt.Errorf("%w: traits must be a structured object", ErrValidation)
	}
	return nil
}

// submit tries each candidate entry point in order and returns the pending
// transaction hash of the first accepted submission. If every candidate
// rejects, the last underlying cause is preserved.
func (s *Service) submit(ctx context.Context, ledger Ledger, destination, blob string) (string, string, error) {
	var lastErr error
	for i, entryPoint := range s.entryPoints {
		txHash, err := ledger.SubmitMint(ctx, entryPoint, destination, blob)
		if err == nil {
			return txHash, entryPoint, nil
		}
		lastErr = err
		s.logger.Printf("mint entry point %s rejected: %v", entryPoint, err)
		if i == 0 && s.metrics != nil {
			s.metrics.EntryPointFallbacks.Inc()
		}
	}
	return "", "", fmt.Errorf("%w: tried %v: %w", ErrMintEntryPointNotFound, s.entryPoints, lastErr)
}

// awaitReceipt polls for the confirmation record at a fixed interval until
// the attempt limit is exhausted. A missing receipt means not-yet-confirmed;
// read errors during polling are logged and tolerated. A head notification,
// when wired, wakes the poll early.
func (s *Service) awaitReceipt(ctx context.Context, ledger Ledger, txHash string) (*ethereum.Receipt, error) {
	for attempt := 1; attempt <= s.confirmAttempts; attempt++ {
		receipt, err := ledger.TransactionReceipt(ctx, txHash)
		if err != nil {
			s.logger.Printf("receipt poll %d/%d failed: %v", attempt, s.confirmAttempts, err)
		} else if receipt != nil {
			if s.metrics != nil {
				s.metrics.ConfirmationAttempts.Observe(float64(attempt))
			}
			return receipt, nil
		}
		if attempt == s.confirmAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.pollInterval):
		case <-s.heads: // nil channel blocks forever when not wired
		}
	}
	return nil, fmt.Errorf("%w: tx=%s attempts=%d", ErrConfirmationTimeout, txHash, s.confirmAttempts)
}

// resolveTokenID extracts the assigned identifier from the confirmation's
// transfer event. When the event is absent or unparseable the identifier is
// unknown, which is a valid result; the optional supply fallback derives it
// from the issued count instead, accepting that a concurrent mint can make
// the guess wrong.
func (s *Service) resolveTokenID(ctx context.Context, ledger Ledger, receipt *ethereum.Receipt) *big.Int {
	if id := ledger.MintedTokenID(receipt); id != nil {
		return id
	}
	if !s.supplyFallback {
		return nil
	}

	supply, err := ledger.TotalSupply(ctx)
	if err != nil {
		s.logger.Printf("supply fallback failed: %v", err)
		return nil
	}
	if supply.Sign() <= 0 {
		return nil
	}
	return new(big.Int).Sub(supply, big.NewInt(1))
}
