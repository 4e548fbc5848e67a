package token

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"gameitem-nft/internal/config"
	"gameitem-nft/internal/domain"
	"gameitem-nft/internal/ethereum"
	"gameitem-nft/internal/metadata"
)

// GetToken retrieves a single token's owner and decoded metadata. A token
// whose owner lookup reverts is treated as nonexistent or burned.
func (s *Service) GetToken(ctx context.Context, tokenID *big.Int, ov *config.Override) (view *domain.TokenView, err error) {
	start := time.Now()
	defer func() { s.record(ctx, opGetToken, "", tokenID, "", start, err) }()

	if tokenID == nil || tokenID.Sign() < 0 {
		return nil, fmt.Errorf("%w: token identifier must be a non-negative integer", ErrValidation)
	}

	ledger, _, err := s.connect(ctx, ov, false)
	if err != nil {
		return nil, err
	}

	owner, err := ledger.OwnerOf(ctx, tokenID)
	if err != nil {
		if errorsIsReverted(err) {
			return nil, fmt.Errorf("%w: id=%s", ErrTokenNotFound, tokenID)
		}
		return nil, err
	}

	view = s.buildView(ctx, ledger, tokenID, owner)
	if s.metrics != nil {
		s.metrics.TokensRetrieved.Inc()
	}
	return view, nil
}

// ListOwned discovers every token currently held by the address. The indexed
// strategy is preferred; any partial failure discards the partial result and
// falls back to a full scan rather than silently returning an incomplete set.
func (s *Service) ListOwned(ctx context.Context, address string, ov *config.Override) (views []*domain.TokenView, err error) {
	start := time.Now()
	defer func() { s.record(ctx, opListOwned, address, nil, "", start, err) }()

	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("%w: malformed address %q", ErrValidation, address)
	}

	ledger, _, err := s.connect(ctx, ov, false)
	if err != nil {
		return nil, err
	}

	ids, strategy, err := s.discover(ctx, ledger, address)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.OwnershipScans.WithLabelValues(strategy).Inc()
	}

	views = make([]*domain.TokenView, 0, len(ids))
	for _, id := range ids {
		views = append(views, s.buildView(ctx, ledger, id, address))
	}
	return views, nil
}

// VerifyOwnership reports whether the address currently holds the token.
// The actual holder is always returned so a mismatch is diagnosable.
func (s *Service) VerifyOwnership(ctx context.Context, tokenID *big.Int, address string, ov *config.Override) (result *domain.VerifyResult, err error) {
	start := time.Now()
	defer func() { s.record(ctx, opVerifyOwner, address, tokenID, "", start, err) }()

	if tokenID == nil || tokenID.Sign() < 0 {
		return nil, fmt.Errorf("%w: token identifier must be a non-negative integer", ErrValidation)
	}
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("%w: malformed address %q", ErrValidation, address)
	}

	ledger, _, err := s.connect(ctx, ov, false)
	if err != nil {
		return nil, err
	}

	owner, err := ledger.OwnerOf(ctx, tokenID)
	if err != nil {
		if errorsIsReverted(err) {
			return nil, fmt.Errorf("%w: id=%s", ErrTokenNotFound, tokenID)
		}
		return nil, err
	}

	return &domain.VerifyResult{
		IsOwner:     strings.EqualFold(owner, address),
		ActualOwner: owner,
	}, nil
}

// discover returns the identifiers held by address and the strategy that
// produced them.
func (s *Service) discover(ctx context.Context, ledger Ledger, address string) ([]*big.Int, string, error) {
	ids, err := s.discoverIndexed(ctx, ledger, address)
	if err == nil {
		return ids, "indexed", nil
	}
	s.logger.Printf("indexed discovery failed, falling back to scan: %v", err)

	ids, err = s.discoverScan(ctx, ledger, address)
	if err != nil {
		return nil, "", err
	}
	return ids, "scan", nil
}

// discoverIndexed walks the holder's per-index token list up to its balance.
// Contract-reported order is preserved. Any failure partway invalidates the
// whole attempt.
func (s *Service) discoverIndexed(ctx context.Context, ledger Ledger, address string) ([]*big.Int, error) {
	balance, err := ledger.BalanceOf(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("balance lookup: %w", err)
	}

	n := balance.Int64()
	ids := make([]*big.Int, 0, n)
	for i := int64(0); i < n; i++ {
		id, err := ledger.TokenOfOwnerByIndex(ctx, address, big.NewInt(i))
		if err != nil {
			return nil, fmt.Errorf("token at index %d: %w", i, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// discoverScan queries the owner of every identifier from 1 through the
// total issued count, collecting those held by address in ascending order.
// Identifiers whose owner lookup fails are burned or nonexistent and are
// skipped.
func (s *Service) discoverScan(ctx context.Context, ledger Ledger, address string) ([]*big.Int, error) {
	supply, err := ledger.TotalSupply(ctx)
	if err != nil {
		return nil, fmt.Errorf("supply lookup: %w", err)
	}

	var ids []*big.Int
	count := supply.Int64()
	for i := int64(1); i <= count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id := big.NewInt(i)
		owner, err := ledger.OwnerOf(ctx, id)
		if err != nil {
			continue
		}
		if strings.EqualFold(owner, address) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// buildView assembles the outward token shape. Metadata failure never drops
// the token; the view carries a nil metadata and the failure text instead.
func (s *Service) buildView(ctx context.Context, ledger Ledger, tokenID *big.Int, owner string) *domain.TokenView {
	view := &domain.TokenView{TokenID: tokenID, Owner: owner}

	uri, err := ledger.TokenURI(ctx, tokenID)
	if err != nil {
		view.MetadataError = fmt.Sprintf("metadata uri lookup: %v", err)
		if s.metrics != nil {
			s.metrics.MetadataDecodeFailures.Inc()
		}
		return view
	}

	md, err := metadata.Decode(uri)
	if err != nil {
		view.MetadataError = fmt.Sprintf("metadata decode: %v", err)
		if s.metrics != nil {
			s.metrics.MetadataDecodeFailures.Inc()
		}
		return view
	}

	view.Metadata = md
	view.Flatten()
	return view
}

func errorsIsReverted(err error) bool {
	return errors.Is(err, ethereum.ErrCallReverted)
}
