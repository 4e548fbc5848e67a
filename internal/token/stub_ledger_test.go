package token

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"gameitem-nft/internal/config"
	"gameitem-nft/internal/ethereum"
)

// stubLedger is a scriptable in-memory ledger for exercising the lifecycle
// flows without a JSON-RPC endpoint.
type stubLedger struct {
	owners map[int64]string // token id -> owner; absent means burned/nonexistent
	uris   map[int64]string // token id -> metadata blob
	supply int64

	// indexed extension; indexErr fails tokenOfOwnerByIndex at that index.
	indexed    map[string][]int64
	indexErr   map[int64]error
	balanceErr error
	supplyErr  error

	// mint scripting
	acceptEntryPoints map[string]bool
	submitCalls       []string
	receiptAfter      int // polls before the receipt appears
	receipt           *ethereum.Receipt
	receiptPolls      int
	mintedID          *big.Int
}

func newStubLedger() *stubLedger {
	return &stubLedger{
		owners:            map[int64]string{},
		uris:              map[int64]string{},
		indexed:           map[string][]int64{},
		indexErr:          map[int64]error{},
		acceptEntryPoints: map[string]bool{},
	}
}

func (s *stubLedger) OwnerOf(_ context.Context, tokenID *big.Int) (string, error) {
	owner, ok := s.owners[tokenID.Int64()]
	if !ok {
		return "", fmt.Errorf("%w: execution reverted", ethereum.ErrCallReverted)
	}
	return owner, nil
}

func (s *stubLedger) BalanceOf(_ context.Context, owner string) (*big.Int, error) {
	if s.balanceErr != nil {
		return nil, s.balanceErr
	}
	return big.NewInt(int64(len(s.indexed[strings.ToLower(owner)]))), nil
}

func (s *stubLedger) TokenOfOwnerByIndex(_ context.Context, owner string, index *big.Int) (*big.Int, error) {
	i := index.Int64()
	if err, ok := s.indexErr[i]; ok {
		return nil, err
	}
	ids := s.indexed[strings.ToLower(owner)]
	if i >= int64(len(ids)) {
		return nil, fmt.Errorf("%w: index out of bounds", ethereum.ErrCallReverted)
	}
	return big.NewInt(ids[i]), nil
}

func (s *stubLedger) TokenURI(_ context.Context, tokenID *big.Int) (string, error) {
	uri, ok := s.uris[tokenID.Int64()]
	if !ok {
		return "", fmt.Errorf("%w: execution reverted", ethereum.ErrCallReverted)
	}
	return uri, nil
}

func (s *stubLedger) TotalSupply(_ context.Context) (*big.Int, error) {
	if s.supplyErr != nil {
		return nil, s.supplyErr
	}
	return big.NewInt(s.supply), nil
}

func (s *stubLedger) SubmitMint(_ context.Context, entryPoint, _, _ string) (string, error) {
	s.submitCalls = append(s.submitCalls, entryPoint)
	if !s.acceptEntryPoints[entryPoint] {
		return "", fmt.Errorf("%w: method not found", ethereum.ErrCallReverted)
	}
	return "0xdeadbeef", nil
}

func (s *stubLedger) TransactionReceipt(_ context.Context, txHash string) (*ethereum.Receipt, error) {
	s.receiptPolls++
	if s.receiptPolls <= s.receiptAfter {
		return nil, nil
	}
	if s.receipt == nil {
		return nil, nil
	}
	r := *s.receipt
	r.TxHash = txHash
	return &r, nil
}

func (s *stubLedger) MintedTokenID(_ *ethereum.Receipt) *big.Int {
	return s.mintedID
}

var _ Ledger = (*stubLedger)(nil)

// newStubService wires a service whose dial always hands back the stub.
func newStubService(ledger *stubLedger, opts Options) *Service {
	if opts.Resolver == nil {
		opts.Resolver = config.NewResolver(nil, nil, "")
	}
	opts.Dial = func(_ *config.Settings, _ bool) (Ledger, error) {
		return ledger, nil
	}
	if opts.PollInterval == 0 {
		opts.PollInterval = time.Millisecond
	}
	return NewService(opts)
}
