package ethereum

import (
	"context"
	"errors"
	"math/big"
)

// Gateway errors. Reads either fail to reach the ledger at all
// (ErrUnavailable) or reach it and get rejected by the contract
// (ErrCallReverted). Callers classify with errors.Is.
var (
	// ErrUnavailable is returned when the RPC endpoint could not be reached
	// or kept failing at the transport level after all retries.
	ErrUnavailable = errors.New("ledger unavailable")

	// ErrCallReverted is returned when a call executed on the ledger but the
	// contract rejected it (e.g. owner query for a nonexistent token).
	ErrCallReverted = errors.New("ledger call reverted")
)

// Gateway is the low-level read/write surface of a single RPC endpoint.
// Writes return a pending transaction hash immediately; confirmation is a
// separate polling protocol driven by the caller.
type Gateway interface {
	// CallContract executes a read-only contract call against latest state.
	CallContract(ctx context.Context, to string, data []byte) ([]byte, error)

	// EstimateGas asks the ledger to execute the call speculatively and
	// report its gas cost. A revert here means the entry point rejected
	// the submission.
	EstimateGas(ctx context.Context, from, to string, data []byte) (uint64, error)

	// SendRawTransaction submits a signed transaction and returns its hash.
	SendRawTransaction(ctx context.Context, raw []byte) (string, error)

	// TransactionReceipt retrieves the receipt for a transaction hash.
	// Returns (nil, nil) while the transaction is not yet confirmed.
	TransactionReceipt(ctx context.Context, txHash string) (*Receipt, error)

	// PendingNonce retrieves the next nonce for an address, including
	// pending transactions.
	PendingNonce(ctx context.Context, address string) (uint64, error)

	// GasPrice retrieves the current gas price.
	GasPrice(ctx context.Context) (*big.Int, error)

	// ChainID retrieves the chain identifier used for replay-protected
	// transaction signing.
	ChainID(ctx context.Context) (*big.Int, error)
}

// Receipt is the ledger's confirmation record for a submitted write.
type Receipt struct {
	TxHash      string
	BlockNumber uint64
	Status      uint64 // 1 = success, 0 = reverted
	Logs        []Log
}

// Log is one event emitted during transaction execution.
type Log struct {
	Address string
	Topics  []string
	Data    []byte
}
