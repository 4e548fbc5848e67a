package token

import (
	"context"
	"math/big"

	"gameitem-nft/internal/ethereum"
)

// Ledger is the contract surface the token client drives. Reads are
// stateless and side-effect-free; SubmitMint returns a pending transaction
// hash without waiting for finality.
type Ledger interface {
	// OwnerOf returns the current owner of a token. A reverted call means
	// the token does not exist or has been burned.
	OwnerOf(ctx context.Context, tokenID *big.Int) (string, error)

	// BalanceOf returns the number of tokens held by an address.
	BalanceOf(ctx context.Context, owner string) (*big.Int, error)

	// TokenOfOwnerByIndex returns the owner's token at the given index.
	// Reverts on contracts without the enumerable extension.
	TokenOfOwnerByIndex(ctx context.Context, owner string, index *big.Int) (*big.Int, error)

	// TokenURI returns the raw metadata blob stored on a token.
	TokenURI(ctx context.Context, tokenID *big.Int) (string, error)

	// TotalSupply returns the total issued token count.
	TotalSupply(ctx context.Context) (*big.Int, error)

	// SubmitMint submits a mint write through the named entry point and
	// returns the pending transaction hash. An error means this entry
	// point rejected the submission.
	SubmitMint(ctx context.Context, entryPoint, to, tokenURI string) (string, error)

	// TransactionReceipt retrieves the confirmation record for a pending
	// write. Returns (nil, nil) while not yet confirmed.
	TransactionReceipt(ctx context.Context, txHash string) (*ethereum.Receipt, error)

	// MintedTokenID extracts the assigned identifier from a confirmation's
	// emitted events, or nil when it cannot be determined.
	MintedTokenID(receipt *ethereum.Receipt) *big.Int
}
