package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ItemContract binds the game-item contract at a fixed address to a Gateway.
// Reads go through eth_call; writes are probed with eth_estimateGas, signed
// locally, and submitted as raw transactions.
type ItemContract struct {
	gateway Gateway
	address common.Address
	abi     abi.ABI
	signer  *Signer // nil for read-only use
}

// NewItemContract creates a contract binding. signer may be nil when only
// read operations are needed.
func NewItemContract(gateway Gateway, address string, signer *Signer) (*ItemContract, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("malformed contract address %q", address)
	}
	parsed, err := abi.JSON(strings.NewReader(itemTokenABI))
	if err != nil {
		return nil, fmt.Errorf("parse contract abi: %w", err)
	}
	return &ItemContract{
		gateway: gateway,
		address: common.HexToAddress(address),
		abi:     parsed,
		signer:  signer,
	}, nil
}

// Address returns the bound contract address.
func (c *ItemContract) Address() string {
	return c.address.Hex()
}

// callUnpack packs a method call, executes it, and unpacks the single result.
func (c *ItemContract) callUnpack(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	out, err := c.gateway.CallContract(ctx, c.address.Hex(), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	values, err := c.abi.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}

// OwnerOf returns the current owner address of a token.
func (c *ItemContract) OwnerOf(ctx context.Context, tokenID *big.Int) (string, error) {
	values, err := c.callUnpack(ctx, "ownerOf", tokenID)
	if err != nil {
		return "", err
	}
	owner, ok := values[0].(common.Address)
	if !ok {
		return "", fmt.Errorf("ownerOf: unexpected result type %T", values[0])
	}
	return owner.Hex(), nil
}

// BalanceOf returns the number of tokens held by an address.
func (c *ItemContract) BalanceOf(ctx context.Context, owner string) (*big.Int, error) {
	values, err := c.callUnpack(ctx, "balanceOf", common.HexToAddress(owner))
	if err != nil {
		return nil, err
	}
	return toBigInt("balanceOf", values[0])
}

// TokenOfOwnerByIndex returns the owner's token at the given index.
// Only supported by contracts implementing the enumerable extension.
func (c *ItemContract) TokenOfOwnerByIndex(ctx context.Context, owner string, index *big.Int) (*big.Int, error) {
	values, err := c.callUnpack(ctx, "tokenOfOwnerByIndex", common.HexToAddress(owner), index)
	if err != nil {
		return nil, err
	}
	return toBigInt("tokenOfOwnerByIndex", values[0])
}

// TokenURI returns the raw metadata blob reference stored on a token.
func (c *ItemContract) TokenURI(ctx context.Context, tokenID *big.Int) (string, error) {
	values, err := c.callUnpack(ctx, "tokenURI", tokenID)
	if err != nil {
		return "", err
	}
	uri, ok := values[0].(string)
	if !ok {
		return "", fmt.Errorf("tokenURI: unexpected result type %T", values[0])
	}
	return uri, nil
}

// TotalSupply returns the total issued token count.
func (c *ItemContract) TotalSupply(ctx context.Context) (*big.Int, error) {
	values, err := c.callUnpack(ctx, "totalSupply")
	if err != nil {
		return nil, err
	}
	return toBigInt("totalSupply", values[0])
}

// SubmitMint signs and submits a mint write through the named entry point.
// The entry point is probed with a gas estimate first: a revert there means
// this candidate is not usable on the deployed contract and the error is
// returned without submitting anything.
func (c *ItemContract) SubmitMint(ctx context.Context, entryPoint, to, tokenURI string) (string, error) {
	if c.signer == nil {
		return "", fmt.Errorf("submit %s: no signing credential bound", entryPoint)
	}

	data, err := c.abi.Pack(entryPoint, common.HexToAddress(to), tokenURI)
	if err != nil {
		return "", fmt.Errorf("pack %s: %w", entryPoint, err)
	}

	from := c.signer.Address()
	gas, err := c.gateway.EstimateGas(ctx, from, c.address.Hex(), data)
	if err != nil {
		return "", fmt.Errorf("probe %s: %w", entryPoint, err)
	}

	nonce, err := c.gateway.PendingNonce(ctx, from)
	if err != nil {
		return "", fmt.Errorf("nonce for %s: %w", from, err)
	}
	gasPrice, err := c.gateway.GasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("gas price: %w", err)
	}
	chainID, err := c.gateway.ChainID(ctx)
	if err != nil {
		return "", fmt.Errorf("chain id: %w", err)
	}

	raw, err := c.signer.SignedTransaction(chainID, nonce, c.address, gas, gasPrice, data)
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", entryPoint, err)
	}

	txHash, err := c.gateway.SendRawTransaction(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("submit %s: %w", entryPoint, err)
	}
	return txHash, nil
}

// TransactionReceipt retrieves the confirmation record for a submitted write.
// Returns (nil, nil) while the transaction is not yet confirmed.
func (c *ItemContract) TransactionReceipt(ctx context.Context, txHash string) (*Receipt, error) {
	return c.gateway.TransactionReceipt(ctx, txHash)
}

// MintedTokenID extracts the assigned token identifier from a confirmation's
// emitted events. It looks for a transfer event from the zero address emitted
// by the bound contract. Returns nil when no such event is present or its
// shape is not parseable; the caller decides what an unknown identifier means.
func (c *ItemContract) MintedTokenID(receipt *Receipt) *big.Int {
	if receipt == nil {
		return nil
	}
	transferTopic := c.abi.Events["Transfer"].ID.Hex()

	for _, l := range receipt.Logs {
		if !strings.EqualFold(l.Address, c.address.Hex()) {
			continue
		}
		if len(l.Topics) != 4 || !strings.EqualFold(l.Topics[0], transferTopic) {
			continue
		}
		// topics: [eventID, from, to, tokenId]; only a zero from-address is
		// a mint, so a same-tx non-mint transfer cannot match.
		if !isZeroTopic(l.Topics[1]) {
			continue
		}
		id, ok := new(big.Int).SetString(strings.TrimPrefix(l.Topics[3], "0x"), 16)
		if !ok {
			continue
		}
		return id
	}
	return nil
}

// isZeroTopic reports whether a 32-byte log topic is all zeros.
func isZeroTopic(topic string) bool {
	n, ok := new(big.Int).SetString(strings.TrimPrefix(topic, "0x"), 16)
	return ok && n.Sign() == 0
}

func toBigInt(method string, v interface{}) (*big.Int, error) {
	n, ok := v.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected result type %T", method, v)
	}
	return n, nil
}
