package ethereum

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer holds a single secp256k1 signing credential and produces
// replay-protected raw transactions.
type Signer struct {
	key *ecdsa.PrivateKey
}

// NewSigner loads a signer from a hex-encoded private key, with or without
// a 0x prefix.
func NewSigner(hexKey string) (*Signer, error) {
	hexKey = strings.TrimSpace(strings.TrimPrefix(hexKey, "0x"))
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("parse signing credential: %w", err)
	}
	return &Signer{key: key}, nil
}

// Address returns the account address derived from the credential.
func (s *Signer) Address() string {
	return crypto.PubkeyToAddress(s.key.PublicKey).Hex()
}

// SignedTransaction builds, signs, and serializes a contract-call transaction.
func (s *Signer) SignedTransaction(chainID *big.Int, nonce uint64, to common.Address, gas uint64, gasPrice *big.Int, data []byte) ([]byte, error) {
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    big.NewInt(0),
		Gas:      gas,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), s.key)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}

	raw, err := signed.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("serialize transaction: %w", err)
	}
	return raw, nil
}
