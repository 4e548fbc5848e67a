package domain

import "math/big"

// MintRequest is the caller input for creating a new item token.
// It lives only for the duration of the mint call.
type MintRequest struct {
	Destination    string         `json:"destination"`
	ImageReference string         `json:"imageReference"`
	Traits         map[string]any `json:"traits"`
}

// MintResult is returned after a confirmed mint.
// TokenID is nil when the assigned identifier could not be extracted from
// the confirmation; the write itself still succeeded.
type MintResult struct {
	TxHash         string         `json:"transactionId"`
	BlockNumber    uint64         `json:"blockNumber"`
	TokenID        *big.Int       `json:"tokenId"`
	Destination    string         `json:"destinationAddress"`
	ImageReference string         `json:"imageReference"`
	Traits         map[string]any `json:"traits"`
	EntryPoint     string         `json:"entryPoint,omitempty"`
}

// VerifyResult is the answer to a single-token ownership check.
type VerifyResult struct {
	IsOwner     bool   `json:"isOwner"`
	ActualOwner string `json:"actualOwner"`
}
