package domain

import "math/big"

// Metadata is the structured form of an on-ledger metadata blob.
// Exactly one shape is populated depending on how the blob decoded:
// parsed fields (Name/Description/Image/Traits), an external locator (URI),
// or an unrecognized payload carried verbatim (Raw).
type Metadata struct {
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Image       string         `json:"image,omitempty"`
	Traits      map[string]any `json:"traits,omitempty"`
	URI         string         `json:"uri,omitempty"`
	Raw         string         `json:"raw,omitempty"`
}

// TokenView is the client-facing projection of a token at read time.
// Metadata is nil when the on-ledger blob was attempted but unparseable;
// MetadataError carries the decode diagnostic in that case. The name,
// description, image and traits fields are flattened from Metadata for
// callers that do not want to inspect the nested blob.
type TokenView struct {
	TokenID       *big.Int       `json:"tokenId"`
	Owner         string         `json:"owner,omitempty"`
	Metadata      *Metadata      `json:"metadata"`
	Name          string         `json:"name,omitempty"`
	Description   string         `json:"description,omitempty"`
	Image         string         `json:"image,omitempty"`
	Traits        map[string]any `json:"traits,omitempty"`
	MetadataError string         `json:"metadataError,omitempty"`
}

// Flatten copies the decoded metadata fields into the top-level view fields.
func (v *TokenView) Flatten() {
	if v.Metadata == nil {
		return
	}
	v.Name = v.Metadata.Name
	v.Description = v.Metadata.Description
	v.Image = v.Metadata.Image
	v.Traits = v.Metadata.Traits
}
