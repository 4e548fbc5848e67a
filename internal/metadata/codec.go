// Package metadata encodes item attributes into the canonical on-ledger
// representation and decodes the heterogeneous representations found on
// already-minted tokens back into structured form.
package metadata

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"gameitem-nft/internal/domain"
)

// DefaultName is used when the caller's traits carry no display name.
const DefaultName = "Game Item"

// dataURIPrefix is the canonical self-describing encoding produced by Encode.
const dataURIPrefix = "data:application/json"

// locatorSchemes are the recognized external-locator prefixes. Blobs with one
// of these prefixes are wrapped as a URI reference without being fetched.
var locatorSchemes = []string{"http://", "https://", "ipfs://", "ar://"}

// canonical is the wire shape of an encoded metadata blob.
type canonical struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Image       string         `json:"image"`
	Traits      map[string]any `json:"traits"`
}

// Encode wraps the caller's traits together with derived name, description,
// and image fields into the canonical blob stored on the ledger. Encoding is
// deterministic for identical input.
func Encode(imageRef string, traits map[string]any) (string, error) {
	name := DefaultName
	if n, ok := traits["name"].(string); ok && n != "" {
		name = n
	}

	payload, err := json.Marshal(canonical{
		Name:        name,
		Description: "",
		Image:       imageRef,
		Traits:      traits,
	})
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}

	return dataURIPrefix + ";base64," + base64.StdEncoding.EncodeToString(payload), nil
}

// Decode turns an arbitrary on-ledger blob into structured metadata. The
// representations are attempted in order: self-describing data URI, raw JSON
// literal, external locator, raw passthrough. Decode never fails for an
// unrecognized format; the last case always produces a value. A non-nil
// error with a nil value means the blob claimed a known format but could not
// be parsed; callers treat that as a diagnostic, not a failure.
func Decode(raw string) (*domain.Metadata, error) {
	trimmed := strings.TrimSpace(raw)

	if strings.HasPrefix(trimmed, dataURIPrefix) {
		return decodeDataURI(trimmed)
	}

	if strings.HasPrefix(trimmed, "{") {
		meta, err := parseJSON([]byte(trimmed))
		if err != nil {
			return nil, fmt.Errorf("parse metadata json: %w", err)
		}
		return meta, nil
	}

	for _, scheme := range locatorSchemes {
		if strings.HasPrefix(trimmed, scheme) {
			return &domain.Metadata{URI: trimmed}, nil
		}
	}

	return &domain.Metadata{Raw: raw}, nil
}

// decodeDataURI handles data:application/json blobs, base64-encoded or plain.
func decodeDataURI(blob string) (*domain.Metadata, error) {
	rest := strings.TrimPrefix(blob, dataURIPrefix)

	var payload []byte
	switch {
	case strings.HasPrefix(rest, ";base64,"):
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(rest, ";base64,"))
		if err != nil {
			return nil, fmt.Errorf("decode base64 payload: %w", err)
		}
		payload = decoded
	case strings.HasPrefix(rest, ","):
		payload = []byte(strings.TrimPrefix(rest, ","))
	default:
		return nil, fmt.Errorf("unsupported data uri encoding: %q", firstN(rest, 16))
	}

	meta, err := parseJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("parse data uri payload: %w", err)
	}
	return meta, nil
}

// parseJSON maps a structured payload into metadata, tolerating both the
// canonical shape and foreign shapes that carry only some of the fields.
func parseJSON(payload []byte) (*domain.Metadata, error) {
	var c canonical
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, err
	}
	return &domain.Metadata{
		Name:        c.Name,
		Description: c.Description,
		Image:       c.Image,
		Traits:      c.Traits,
	}, nil
}

func firstN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
