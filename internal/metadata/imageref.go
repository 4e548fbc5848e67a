package metadata

import (
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// ValidateImageReference checks that an image reference is URL- or
// data-URI-shaped. ipfs:// references with a v0 content identifier get their
// base58 payload verified; other schemes are accepted on shape alone.
func ValidateImageReference(ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return fmt.Errorf("image reference is empty")
	}

	switch {
	case strings.HasPrefix(ref, "data:"):
		return nil
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"), strings.HasPrefix(ref, "ar://"):
		return nil
	case strings.HasPrefix(ref, "ipfs://"):
		return validateCID(strings.TrimPrefix(ref, "ipfs://"))
	}

	return fmt.Errorf("image reference %q is not URL- or data-URI-shaped", firstN(ref, 32))
}

// validateCID verifies an IPFS content identifier. v0 CIDs are base58-encoded
// multihashes of exactly 34 bytes; v1 and path-suffixed references are
// accepted on shape alone.
func validateCID(cid string) error {
	if cid == "" {
		return fmt.Errorf("ipfs reference has no content identifier")
	}

	// Strip any path component after the CID.
	if i := strings.IndexByte(cid, '/'); i >= 0 {
		cid = cid[:i]
	}

	if !strings.HasPrefix(cid, "Qm") {
		return nil
	}

	decoded, err := base58.Decode(cid)
	if err != nil {
		return fmt.Errorf("malformed ipfs content identifier: %w", err)
	}
	if len(decoded) != 34 {
		return fmt.Errorf("ipfs content identifier has wrong length %d", len(decoded))
	}
	return nil
}
