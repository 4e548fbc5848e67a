// Package config resolves per-call connection parameters: ledger endpoint,
// contract identity, and signing credential. Resolution happens once per
// call with explicit precedence (override, then persisted defaults, then
// built-in default) so concurrent requests can substitute their own
// configuration without cross-call interference.
package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"gameitem-nft/internal/domain"
	"gameitem-nft/internal/storage"
)

// DefaultEndpoint is the built-in ledger endpoint used when neither the
// override nor the persisted defaults supply one.
const DefaultEndpoint = "http://127.0.0.1:8545"

// ErrConfiguration is returned when a required field is absent from both the
// override and the persisted defaults.
var ErrConfiguration = errors.New("missing required configuration")

// Override carries call-supplied configuration. Empty fields are unset and
// fall through to the persisted defaults.
type Override struct {
	ContractAddress string `json:"contractAddress,omitempty"`
	EndpointURL     string `json:"endpointUrl,omitempty"`
	SigningKey      string `json:"signingKey,omitempty"`
}

// Settings is the fully resolved configuration for one call.
type Settings struct {
	ContractAddress string
	OwnerAddress    string
	EndpointURL     string
	SigningKey      string // present only when resolved for a write
}

// CredentialSource supplies the persisted signing credential.
type CredentialSource interface {
	SigningKey(ctx context.Context) (string, error)
}

// Resolver resolves settings from an optional override and the persisted
// configuration store.
type Resolver struct {
	defaults    storage.ConfigStore // may be nil
	credentials CredentialSource    // may be nil
	endpoint    string
}

// NewResolver creates a resolver. defaults and credentials may be nil when no
// persisted store is wired; callers must then override per call.
func NewResolver(defaults storage.ConfigStore, credentials CredentialSource, defaultEndpoint string) *Resolver {
	if defaultEndpoint == "" {
		defaultEndpoint = DefaultEndpoint
	}
	return &Resolver{
		defaults:    defaults,
		credentials: credentials,
		endpoint:    defaultEndpoint,
	}
}

// Resolve produces settings for one call. forWrite additionally requires a
// signing credential. Addresses are checked for well-formedness here so the
// ledger is never contacted with a malformed identity.
func (r *Resolver) Resolve(ctx context.Context, ov *Override, forWrite bool) (*Settings, error) {
	stored, err := r.storedDefaults(ctx)
	if err != nil {
		return nil, err
	}

	s := &Settings{EndpointURL: r.endpoint}
	if stored != nil {
		s.ContractAddress = stored.ContractAddress
		s.OwnerAddress = stored.OwnerAddress
	}
	if ov != nil {
		if ov.ContractAddress != "" {
			s.ContractAddress = ov.ContractAddress
		}
		if ov.EndpointURL != "" {
			s.EndpointURL = ov.EndpointURL
		}
	}

	if s.ContractAddress == "" {
		return nil, fmt.Errorf("%w: contract address", ErrConfiguration)
	}
	if !common.IsHexAddress(s.ContractAddress) {
		return nil, fmt.Errorf("%w: malformed contract address %q", ErrConfiguration, s.ContractAddress)
	}
	if s.OwnerAddress != "" && !common.IsHexAddress(s.OwnerAddress) {
		return nil, fmt.Errorf("%w: malformed owner address %q", ErrConfiguration, s.OwnerAddress)
	}

	if forWrite {
		key, err := r.signingKey(ctx, ov)
		if err != nil {
			return nil, err
		}
		s.SigningKey = key
	}

	return s, nil
}

func (r *Resolver) storedDefaults(ctx context.Context) (*domain.ContractConfig, error) {
	if r.defaults == nil {
		return nil, nil
	}
	cfg, err := r.defaults.Get(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load configuration defaults: %w", err)
	}
	return cfg, nil
}

func (r *Resolver) signingKey(ctx context.Context, ov *Override) (string, error) {
	if ov != nil && ov.SigningKey != "" {
		return ov.SigningKey, nil
	}
	if r.credentials == nil {
		return "", fmt.Errorf("%w: signing credential", ErrConfiguration)
	}
	key, err := r.credentials.SigningKey(ctx)
	if err != nil {
		return "", fmt.Errorf("load signing credential: %w", err)
	}
	if key == "" {
		return "", fmt.Errorf("%w: signing credential", ErrConfiguration)
	}
	return key, nil
}
