package config

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// StaticCredential is a fixed in-memory signing credential, used by tests
// and by callers that load the key themselves.
type StaticCredential string

// SigningKey returns the fixed credential.
func (c StaticCredential) SigningKey(_ context.Context) (string, error) {
	return string(c), nil
}

// FileCredential reads the signing credential from a key file on every call.
// The file holds one hex-encoded private key; surrounding whitespace is
// ignored.
type FileCredential struct {
	Path string
}

// SigningKey reads and returns the credential.
func (c FileCredential) SigningKey(_ context.Context) (string, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return "", fmt.Errorf("read credential file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

var (
	_ CredentialSource = StaticCredential("")
	_ CredentialSource = FileCredential{}
)
