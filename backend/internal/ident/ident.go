// Package ident allocates entity identifiers and converts them between the
// flat storage key kept on graph nodes and the dashed form shown to callers.
package ident

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// New returns a fresh version 4 random UUID.
func New() uuid.UUID {
	return uuid.New()
}

// Canonicalize returns the 32 character lowercase hex form used as the node id.
func Canonicalize(id uuid.UUID) string {
	return hex.EncodeToString(id[:])
}

// NewKey allocates an identifier and returns its storage key.
func NewKey() string {
	return Canonicalize(New())
}

// Parse accepts the dashed, flat hex, braced and urn:uuid forms.
func Parse(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid identifier %q: %w", s, err)
	}
	return id, nil
}

// Key parses caller input and returns the storage key for it.
func Key(s string) (string, error) {
	id, err := Parse(s)
	if err != nil {
		return "", err
	}
	return Canonicalize(id), nil
}

// External renders a storage key in dashed form. Values that are not
// identifiers are returned unchanged.
func External(key string) string {
	id, err := uuid.Parse(key)
	if err != nil {
		return key
	}
	return id.String()
}
