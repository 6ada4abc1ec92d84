package model

import (
	"fmt"

	"github.com/mitchellh/hashstructure/v2"
)

// Hash returns a stable fingerprint of the normalized model. dbsync.Diff and dbsync.Revert record
// the hashes of both sides on the Plan they return, and tests compare them.
func (m Model) Hash() (string, error) {
	hashVal, err := hashstructure.Hash(m.Normalize(), hashstructure.FormatV2, nil)
	if err != nil {
		return "", fmt.Errorf("hashing model: %w", err)
	}
	return fmt.Sprintf("%x", hashVal), nil
}
