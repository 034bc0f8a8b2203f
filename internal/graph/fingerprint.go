package graph

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/Sh00ty/websocket-infra/internal/models"
)

// Fingerprint hashes the canonical encoding of a composed graph. Two
// runs with identical inputs must produce identical fingerprints; the
// ledger stores it so drift between runs is visible.
func Fingerprint(g models.Graph) (string, error) {
	encoded, err := json.Marshal(g)
	if err != nil {
		return "", fmt.Errorf("failed to encode graph for fingerprinting: %w", err)
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(encoded)), nil
}
