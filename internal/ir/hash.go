package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainDataset = "qopt/dataset/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DatasetDigest computes a content-addressed ID for a set of quads.
// The digest ignores quad order and duplicates, so it identifies the
// dataset as a set.
func DatasetDigest(quads []Quad) (string, error) {
	lines := make([]string, 0, len(quads))
	for i, q := range quads {
		var line []byte
		for _, t := range []Term{q.G, q.S, q.P, q.O} {
			k, err := Key(t)
			if err != nil {
				return "", fmt.Errorf("DatasetDigest: quad %d: %w", i, err)
			}
			line = append(line, k...)
			line = append(line, 0x1f)
		}
		lines = append(lines, string(line))
	}
	slices.Sort(lines)
	lines = slices.Compact(lines)

	var data []byte
	for _, l := range lines {
		data = append(data, l...)
		data = append(data, '\n')
	}
	return hashWithDomain(DomainDataset, data), nil
}
