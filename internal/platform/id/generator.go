// Package id mints opaque identifiers for externally visible resources,
// currently analysis ids returned by the API.
package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const idByteLen = 16

type Generator interface {
	NewID() (string, error)
}

// RandomGenerator produces 32-char hex ids. The ids carry no structure;
// callers must not infer creation order from them.
type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) NewID() (string, error) {
	buf := make([]byte, idByteLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
