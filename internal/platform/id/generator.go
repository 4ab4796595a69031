package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Generator creates opaque IDs that tie one sync run together across logs,
// spans and the printed summary.
type Generator interface {
	NewID() (string, error)
}

// RandomGenerator prefixes random hex with the UTC start time so IDs sort
// by creation.
type RandomGenerator struct {
	now func() time.Time
}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{now: time.Now}
}

func (g *RandomGenerator) NewID() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return g.now().UTC().Format("20060102T150405") + "-" + hex.EncodeToString(buf), nil
}
