package inject

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

const (
	symbolBytes    = 16
	maxSymbolTries = 8
)

// SymbolGenerator issues names made of a fixed prefix and 128 random bits
// rendered as 32 lowercase hex digits. Names are unique per generator.
type SymbolGenerator struct {
	prefix string
	rand   io.Reader
	issued map[string]struct{}
}

// NewSymbolGenerator reads randomness from r, or crypto/rand if r is nil.
func NewSymbolGenerator(prefix string, r io.Reader) *SymbolGenerator {
	if r == nil {
		r = rand.Reader
	}
	return &SymbolGenerator{
		prefix: prefix,
		rand:   r,
		issued: make(map[string]struct{}),
	}
}

func (g *SymbolGenerator) Next() (string, error) {
	var buf [symbolBytes]byte
	for i := 0; i < maxSymbolTries; i++ {
		if _, err := io.ReadFull(g.rand, buf[:]); err != nil {
			return "", fmt.Errorf("read random bits: %w", err)
		}
		name := g.prefix + hex.EncodeToString(buf[:])
		if _, dup := g.issued[name]; dup {
			continue
		}
		g.issued[name] = struct{}{}
		return name, nil
	}
	return "", ErrSymbolCollision
}
