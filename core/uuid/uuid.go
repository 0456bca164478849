// Package uuid provides process-side UUIDv4 generation and the dash
// formatting helpers used when normalizing stored identifiers.
package uuid

import (
	"encoding/binary"
	mathrand "math/rand/v2"
	"sync"

	googleuuid "github.com/google/uuid"
)

// UUID represents a 128-bit RFC 4122 UUID.
type UUID [16]byte

// String returns the canonical lowercase 8-4-4-4-12 form.
func (u UUID) String() string {
	return googleuuid.UUID(u).String()
}

// Compact returns the 32 hex digit form without dashes.
func (u UUID) Compact() string {
	return RemoveDashes(u.String())
}

// Version returns the version nibble.
func (u UUID) Version() byte {
	return u[6] >> 4
}

// Generator produces UUIDv4 values from a mutex-guarded random source.
// The zero value is not usable; construct with NewGenerator.
type Generator struct {
	mu  sync.Mutex
	src mathrand.Source
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithSource sets the random source. The generator serializes access to it,
// so the source itself need not be safe for concurrent use.
func WithSource(src mathrand.Source) GeneratorOption {
	return func(g *Generator) {
		g.src = src
	}
}

// WithSeed uses a ChaCha8 source with a fixed seed. Intended for tests.
func WithSeed(seed [32]byte) GeneratorOption {
	return func(g *Generator) {
		g.src = mathrand.NewChaCha8(seed)
	}
}

// NewGenerator creates a Generator. Without options it uses a ChaCha8 source
// seeded once per process (see processSeed).
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{}
	for _, opt := range opts {
		opt(g)
	}
	if g.src == nil {
		g.src = mathrand.NewChaCha8(processSeed())
	}
	return g
}

// NewV4 generates a UUIDv4. It never fails.
func (g *Generator) NewV4() UUID {
	var u UUID
	g.mu.Lock()
	binary.LittleEndian.PutUint64(u[0:8], g.src.Uint64())
	binary.LittleEndian.PutUint64(u[8:16], g.src.Uint64())
	g.mu.Unlock()

	u[6] = (u[6] & 0x0f) | 0x40 // Version 4
	u[8] = (u[8] & 0x3f) | 0x80 // Variant 10xx
	return u
}

// NewV4String generates a UUIDv4 in canonical dashed form.
func (g *Generator) NewV4String() string {
	return g.NewV4().String()
}

var (
	defaultOnce sync.Once
	defaultGen  *Generator
)

// Default returns the process-wide generator, creating it on first use.
func Default() *Generator {
	defaultOnce.Do(func() {
		defaultGen = NewGenerator()
	})
	return defaultGen
}

// NewV4 generates a UUIDv4 with the process-wide generator.
func NewV4() UUID {
	return Default().NewV4()
}

// NewV4String generates a dashed UUIDv4 with the process-wide generator.
func NewV4String() string {
	return Default().NewV4String()
}
