package identifier

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// Generator produces the identifiers and opaque hashes used across the
// platform. Services take it as a dependency so tests can substitute a
// deterministic implementation.
type Generator interface {
	// EntityID returns a prefixed unique identifier, e.g. "L-<uuid>".
	EntityID(prefix string) string
	// TokenID returns a token identifier assigned at mint time.
	TokenID() string
	// Hash returns an opaque 0x-prefixed hex string.
	Hash() string
}

// Random is the production Generator backed by uuid and crypto/rand.
type Random struct{}

// NewRandom creates the default random generator.
func NewRandom() *Random {
	return &Random{}
}

func (r *Random) EntityID(prefix string) string {
	return prefix + uuid.New().String()
}

func (r *Random) TokenID() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// crypto/rand failure is unrecoverable for id generation
		panic(err)
	}
	return fmt.Sprintf("T-%06d", n.Int64())
}

func (r *Random) Hash() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return "0x" + hex.EncodeToString(buf)
}

// Sequential is a deterministic Generator for tests. Identifiers carry
// an incrementing counter instead of random material.
type Sequential struct {
	counter int
}

func NewSequential() *Sequential {
	return &Sequential{}
}

func (s *Sequential) next() int {
	s.counter++
	return s.counter
}

func (s *Sequential) EntityID(prefix string) string {
	return fmt.Sprintf("%s%08d", prefix, s.next())
}

func (s *Sequential) TokenID() string {
	return fmt.Sprintf("T-%06d", s.next())
}

func (s *Sequential) Hash() string {
	return "0x" + strings.Repeat("0", 56) + fmt.Sprintf("%08x", s.next())
}
