package postgres

import (
	"crypto/rand"
	"sync"

	"github.com/oklog/ulid/v2"
)

// ULIDGenerator mints lexicographically sortable ids. Sorting entity ids
// also sorts them by creation time, which keeps journal and log scans in
// insert order.
type ULIDGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewULIDGenerator creates a generator with a monotonic entropy source, so
// ids minted within the same millisecond still sort in mint order.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// Generate returns a new ULID string.
func (g *ULIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return ulid.MustNew(ulid.Now(), g.entropy).String()
}
