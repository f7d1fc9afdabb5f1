// Package id provides ID generation for blueprints and requests.
//
// Blueprint ids are prefixed ULIDs ("bp_01J..."): lexicographically sortable
// by creation time and readable in logs. Request ids are UUIDs carried in the
// X-Request-ID header between the front ends and the store service.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// BlueprintPrefix marks blueprint ids
const BlueprintPrefix = "bp"

// Generator generates ULIDs with optional prefixes
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the shared generator
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator whose ids increase strictly even within
// one millisecond.
func NewGenerator() *Generator {
	return NewGeneratorWithEntropy(ulid.Monotonic(rand.Reader, 0))
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy, now: time.Now}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewBlueprintID generates a new blueprint id
func NewBlueprintID() string {
	return Default().GenerateWithPrefix(BlueprintPrefix)
}

// NewRequestID generates a request correlation id
func NewRequestID() string {
	return uuid.NewString()
}

// IsValidBlueprintID reports whether s has the form bp_<ULID>
func IsValidBlueprintID(s string) bool {
	prefix, rest, ok := strings.Cut(s, "_")
	if !ok || prefix != BlueprintPrefix {
		return false
	}
	_, err := ulid.ParseStrict(rest)
	return err == nil
}

// IsValidRequestID reports whether s is a UUID
func IsValidRequestID(s string) bool {
	return uuid.Validate(s) == nil
}

// Timestamp extracts the creation time from a prefixed or bare ULID
func Timestamp(s string) (time.Time, error) {
	if _, rest, ok := strings.Cut(s, "_"); ok {
		s = rest
	}
	parsed, err := ulid.Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
