package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Signature identifies one composed query: the table it reads, the filters,
// ordering and pagination that shaped it, and the viewer it was scoped to.
// Queries with identical signatures are interchangeable, so at most one value
// is stored per signature.
type Signature struct {
	Table  string
	Viewer string
	Parts  []string
}

// Key derives the deterministic cache key for a given table version. Bumping
// the version makes every previously stored key unreachable, which is how
// whole-table invalidation works without scanning stored entries.
func (s Signature) Key(version string) string {
	h := sha256.New()
	h.Write([]byte(s.Table))
	h.Write([]byte{0})
	h.Write([]byte(s.Viewer))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(s.Parts, "|")))
	return s.Table + ":" + version + ":" + hex.EncodeToString(h.Sum(nil))
}

// QueryCache memoizes composed-query results by signature.
//
// Fetch fills dest from the cache when a value is stored for sig; otherwise it
// runs load (which must fill dest), stores the result, and returns. Invalidate
// drops every entry touching the given tables; it must be called synchronously
// by mutation services before they return, so a subsequent read by the same
// caller never observes stale data.
type QueryCache interface {
	Fetch(ctx context.Context, sig Signature, dest any, load func() error) error
	Invalidate(ctx context.Context, tables ...string) error
}
