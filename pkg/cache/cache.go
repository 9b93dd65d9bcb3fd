// Package cache provides a small key/value cache used by the table pipeline.
//
// Three backends implement [Cache]:
//   - [FileCache]: JSON entry files under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for `hexroute serve` fleets
//   - [NullCache]: stores nothing, used when caching is disabled
//
// Keys are produced by a [Keyer] so the pipeline never builds key strings by
// hand. [DefaultKeyer] hashes the option structs with SHA-256;
// [ScopedKeyer] adds a namespace prefix.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and whether it was found.
	// A missing or expired entry is a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Entry lifetimes for the two cached pipeline stages.
const (
	TTLRoutes = 7 * 24 * time.Hour
	TTLTables = 24 * time.Hour
)

// Keyer builds cache keys for the pipeline stages.
type Keyer interface {
	// RoutesKey identifies a generated traffic pattern on a board.
	RoutesKey(board string, opts RoutesKeyOpts) string

	// TablesKey identifies the encoded tables for a routed network.
	// routingHash is the content hash of the network's forwarding state.
	TablesKey(routingHash string, opts TablesKeyOpts) string
}

// RoutesKeyOpts holds the traffic parameters that change a generated pattern.
type RoutesKeyOpts struct {
	Probability float64 `json:"probability"`
	Seed        uint64  `json:"seed"`
}

// TablesKeyOpts holds the parameters that change encoded table bytes.
type TablesKeyOpts struct {
	Formats []string `json:"formats"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// RoutesKey returns "routes:<sha256>".
func (DefaultKeyer) RoutesKey(board string, opts RoutesKeyOpts) string {
	return hashKey("routes", board, opts)
}

// TablesKey returns "tables:<sha256>".
func (DefaultKeyer) TablesKey(routingHash string, opts TablesKeyOpts) string {
	return hashKey("tables", routingHash, opts)
}
