package cache

// ScopedKeyer wraps a Keyer with a prefix, so that several deployments can
// share one Redis instance without seeing each other's entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "lab-a:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// RoutesKey generates a prefixed key for traffic patterns.
func (k *ScopedKeyer) RoutesKey(board string, opts RoutesKeyOpts) string {
	return k.prefix + k.inner.RoutesKey(board, opts)
}

// TablesKey generates a prefixed key for encoded tables.
func (k *ScopedKeyer) TablesKey(routingHash string, opts TablesKeyOpts) string {
	return k.prefix + k.inner.TablesKey(routingHash, opts)
}
