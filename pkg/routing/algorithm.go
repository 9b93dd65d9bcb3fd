package routing

import (
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/hexroute/pkg/network"
)

// Func is the signature shared by routing algorithms.
type Func func(n *network.Network, source network.NodeID, sinks []network.NodeID, opts Options) (Result, error)

// AlgorithmDOR names [DimensionOrder] in the registry.
const AlgorithmDOR = "dor"

var algorithms = map[string]Func{
	AlgorithmDOR: DimensionOrder,
}

// Lookup returns the algorithm registered under name.
func Lookup(name string) (Func, error) {
	f, ok := algorithms[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
	return f, nil
}

// Algorithms returns the registered algorithm names in sorted order.
func Algorithms() []string {
	return slices.Sorted(maps.Keys(algorithms))
}

// Route runs f for source and sinks and merges every path found under key.
// It returns the sinks that could not be reached.
func Route(n *network.Network, f Func, key network.RouteKey, source network.NodeID, sinks []network.NodeID, opts Options) ([]network.NodeID, error) {
	res, err := f(n, source, sinks, opts)
	if err != nil {
		return nil, err
	}
	for _, p := range res.Paths {
		if err := n.MergeRoute(key, p); err != nil {
			return nil, fmt.Errorf("merge key %d: %w", key, err)
		}
	}
	return res.Unrouted, nil
}
