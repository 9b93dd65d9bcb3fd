package routing

import (
	"errors"
	"fmt"

	"github.com/matzehuels/hexroute/pkg/hexgrid"
	"github.com/matzehuels/hexroute/pkg/network"
)

var (
	// ErrInvalidOrder is returned for dimension orders that are not a
	// permutation of the three axes.
	ErrInvalidOrder = errors.New("routing: dimension order must be a permutation of x, y, z")

	// ErrNotCore is returned when a source or sink is not a core.
	ErrNotCore = errors.New("routing: endpoint is not a core")

	// ErrUnknownAlgorithm is returned by [Lookup] for unregistered names.
	ErrUnknownAlgorithm = errors.New("routing: unknown algorithm")
)

// Options configures [DimensionOrder].
type Options struct {
	WrapAround bool
	Order      Order
}

// Result holds the paths found and the sinks that could not be reached.
type Result struct {
	Paths    [][]network.NodeID
	Unrouted []network.NodeID
}

// DimensionOrder routes from source to each sink along the minimal
// displacement, exhausting one axis at a time in opts.Order.
//
// A sink is unrouted when a hop lands on a position without a chip or when
// consecutive routers on the path are not linked. Errors are returned only for
// malformed input: a bad order, or a source or sink that is not a core
// attached to a router.
func DimensionOrder(n *network.Network, source network.NodeID, sinks []network.NodeID, opts Options) (Result, error) {
	if opts.Order == (Order{}) {
		opts.Order = DefaultOrder
	}
	if err := opts.Order.Validate(); err != nil {
		return Result{}, err
	}
	srcRouter, err := routerOf(n, source)
	if err != nil {
		return Result{}, fmt.Errorf("source: %w", err)
	}
	srcPos, _ := n.Position(srcRouter)
	bounds := n.Bounds()

	var res Result
	for _, sink := range sinks {
		dstRouter, err := routerOf(n, sink)
		if err != nil {
			return Result{}, fmt.Errorf("sink: %w", err)
		}
		dstPos, _ := n.Position(dstRouter)

		path, ok := walk(n, srcPos, dstPos, bounds, opts)
		if !ok {
			res.Unrouted = append(res.Unrouted, sink)
			continue
		}
		seq := make([]network.NodeID, 0, len(path)+3)
		seq = append(seq, source, srcRouter)
		seq = append(seq, path...)
		seq = append(seq, sink)
		if !n.IsPathConnected(seq) {
			res.Unrouted = append(res.Unrouted, sink)
			continue
		}
		res.Paths = append(res.Paths, seq)
	}
	return res, nil
}

// walk returns the routers visited after the source router on the way to dst.
func walk(n *network.Network, src, dst hexgrid.Position, bounds hexgrid.Bounds, opts Options) ([]network.NodeID, bool) {
	var v hexgrid.Vector3
	if opts.WrapAround && bounds.Empty() {
		return nil, false
	}
	if opts.WrapAround {
		v = hexgrid.TorusShortestPath(src, dst, bounds)
	} else {
		v = hexgrid.ShortestPath(src, dst)
	}

	var path []network.NodeID
	pos := src
	for _, axis := range opts.Order {
		step := axis.Unit().XY()
		remaining := v.Component(axis)
		for remaining != 0 {
			if remaining > 0 {
				pos = hexgrid.Position{X: pos.X + step.X, Y: pos.Y + step.Y}
				remaining--
			} else {
				pos = hexgrid.Position{X: pos.X - step.X, Y: pos.Y - step.Y}
				remaining++
			}
			if opts.WrapAround {
				pos = pos.Wrap(bounds)
			}
			r, ok := n.RouterAt(pos)
			if !ok {
				return nil, false
			}
			path = append(path, r)
		}
	}
	return path, true
}

func routerOf(n *network.Network, core network.NodeID) (network.NodeID, error) {
	if !n.IsCore(core) {
		return network.NoNode, fmt.Errorf("%w: node %d", ErrNotCore, core)
	}
	return n.CoreToRouter(core)
}
