package network

import "errors"

var (
	// ErrUnknownNode is returned when a [NodeID] does not name a node in the network.
	ErrUnknownNode = errors.New("network: unknown node")

	// ErrUnknownPort is returned when a port is out of range for the node.
	ErrUnknownPort = errors.New("network: unknown port")

	// ErrConnectionConflict is returned by [Network.Connect] when either port
	// already has a neighbour.
	ErrConnectionConflict = errors.New("network: port already connected")

	// ErrNotConnected is returned by [Network.Disconnect] when the port has no
	// neighbour.
	ErrNotConnected = errors.New("network: port not connected")

	// ErrPortNotFound is returned by [Network.MergeRoute] when two consecutive
	// nodes of a path are not linked.
	ErrPortNotFound = errors.New("network: no port links consecutive path nodes")

	// ErrRouteEntryConflict is returned by [Network.MergeRoute] when a router
	// already forwards the key but receives it on a different port.
	ErrRouteEntryConflict = errors.New("network: route entry has a different incoming port")

	// ErrDuplicateRouteSource is returned by [Network.AllRoutes] when two
	// distinct cores source the same key.
	ErrDuplicateRouteSource = errors.New("network: route has more than one source")

	// ErrInvalidPath is returned by [Network.MergeRoute] when the sequence is
	// not a core, one or more routers, then a core.
	ErrInvalidPath = errors.New("network: path must run core, routers, core")

	// ErrDuplicateChip is returned by [Network.AddChip] when a chip already
	// occupies the position.
	ErrDuplicateChip = errors.New("network: duplicate chip position")

	// ErrTooManyCores is returned when a core ID does not fit a router's
	// internal ports.
	ErrTooManyCores = errors.New("network: core id out of range")

	// ErrWrongKind is returned when an operation expects a core but gets a
	// router, or the other way round.
	ErrWrongKind = errors.New("network: wrong node kind")
)
