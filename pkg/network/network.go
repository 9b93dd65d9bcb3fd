package network

import (
	"cmp"
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"

	"github.com/matzehuels/hexroute/pkg/hexgrid"
)

// NodeID is a stable handle to a node in a [Network].
type NodeID int

// NoNode is the zero handle; it never names a node.
const NoNode NodeID = -1

// Kind distinguishes cores from routers.
type Kind uint8

const (
	KindCore Kind = iota
	KindRouter
)

func (k Kind) String() string {
	if k == KindRouter {
		return "router"
	}
	return "core"
}

// RouteKey identifies a multicast route.
type RouteKey uint32

// node is the tagged arena entry. Core fields are set only for KindCore and
// router fields only for KindRouter.
type node struct {
	kind  Kind
	links []Endpoint

	coreID  int
	sources *treeset.Set
	sinks   *treeset.Set

	pos    hexgrid.Position
	board  hexgrid.Position
	routes *linkedhashmap.Map // RouteKey -> *Entry
}

// Chip is a router together with its cores.
type Chip struct {
	Position hexgrid.Position
	Board    hexgrid.Position
	Router   NodeID
	Cores    []NodeID
}

// Network is an arena of cores and routers plus a registry of chips.
//
// A Network is not safe for concurrent mutation. Once construction and route
// merging are finished, concurrent readers are fine.
type Network struct {
	nodes []*node
	chips map[hexgrid.Position]*Chip
}

// New returns an empty network.
func New() *Network {
	return &Network{chips: make(map[hexgrid.Position]*Chip)}
}

// =============================================================================
// Node Construction
// =============================================================================

// AddCore adds a disconnected core with the given local core ID.
func (n *Network) AddCore(coreID int) (NodeID, error) {
	if coreID < 0 || coreID >= MaxCores {
		return NoNode, fmt.Errorf("%w: %d", ErrTooManyCores, coreID)
	}
	return n.add(&node{
		kind:    KindCore,
		links:   newLinks(1),
		coreID:  coreID,
		sources: treeset.NewWith(utils.UInt32Comparator),
		sinks:   treeset.NewWith(utils.UInt32Comparator),
	}), nil
}

// AddRouter adds a disconnected router. The router is not registered as a
// chip; use [Network.AddChip] for that.
func (n *Network) AddRouter(pos, board hexgrid.Position) NodeID {
	return n.add(&node{
		kind:   KindRouter,
		links:  newLinks(NumRouterPorts),
		pos:    pos,
		board:  board,
		routes: linkedhashmap.New(),
	})
}

// AddChip adds a router at pos with numCores cores, each linked from router
// internal port i to the core's network port, and registers it as a chip.
func (n *Network) AddChip(pos, board hexgrid.Position, numCores int) (*Chip, error) {
	if _, ok := n.chips[pos]; ok {
		return nil, fmt.Errorf("%w: %v", ErrDuplicateChip, pos)
	}
	if numCores < 0 || numCores > MaxCores {
		return nil, fmt.Errorf("%w: %d cores", ErrTooManyCores, numCores)
	}

	chip := &Chip{Position: pos, Board: board, Router: n.AddRouter(pos, board)}
	for i := range numCores {
		core, err := n.AddCore(i)
		if err != nil {
			return nil, err
		}
		if err := n.Connect(chip.Router, InternalPort(i), core, NetworkPort); err != nil {
			return nil, err
		}
		chip.Cores = append(chip.Cores, core)
	}
	n.chips[pos] = chip
	return chip, nil
}

func (n *Network) add(nd *node) NodeID {
	n.nodes = append(n.nodes, nd)
	return NodeID(len(n.nodes) - 1)
}

func newLinks(ports int) []Endpoint {
	links := make([]Endpoint, ports)
	for i := range links {
		links[i] = Endpoint{Node: NoNode}
	}
	return links
}

// =============================================================================
// Node Queries
// =============================================================================

func (n *Network) lookup(id NodeID) (*node, error) {
	if id < 0 || int(id) >= len(n.nodes) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	return n.nodes[id], nil
}

func (n *Network) lookupKind(id NodeID, k Kind) (*node, error) {
	nd, err := n.lookup(id)
	if err != nil {
		return nil, err
	}
	if nd.kind != k {
		return nil, fmt.Errorf("%w: node %d is a %v, want %v", ErrWrongKind, id, nd.kind, k)
	}
	return nd, nil
}

// Len returns the number of nodes in the arena.
func (n *Network) Len() int { return len(n.nodes) }

// Kind returns the kind of node id. Unknown ids report KindCore; use
// [Network.Valid] to check a handle first.
func (n *Network) Kind(id NodeID) Kind {
	if nd, err := n.lookup(id); err == nil {
		return nd.kind
	}
	return KindCore
}

// Valid reports whether id names a node.
func (n *Network) Valid(id NodeID) bool {
	_, err := n.lookup(id)
	return err == nil
}

// IsCore reports whether id names a core.
func (n *Network) IsCore(id NodeID) bool {
	nd, err := n.lookup(id)
	return err == nil && nd.kind == KindCore
}

// IsRouter reports whether id names a router.
func (n *Network) IsRouter(id NodeID) bool {
	nd, err := n.lookup(id)
	return err == nil && nd.kind == KindRouter
}

// CoreID returns the local core ID of a core, or -1 for anything else.
func (n *Network) CoreID(id NodeID) int {
	nd, err := n.lookupKind(id, KindCore)
	if err != nil {
		return -1
	}
	return nd.coreID
}

// Position returns the position of a router.
func (n *Network) Position(id NodeID) (hexgrid.Position, bool) {
	nd, err := n.lookupKind(id, KindRouter)
	if err != nil {
		return hexgrid.Position{}, false
	}
	return nd.pos, true
}

// Board returns the coordinate of the board a router was built on.
func (n *Network) Board(id NodeID) hexgrid.Position {
	nd, err := n.lookupKind(id, KindRouter)
	if err != nil {
		return hexgrid.Position{}
	}
	return nd.board
}

// NumPorts returns the port count of node id, or zero if it is unknown.
func (n *Network) NumPorts(id NodeID) int {
	nd, err := n.lookup(id)
	if err != nil {
		return 0
	}
	return len(nd.links)
}

// =============================================================================
// Chips
// =============================================================================

// Chip returns the chip at pos.
func (n *Network) Chip(pos hexgrid.Position) (*Chip, bool) {
	c, ok := n.chips[pos]
	return c, ok
}

// RouterAt returns the router of the chip at pos.
func (n *Network) RouterAt(pos hexgrid.Position) (NodeID, bool) {
	c, ok := n.chips[pos]
	if !ok {
		return NoNode, false
	}
	return c.Router, true
}

// NumChips returns the number of registered chips.
func (n *Network) NumChips() int { return len(n.chips) }

// Chips yields every chip in row-major order (by Y, then X).
func (n *Network) Chips() iter.Seq[*Chip] {
	positions := slices.SortedFunc(maps.Keys(n.chips), func(a, b hexgrid.Position) int {
		return cmp.Or(cmp.Compare(a.Y, b.Y), cmp.Compare(a.X, b.X))
	})
	return func(yield func(*Chip) bool) {
		for _, p := range positions {
			if !yield(n.chips[p]) {
				return
			}
		}
	}
}

// Bounds returns the grid size spanned by the chips: one more than the
// largest X and Y coordinate.
func (n *Network) Bounds() hexgrid.Bounds {
	if len(n.chips) == 0 {
		return hexgrid.Bounds{}
	}
	var b hexgrid.Bounds
	for p := range n.chips {
		b.Width = max(b.Width, p.X+1)
		b.Height = max(b.Height, p.Y+1)
	}
	return b
}

// =============================================================================
// Links
// =============================================================================

func (n *Network) port(id NodeID, p Port) (*node, error) {
	nd, err := n.lookup(id)
	if err != nil {
		return nil, err
	}
	if int(p) >= len(nd.links) {
		return nil, fmt.Errorf("%w: port %d on node %d", ErrUnknownPort, p, id)
	}
	return nd, nil
}

// Connect links port pa of node a to port pb of node b. Both ports must be free.
func (n *Network) Connect(a NodeID, pa Port, b NodeID, pb Port) error {
	na, err := n.port(a, pa)
	if err != nil {
		return err
	}
	nb, err := n.port(b, pb)
	if err != nil {
		return err
	}
	if na.links[pa].Node != NoNode {
		return fmt.Errorf("%w: node %d port %v", ErrConnectionConflict, a, pa)
	}
	if nb.links[pb].Node != NoNode {
		return fmt.Errorf("%w: node %d port %v", ErrConnectionConflict, b, pb)
	}
	na.links[pa] = Endpoint{Node: b, Port: pb}
	nb.links[pb] = Endpoint{Node: a, Port: pa}
	return nil
}

// Disconnect removes the link on port p of node a, clearing both ends.
func (n *Network) Disconnect(a NodeID, p Port) error {
	na, err := n.port(a, p)
	if err != nil {
		return err
	}
	peer := na.links[p]
	if peer.Node == NoNode {
		return fmt.Errorf("%w: node %d port %v", ErrNotConnected, a, p)
	}
	n.nodes[peer.Node].links[peer.Port] = Endpoint{Node: NoNode}
	na.links[p] = Endpoint{Node: NoNode}
	return nil
}

// Neighbor returns the far end of the link on port p of node a.
func (n *Network) Neighbor(a NodeID, p Port) (Endpoint, bool) {
	na, err := n.port(a, p)
	if err != nil || na.links[p].Node == NoNode {
		return Endpoint{Node: NoNode}, false
	}
	return na.links[p], true
}

// Links yields the connected ports of node a and their far ends.
func (n *Network) Links(a NodeID) iter.Seq2[Port, Endpoint] {
	return func(yield func(Port, Endpoint) bool) {
		na, err := n.lookup(a)
		if err != nil {
			return
		}
		for i, ep := range na.links {
			if ep.Node == NoNode {
				continue
			}
			if !yield(Port(i), ep) {
				return
			}
		}
	}
}

// PortTo returns the lowest port of a that links to b.
func (n *Network) PortTo(a, b NodeID) (Port, bool) {
	for p, ep := range n.Links(a) {
		if ep.Node == b {
			return p, true
		}
	}
	return 0, false
}

// CoreToRouter returns the router linked to a core's network port.
func (n *Network) CoreToRouter(core NodeID) (NodeID, error) {
	nd, err := n.lookupKind(core, KindCore)
	if err != nil {
		return NoNode, err
	}
	peer := nd.links[NetworkPort].Node
	if peer == NoNode {
		return NoNode, fmt.Errorf("%w: core %d has no router", ErrNotConnected, core)
	}
	return peer, nil
}

// IsPathConnected reports whether every consecutive pair in seq is linked.
// Sequences of fewer than two nodes are trivially connected.
func (n *Network) IsPathConnected(seq []NodeID) bool {
	for i := 1; i < len(seq); i++ {
		if _, ok := n.PortTo(seq[i-1], seq[i]); ok {
			continue
		}
		if _, ok := n.PortTo(seq[i], seq[i-1]); !ok {
			return false
		}
	}
	return true
}
