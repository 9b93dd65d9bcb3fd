package network

import (
	"fmt"
	"iter"
	"slices"
)

// Entry is a router's forwarding rule for one route key: packets arriving on
// In are copied to every port in Out.
type Entry struct {
	In  Port
	Out []Port
}

// RouteEnds is the source core and sink cores of one route key.
// Source is [NoNode] when sinks were registered without a source.
type RouteEnds struct {
	Source NodeID
	Sinks  []NodeID
}

// MergeRoute installs the path seq for key into the forwarding tables.
//
// seq must be a source core, one or more routers and a sink core, with each
// consecutive pair linked. For every router the incoming and outgoing ports
// are resolved from its neighbours in seq. A router without an entry for key
// gets a new one; a router with an entry must already receive key on the same
// port, and the outgoing port is added to its set. The first core records key
// as a source and the last as a sink.
//
// All checks run before anything is written, so on error the network is
// unchanged. Merging the same path twice is a no-op.
func (n *Network) MergeRoute(key RouteKey, seq []NodeID) error {
	if len(seq) < 3 {
		return fmt.Errorf("%w: %d nodes", ErrInvalidPath, len(seq))
	}
	src, dst := seq[0], seq[len(seq)-1]
	if !n.IsCore(src) || !n.IsCore(dst) {
		return fmt.Errorf("%w: endpoints %d and %d must be cores", ErrInvalidPath, src, dst)
	}

	hops := make([]hop, 0, len(seq)-2)
	pending := make(map[NodeID]Port)
	for i := 1; i < len(seq)-1; i++ {
		r := seq[i]
		rn, err := n.lookupKind(r, KindRouter)
		if err != nil {
			return fmt.Errorf("%w: position %d: %w", ErrInvalidPath, i, err)
		}
		in, ok := n.inPort(r, seq[i-1], hops)
		if !ok {
			return fmt.Errorf("%w: router %d to node %d", ErrPortNotFound, r, seq[i-1])
		}
		out, ok := n.PortTo(r, seq[i+1])
		if !ok {
			return fmt.Errorf("%w: router %d to node %d", ErrPortNotFound, r, seq[i+1])
		}
		if v, found := rn.routes.Get(key); found && v.(*Entry).In != in {
			return fmt.Errorf("%w: key %d at router %d: have %v, got %v",
				ErrRouteEntryConflict, key, r, v.(*Entry).In, in)
		}
		if prev, seen := pending[r]; seen && prev != in {
			return fmt.Errorf("%w: key %d revisits router %d on %v and %v",
				ErrRouteEntryConflict, key, r, prev, in)
		}
		pending[r] = in
		hops = append(hops, hop{router: r, in: in, out: out})
	}

	for _, h := range hops {
		routes := n.nodes[h.router].routes
		if v, found := routes.Get(key); found {
			e := v.(*Entry)
			if !slices.Contains(e.Out, h.out) {
				e.Out = append(e.Out, h.out)
			}
			continue
		}
		routes.Put(key, &Entry{In: h.in, Out: []Port{h.out}})
	}
	n.nodes[src].sources.Add(uint32(key))
	n.nodes[dst].sinks.Add(uint32(key))
	return nil
}

type hop struct {
	router  NodeID
	in, out Port
}

// inPort resolves the port on which r receives from prev. When prev is the
// router of the last hop, the packet arrives at the far end of that hop's
// outgoing link; two routers can share more than one link on small tori, so
// the port is not looked up afresh.
func (n *Network) inPort(r, prev NodeID, hops []hop) (Port, bool) {
	if len(hops) > 0 && hops[len(hops)-1].router == prev {
		ep, ok := n.Neighbor(prev, hops[len(hops)-1].out)
		if !ok || ep.Node != r {
			return 0, false
		}
		return ep.Port, true
	}
	return n.PortTo(r, prev)
}

// AddSource records that core sources key without installing any path.
func (n *Network) AddSource(core NodeID, key RouteKey) error {
	nd, err := n.lookupKind(core, KindCore)
	if err != nil {
		return err
	}
	nd.sources.Add(uint32(key))
	return nil
}

// AddSink records that core sinks key without installing any path.
func (n *Network) AddSink(core NodeID, key RouteKey) error {
	nd, err := n.lookupKind(core, KindCore)
	if err != nil {
		return err
	}
	nd.sinks.Add(uint32(key))
	return nil
}

// Sources returns the keys sourced by core in ascending order.
func (n *Network) Sources(core NodeID) []RouteKey {
	nd, err := n.lookupKind(core, KindCore)
	if err != nil {
		return nil
	}
	return keys(nd.sources.Values())
}

// Sinks returns the keys sunk by core in ascending order.
func (n *Network) Sinks(core NodeID) []RouteKey {
	nd, err := n.lookupKind(core, KindCore)
	if err != nil {
		return nil
	}
	return keys(nd.sinks.Values())
}

func keys(values []interface{}) []RouteKey {
	out := make([]RouteKey, len(values))
	for i, v := range values {
		out[i] = RouteKey(v.(uint32))
	}
	return out
}

// AllRoutes scans every core and returns the source and sinks of each route
// key. Sinks are listed in node order.
func (n *Network) AllRoutes() (map[RouteKey]RouteEnds, error) {
	routes := make(map[RouteKey]RouteEnds)
	get := func(k RouteKey) RouteEnds {
		if ends, ok := routes[k]; ok {
			return ends
		}
		return RouteEnds{Source: NoNode}
	}

	for i, nd := range n.nodes {
		if nd.kind != KindCore {
			continue
		}
		id := NodeID(i)
		for _, k := range keys(nd.sources.Values()) {
			ends := get(k)
			if ends.Source != NoNode && ends.Source != id {
				return nil, fmt.Errorf("%w: key %d from cores %d and %d",
					ErrDuplicateRouteSource, k, ends.Source, id)
			}
			ends.Source = id
			routes[k] = ends
		}
		for _, k := range keys(nd.sinks.Values()) {
			ends := get(k)
			ends.Sinks = append(ends.Sinks, id)
			routes[k] = ends
		}
	}
	return routes, nil
}

// Entry returns a copy of router's forwarding entry for key.
func (n *Network) Entry(router NodeID, key RouteKey) (Entry, bool) {
	nd, err := n.lookupKind(router, KindRouter)
	if err != nil {
		return Entry{}, false
	}
	v, found := nd.routes.Get(key)
	if !found {
		return Entry{}, false
	}
	return v.(*Entry).clone(), true
}

// NumEntries returns the size of router's forwarding table.
func (n *Network) NumEntries(router NodeID) int {
	nd, err := n.lookupKind(router, KindRouter)
	if err != nil {
		return 0
	}
	return nd.routes.Size()
}

// Entries yields router's forwarding entries in insertion order. The yielded
// entries are copies.
func (n *Network) Entries(router NodeID) iter.Seq2[RouteKey, Entry] {
	return func(yield func(RouteKey, Entry) bool) {
		nd, err := n.lookupKind(router, KindRouter)
		if err != nil {
			return
		}
		it := nd.routes.Iterator()
		for it.Next() {
			if !yield(it.Key().(RouteKey), it.Value().(*Entry).clone()) {
				return
			}
		}
	}
}

// Routers yields the router of every chip in row-major order.
func (n *Network) Routers() iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		for c := range n.Chips() {
			if !yield(c.Router) {
				return
			}
		}
	}
}

func (e *Entry) clone() Entry {
	return Entry{In: e.In, Out: slices.Clone(e.Out)}
}
