package table

import (
	"errors"
	"fmt"

	"github.com/matzehuels/hexroute/pkg/network"
)

// ExactMask matches every bit of a key.
const ExactMask uint32 = 0xFFFFFFFF

var (
	// ErrTooManyRows is returned when a table does not fit the loader
	// format's 16-bit index.
	ErrTooManyRows = errors.New("table: too many rows")

	// ErrMalformed is returned when decoding bytes that are not a valid table.
	ErrMalformed = errors.New("table: malformed table")

	// ErrNotRouter is returned when rows are requested for a node that is not
	// a router.
	ErrNotRouter = errors.New("table: node is not a router")
)

// Row is one routing table entry.
type Row struct {
	Key   uint32 `json:"key"`
	Mask  uint32 `json:"mask"`
	Route uint32 `json:"route"`
}

func (r Row) String() string {
	return fmt.Sprintf("key=0x%08x mask=0x%08x route=0x%06x", r.Key, r.Mask, r.Route)
}

// IsDefaultRouted reports whether e needs no table row: it arrives on an
// external link and leaves only on the opposite one.
func IsDefaultRouted(e network.Entry) bool {
	return e.In.IsExternal() &&
		len(e.Out) == 1 &&
		e.Out[0].IsExternal() &&
		e.Out[0].Direction() == e.In.Direction().Opposite()
}

// RouteBits encodes a set of router ports as a route bitfield.
func RouteBits(ports []network.Port) uint32 {
	var bits uint32
	for _, p := range ports {
		bits |= 1 << uint(p)
	}
	return bits
}

// Ports decodes a route bitfield into router ports in ascending order.
func Ports(route uint32) []network.Port {
	var ports []network.Port
	for p := range network.NumRouterPorts {
		if route&(1<<uint(p)) != 0 {
			ports = append(ports, network.Port(p))
		}
	}
	return ports
}

// Rows returns the table rows for router in forwarding-table order, skipping
// default-routed entries.
func Rows(n *network.Network, router network.NodeID) ([]Row, error) {
	if !n.IsRouter(router) {
		return nil, fmt.Errorf("%w: node %d", ErrNotRouter, router)
	}
	var rows []Row
	for key, e := range n.Entries(router) {
		if IsDefaultRouted(e) {
			continue
		}
		rows = append(rows, Row{Key: uint32(key), Mask: ExactMask, Route: RouteBits(e.Out)})
	}
	return rows, nil
}
