package network

import (
	"fmt"

	"github.com/matzehuels/hexroute/pkg/hexgrid"
)

// Port numbers a link slot on a node.
//
// On a router, ports 0-5 are the external links (one per direction) and ports
// 6-23 are the internal links to cores 0-17. A core has the single port
// [NetworkPort].
type Port uint8

const (
	// NumExternalPorts is the number of inter-chip links on a router.
	NumExternalPorts = hexgrid.NumDirections

	// MaxCores is the number of internal ports on a router.
	MaxCores = 18

	// NumRouterPorts is the total port count of a router.
	NumRouterPorts = NumExternalPorts + MaxCores

	// NetworkPort is the only port of a core.
	NetworkPort Port = 0
)

// ExternalPort returns the router port for the link in direction d.
func ExternalPort(d hexgrid.Direction) Port {
	return Port(d)
}

// InternalPort returns the router port that links to core coreID.
func InternalPort(coreID int) Port {
	return Port(NumExternalPorts + coreID)
}

// IsExternal reports whether p is one of a router's inter-chip links.
func (p Port) IsExternal() bool {
	return p < NumExternalPorts
}

// Direction returns the direction of an external port.
func (p Port) Direction() hexgrid.Direction {
	return hexgrid.Direction(p)
}

// CoreID returns the core served by an internal port.
func (p Port) CoreID() int {
	return int(p) - NumExternalPorts
}

// String renders router ports as "east" or "core3".
func (p Port) String() string {
	if p.IsExternal() {
		return p.Direction().String()
	}
	if int(p) < NumRouterPorts {
		return fmt.Sprintf("core%d", p.CoreID())
	}
	return fmt.Sprintf("port(%d)", int(p))
}

// Endpoint is one end of a link: a node and the port on that node.
type Endpoint struct {
	Node NodeID
	Port Port
}
