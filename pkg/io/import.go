package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/hexroute/pkg/hexgrid"
	"github.com/matzehuels/hexroute/pkg/network"
	"github.com/matzehuels/hexroute/pkg/traffic"
)

// ErrUnknownCore is returned when a route file names a chip or core that the
// network does not have.
var ErrUnknownCore = errors.New("io: unknown core")

type routeFile struct {
	Routes []route `json:"routes"`
}

type route struct {
	Key    uint32    `json:"key"`
	Source coreRef   `json:"source"`
	Sinks  []coreRef `json:"sinks"`
}

type coreRef struct {
	X    int `json:"x"`
	Y    int `json:"y"`
	Core int `json:"core"`
}

// ReadRoutes decodes a route file from r and resolves its core references
// against n. The returned specs are validated with [traffic.Validate].
// ReadRoutes does not close r.
func ReadRoutes(r io.Reader, n *network.Network) ([]traffic.Spec, error) {
	var data routeFile
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	specs := make([]traffic.Spec, 0, len(data.Routes))
	for _, rt := range data.Routes {
		src, err := resolve(n, rt.Source)
		if err != nil {
			return nil, fmt.Errorf("route %d source: %w", rt.Key, err)
		}
		spec := traffic.Spec{Key: network.RouteKey(rt.Key), Source: src}
		for _, ref := range rt.Sinks {
			sink, err := resolve(n, ref)
			if err != nil {
				return nil, fmt.Errorf("route %d sink: %w", rt.Key, err)
			}
			spec.Sinks = append(spec.Sinks, sink)
		}
		specs = append(specs, spec)
	}
	if err := traffic.Validate(n, specs); err != nil {
		return nil, err
	}
	return specs, nil
}

// ImportRoutes reads the route file at path. See [ReadRoutes].
func ImportRoutes(path string, n *network.Network) ([]traffic.Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadRoutes(f, n)
}

func resolve(n *network.Network, ref coreRef) (network.NodeID, error) {
	chip, ok := n.Chip(hexgrid.Position{X: ref.X, Y: ref.Y})
	if !ok {
		return network.NoNode, fmt.Errorf("%w: no chip at (%d, %d)", ErrUnknownCore, ref.X, ref.Y)
	}
	if ref.Core < 0 || ref.Core >= len(chip.Cores) {
		return network.NoNode, fmt.Errorf("%w: chip (%d, %d) has no core %d", ErrUnknownCore, ref.X, ref.Y, ref.Core)
	}
	return chip.Cores[ref.Core], nil
}
