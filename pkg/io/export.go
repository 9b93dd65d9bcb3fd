package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/hexroute/pkg/network"
	"github.com/matzehuels/hexroute/pkg/traffic"
)

type routingFile struct {
	Chips []chipState `json:"chips"`
}

type chipState struct {
	X       int          `json:"x"`
	Y       int          `json:"y"`
	Board   position     `json:"board"`
	Entries []entryState `json:"entries"`
}

type position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type entryState struct {
	Key uint32   `json:"key"`
	In  string   `json:"in"`
	Out []string `json:"out"`
}

// WriteRoutes encodes specs as a route file. Every endpoint must be a core
// attached to a chip of n.
func WriteRoutes(specs []traffic.Spec, n *network.Network, w io.Writer) error {
	out := routeFile{Routes: make([]route, 0, len(specs))}
	for _, s := range specs {
		src, err := reference(n, s.Source)
		if err != nil {
			return fmt.Errorf("route %d source: %w", s.Key, err)
		}
		rt := route{Key: uint32(s.Key), Source: src, Sinks: make([]coreRef, 0, len(s.Sinks))}
		for _, sink := range s.Sinks {
			ref, err := reference(n, sink)
			if err != nil {
				return fmt.Errorf("route %d sink: %w", s.Key, err)
			}
			rt.Sinks = append(rt.Sinks, ref)
		}
		out.Routes = append(out.Routes, rt)
	}
	return encode(w, out)
}

// ExportRoutes writes specs to a route file at path. See [WriteRoutes].
func ExportRoutes(specs []traffic.Spec, n *network.Network, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteRoutes(specs, n, f)
}

// WriteRouting encodes the forwarding entries of every chip in row-major
// order.
func WriteRouting(n *network.Network, w io.Writer) error {
	out := routingFile{Chips: []chipState{}}
	for c := range n.Chips() {
		if n.NumEntries(c.Router) == 0 {
			continue
		}
		cs := chipState{
			X:     c.Position.X,
			Y:     c.Position.Y,
			Board: position{X: c.Board.X, Y: c.Board.Y},
		}
		for key, e := range n.Entries(c.Router) {
			es := entryState{Key: uint32(key), In: e.In.String(), Out: make([]string, len(e.Out))}
			for i, p := range e.Out {
				es.Out[i] = p.String()
			}
			cs.Entries = append(cs.Entries, es)
		}
		out.Chips = append(out.Chips, cs)
	}
	return encode(w, out)
}

func reference(n *network.Network, core network.NodeID) (coreRef, error) {
	router, err := n.CoreToRouter(core)
	if err != nil {
		return coreRef{}, err
	}
	pos, ok := n.Position(router)
	if !ok {
		return coreRef{}, fmt.Errorf("%w: core %d", ErrUnknownCore, core)
	}
	return coreRef{X: pos.X, Y: pos.Y, Core: n.CoreID(core)}, nil
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
