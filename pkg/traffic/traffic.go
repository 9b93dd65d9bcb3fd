// Package traffic generates and validates multicast route requests.
//
// A [Spec] names a route key, its source core and the sink cores it must
// reach. Specs come from route files (see package io) or from [Random], which
// draws a reproducible random workload over every core of a network.
package traffic

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/matzehuels/hexroute/pkg/network"
)

// DefaultProbability is the chance that a given core sinks a given route in
// [Random]: on average one sink per hundred chips of eighteen cores.
const DefaultProbability = 0.01 / 18

var (
	// ErrDuplicateKey is returned when two specs share a route key.
	ErrDuplicateKey = errors.New("traffic: duplicate route key")

	// ErrNotCore is returned when a spec names a node that is not a core.
	ErrNotCore = errors.New("traffic: endpoint is not a core")
)

// Spec is a requested multicast route.
type Spec struct {
	Key    network.RouteKey
	Source network.NodeID
	Sinks  []network.NodeID
}

// Cores returns every core of n in chip order, then core order.
func Cores(n *network.Network) []network.NodeID {
	var cores []network.NodeID
	for c := range n.Chips() {
		cores = append(cores, c.Cores...)
	}
	return cores
}

// Random builds one route per core of n, keyed by the core's index in
// [Cores]. Every core, the source included, independently sinks each route
// with probability p. Routes that draw no sinks are omitted. The result is a
// pure function of n, p and seed.
func Random(n *network.Network, p float64, seed uint64) []Spec {
	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	cores := Cores(n)

	var specs []Spec
	for i, src := range cores {
		var sinks []network.NodeID
		for _, c := range cores {
			if rng.Float64() < p {
				sinks = append(sinks, c)
			}
		}
		if len(sinks) == 0 {
			continue
		}
		specs = append(specs, Spec{Key: network.RouteKey(i), Source: src, Sinks: sinks})
	}
	return specs
}

// Validate checks that keys are unique and every endpoint is a core of n.
func Validate(n *network.Network, specs []Spec) error {
	seen := make(map[network.RouteKey]bool, len(specs))
	for _, s := range specs {
		if seen[s.Key] {
			return fmt.Errorf("%w: %d", ErrDuplicateKey, s.Key)
		}
		seen[s.Key] = true
		if !n.IsCore(s.Source) {
			return fmt.Errorf("%w: source %d of key %d", ErrNotCore, s.Source, s.Key)
		}
		for _, sink := range s.Sinks {
			if !n.IsCore(sink) {
				return fmt.Errorf("%w: sink %d of key %d", ErrNotCore, sink, s.Key)
			}
		}
	}
	return nil
}

// Stats summarises a workload.
type Stats struct {
	Routes int
	Sinks  int
}

// Summarize counts routes and sink endpoints in specs.
func Summarize(specs []Spec) Stats {
	st := Stats{Routes: len(specs)}
	for _, s := range specs {
		st.Sinks += len(s.Sinks)
	}
	return st
}
