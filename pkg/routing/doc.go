// Package routing computes multicast routes over a [network.Network].
//
// A routing algorithm takes a source core and a set of sink cores and returns
// one node sequence per reachable sink:
//
//	[source core, source router, ..., sink router, sink core]
//
// plus the sinks it could not reach. The sequences are not installed; callers
// merge them with [network.Network.MergeRoute].
//
// # Dimension-Order Routing
//
// [DimensionOrder] computes the minimal displacement from source chip to sink
// chip and walks it one axis at a time, in a configurable [Order]. With
// wrap-around enabled the displacement is the shortest path on the torus and
// positions are reduced modulo the network bounds at every hop.
//
// Routing is deterministic: the same inputs always produce the same paths.
package routing
