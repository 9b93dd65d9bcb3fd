// Package board builds populated networks for the standard board shapes.
//
// Three shapes are supported:
//
//   - [Rectangular]: a width x height grid, optionally with wrap-around links.
//   - [Hexagonal]: a single hexagonal board of a given number of layers.
//   - [MultiBoardTorus]: a torus tiled from hexagonal boards arranged in
//     three-board units.
//
// Every shape is built by adding one chip per position and then calling
// [ConnectChips], which links each chip to its east, north-east and north
// neighbours. The opposite links are set by the neighbour's own pass.
//
// [Spec] describes a board declaratively, as read from configuration files,
// and [Build] dispatches it to the matching constructor.
package board
