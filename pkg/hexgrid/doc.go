// Package hexgrid provides coordinate arithmetic for hexagonal meshes and tori.
//
// Chips in a hexagonal mesh are addressed by 2D [Position] values. Displacements
// between chips are expressed in redundant three-axis cube coordinates
// ([Vector3]), where the vector (1, 1, 1) is a zero displacement: moving one
// step along each of the three axes returns to the starting chip.
//
// # Directions
//
// Every chip has six neighbours, one per [Direction]:
//
//	East      = (+1,  0,  0)
//	NorthEast = ( 0,  0, -1)
//	North     = ( 0, +1,  0)
//	West      = (-1,  0,  0)
//	SouthWest = ( 0,  0, +1)
//	South     = ( 0, -1,  0)
//
// Directions are numbered counter-clockwise from East, so [Direction.Opposite]
// is always three steps away.
//
// # Shortest Paths
//
// A vector has many equivalent forms; [Vector3.Canonical] subtracts the median
// component, which yields the form with the smallest Manhattan length.
// [TorusShortestPath] extends this to wrapped boards by trying the three
// re-centerings of the torus and keeping the shortest candidate.
//
// # Shapes
//
// [Hexagon] and [Threeboards] enumerate the chip positions of a hexagonal board
// and the board origins of a three-board torus tiling.
package hexgrid
