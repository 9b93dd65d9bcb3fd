// Package network models a mesh of routers and processing cores and the
// multicast forwarding state stored on each router.
//
// # Nodes
//
// A [Network] is an arena of nodes addressed by [NodeID] handles. Each node is
// either a core or a router:
//
//   - Cores have a single port ([NetworkPort]) and record the route keys they
//     source and sink.
//   - Routers have six external ports, one per [hexgrid.Direction], and
//     eighteen internal ports, one per local core. Each router holds a
//     forwarding table mapping a [RouteKey] to an [Entry].
//
// Links are symmetric: [Network.Connect] sets both ends, and
// [Network.Disconnect] clears both ends.
//
// # Chips
//
// A chip groups one router with its cores at a 2D [hexgrid.Position]. The
// network keeps a registry of chips so that routing code can resolve positions
// to routers; [Network.Bounds] reports the grid size spanned by the chips.
//
// # Routes
//
// [Network.MergeRoute] installs a node sequence
// [source core, router, ..., router, sink core] into the forwarding tables.
// Merging is idempotent and order-independent, so a multicast tree is built by
// merging one path per sink. [Network.AllRoutes] recovers the source and sinks
// of every route key from the cores.
package network
