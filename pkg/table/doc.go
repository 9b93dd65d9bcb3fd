// Package table compiles router forwarding state into binary routing tables.
//
// Each forwarding entry becomes a [Row] with an exact-match mask and a route
// bitfield: bits 0-5 select the external links (east, north-east, north,
// west, south-west, south) and bit 6+i selects local core i.
//
// Entries that a router would forward correctly without a table entry are
// skipped: a packet that arrives on an external link and leaves only on the
// opposite link is default routed by the hardware.
//
// # Formats
//
// Two little-endian encodings are supported:
//
//	loader   16 bytes per row: u16 index, u16 count, u32 route, u32 key, u32 mask,
//	         followed by one all-ones terminator row.
//	runtime  12 bytes per row: u32 key, u32 mask, u32 route, no terminator;
//	         the row count is returned separately.
//
// The loader format is read by the boot-time table loader; the runtime format
// matches the runtime routing-table API, which takes the count as a separate
// argument.
package table
