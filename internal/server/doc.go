// Package server implements the MCP (Model Context Protocol) server that
// exposes heightmap extraction as tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Source and surface:
//   - heightmap_use: Set the active source from a path or URL
//   - heightmap_draw: Render the active source onto the surface
//   - heightmap_dimensions: Report state and rendered size
//
// Flat views:
//   - heightmap_flat_array: Raw RGBA bytes
//   - heightmap_flat_channel_array: One channel, one byte per pixel
//   - heightmap_flat_average_array: RGB average per pixel
//   - heightmap_flat_rgba_array: One RGBA tuple per pixel
//
// Grid views (rows of the region width):
//   - heightmap_channel_array
//   - heightmap_average_array
//   - heightmap_rgba_array
//
// Helpers:
//   - heightmap_sample: RGBA and average at one pixel
//   - heightmap_preview: Average grid as a grayscale PNG
//
// Every extraction tool accepts an optional "region" object with x, y, w
// and h. Omitted offsets are 0 and omitted sizes are the full rendered
// width or height. Byte values are returned as JSON integer arrays.
//
// # State
//
// The server holds one active heightmap. heightmap_use replaces its source
// and heightmap_draw must be called again before extracting. Loaded
// sources are cached by path or URL for the life of the process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
package server
