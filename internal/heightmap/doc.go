// Package heightmap turns an image source into height data.
//
// A Heightmap moves through three states:
//
//	Unset --Use--> Sourced --Draw--> Rendered
//	                  ^                  |
//	                  +-------Use--------+
//
// Use resolves a source (URL or file reference, decoded image, or an
// existing surface). Draw renders the source onto an off-screen surface
// sized to it. Only a rendered Heightmap answers the extraction methods;
// setting a new source discards the surface until the next Draw.
//
// Extraction methods take an optional *pixels.Region. A nil region means
// the full rendered extent. Regions are passed to the surface unchanged:
// parts outside the surface read as transparent black.
package heightmap
