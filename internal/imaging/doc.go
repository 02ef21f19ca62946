// Package imaging loads, repairs, crops and annotates manga page images.
//
// # Sanitizing
//
// Sanitize rewrites every page in a directory as opaque 8-bit RGB. Palette,
// grayscale and alpha images decode fine in Go but are mishandled by some
// training data loaders; re-encoding them up front, and logging the files
// that cannot be decoded at all, keeps a single bad page from failing a
// training run.
//
// # Rendering
//
// Renderer draws cleaned detections as colored outlines with a
// "<category> <confidence>" label, using the Palette built from the category
// table. A page that cannot be decoded is an error here, unlike in the
// dataset stages where it is skipped.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner. Regions
// are inclusive at the top-left and exclusive at the bottom-right.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The other functions are stateless.
package imaging
