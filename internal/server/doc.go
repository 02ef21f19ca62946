// Package server exposes the bubble detector's dataset and detection tools
// over the MCP (Model Context Protocol), so an assistant can inspect labels,
// clean up detector output and look at pages while a dataset is being built.
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
// Logs are written through zap to stderr and never interleave with responses.
//
// # Available Tools
//
// Dataset:
//   - labels_count: Per-category instance counts for a label file or directory
//   - dataset_split: Dry-run stratified train/val split
//   - class_weights: Loss weights from counts or a label directory
//   - images_sanitize: Rewrite a directory of images as opaque RGB
//   - image_info: Dimensions, color model and sanitize status of one image
//
// Detections:
//   - detections_postprocess: Apply the layout rules to raw detector boxes
//   - detections_render: Draw detections onto a page
//   - detection_crop: Crop one detection as base64 PNG
//   - detections_ocr: Read the text inside each detection
//
// Rule thresholds, category names and colors come from the configuration the
// server was created with.
//
// # Image Caching
//
// Decoded pages are cached by path for the lifetime of the server. Tools that
// rewrite files drop the affected cache entries.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
package server
