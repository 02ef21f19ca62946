// Package detection defines detection records, the rule engine that cleans
// raw detector output, and the capability interfaces through which the
// external object-detection library is driven.
//
// # Coordinate System
//
// Boxes use pixel coordinates with the origin at the top-left corner:
//   - RawDetection boxes are in corner form (X1, Y1, X2, Y2)
//   - Cleaned Detection records are top-left corner plus width and height
//
// # Post-Processing Rules
//
// Two relabeling rules run in a fixed order on every detection:
//
//  1. Near-square (0.9 < w/h < 1.1) primary-category boxes below 0.9
//     confidence become the secondary category.
//  2. Wide (w/h > 3.0) boxes not already interface text and below 0.85
//     confidence become interface text.
//
// Rule 2 sees the category produced by rule 1. A zero-height box has aspect
// ratio 0 and triggers neither rule. Rules never drop or move a box; only
// the category can change.
//
// # Detector Backends
//
// Training and inference are delegated to an external library through the
// Trainer and Predictor interfaces. The ultralytics subpackage implements
// both on top of the Ultralytics "yolo" command-line tool.
package detection
