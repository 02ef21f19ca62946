// Package labels reads YOLO-format annotation files.
//
// An annotation file holds one box per line:
//
//	<class_id> <x_center> <y_center> <width> <height>
//
// Coordinates are normalized to [0,1]. Lines with fewer than five fields are
// discarded without failing the file, and an unreadable file counts as empty,
// so scans over sparsely labeled datasets never abort.
package labels
