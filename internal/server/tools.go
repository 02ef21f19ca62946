package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        typ,
		"description": description,
	}
}

func object(properties map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// rawDetectionSchema describes a detector box in corner form.
var rawDetectionSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"box": object(map[string]interface{}{
			"x1": prop("number", "Left edge in pixels"),
			"y1": prop("number", "Top edge in pixels"),
			"x2": prop("number", "Right edge in pixels"),
			"y2": prop("number", "Bottom edge in pixels"),
		}, "x1", "y1", "x2", "y2"),
		"confidence": prop("number", "Detector confidence in [0, 1]"),
		"class":      prop("integer", "Category id"),
	},
	"required": []string{"box", "confidence", "class"},
}

// detectionSchema describes a cleaned detection: top-left corner plus size.
var detectionSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"x":          prop("number", "Left edge in pixels"),
		"y":          prop("number", "Top edge in pixels"),
		"width":      prop("number", "Box width in pixels"),
		"height":     prop("number", "Box height in pixels"),
		"confidence": prop("number", "Detector confidence in [0, 1]"),
		"class":      prop("integer", "Category id"),
	},
	"required": []string{"x", "y", "width", "height", "class"},
}

func arrayOf(items map[string]interface{}, description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"items":       items,
		"description": description,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Dataset
		{
			Name:        "labels_count",
			Description: "Count annotation instances per category in one label file or every .txt file of a directory. Unreadable files and malformed lines are skipped.",
			InputSchema: object(map[string]interface{}{
				"path": prop("string", "Absolute path to a label file or label directory"),
			}, "path"),
		},
		{
			Name:        "dataset_split",
			Description: "Dry-run the stratified train/val split over an image and label directory. Nothing is copied.",
			InputSchema: object(map[string]interface{}{
				"images_dir": prop("string", "Directory of page images"),
				"labels_dir": prop("string", "Directory of sibling label files"),
				"ratio":      prop("number", "Train share per category, default from config (0.8)"),
				"seed":       prop("integer", "Shuffle seed, default from config (42)"),
			}, "images_dir", "labels_dir"),
		},
		{
			Name:        "class_weights",
			Description: "Compute per-category loss weights total/(categories*count) from counts or from a label directory.",
			InputSchema: object(map[string]interface{}{
				"counts":     prop("object", "Map of category id to instance count"),
				"labels_dir": prop("string", "Label directory to count instead of passing counts"),
			}),
		},
		{
			Name:        "images_sanitize",
			Description: "Re-encode every image in a directory in place as opaque 8-bit RGB. Corrupted files are skipped.",
			InputSchema: object(map[string]interface{}{
				"dir": prop("string", "Directory of images to rewrite"),
			}, "dir"),
		},
		{
			Name:        "image_info",
			Description: "Report dimensions, format and color model of an image, and whether it needs sanitizing.",
			InputSchema: object(map[string]interface{}{
				"path": prop("string", "Absolute path to the image file"),
			}, "path"),
		},

		// Detections
		{
			Name:        "detections_postprocess",
			Description: "Apply the layout rules to raw detector boxes: near-square low-confidence bubbles become narration, wide low-confidence boxes become interface text.",
			InputSchema: object(map[string]interface{}{
				"detections": arrayOf(rawDetectionSchema, "Raw detections in corner form"),
			}, "detections"),
		},
		{
			Name:        "detections_render",
			Description: "Draw cleaned detections with category colors and labels onto an image and save it.",
			InputSchema: object(map[string]interface{}{
				"path":       prop("string", "Absolute path to the page image"),
				"output":     prop("string", "Path to write the annotated image to"),
				"detections": arrayOf(detectionSchema, "Cleaned detections"),
			}, "path", "output", "detections"),
		},
		{
			Name:        "detection_crop",
			Description: "Crop one detection out of a page and return it as base64-encoded PNG.",
			InputSchema: object(map[string]interface{}{
				"path":      prop("string", "Absolute path to the page image"),
				"detection": detectionSchema,
				"pad":       prop("integer", "Margin in pixels around the box. Default 0"),
				"scale":     prop("number", "Optional scale factor. Default 1.0"),
			}, "path", "detection"),
		},
		{
			Name:        "detections_ocr",
			Description: "Read the text inside each detection with Tesseract. Returns one transcript per detection, in order.",
			InputSchema: object(map[string]interface{}{
				"path":       prop("string", "Absolute path to the page image"),
				"detections": arrayOf(detectionSchema, "Cleaned detections"),
				"language":   prop("string", "Tesseract language code, default from config (eng)"),
				"pad":        prop("integer", "Margin in pixels around each box. Default 4"),
			}, "path", "detections"),
		},
	}
}

func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return s.result(req.ID, map[string]interface{}{"tools": GetToolDefinitions()})
}
