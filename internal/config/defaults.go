package config

import "github.com/spf13/viper"

// DefaultCategories is the five-class manga layout table.
func DefaultCategories() []Category {
	return []Category{
		{ID: 0, Name: "bubble", Color: "#0000FF"},
		{ID: 1, Name: "narration", Color: "#FFFF00"},
		{ID: 2, Name: "other", Color: "#FF0000"},
		{ID: 3, Name: "text", Color: "#00FF00"},
		{ID: 4, Name: "ui", Color: "#FF00FF"},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)

	v.SetDefault("data.input", "data/raw")
	v.SetDefault("data.output", "data")
	v.SetDefault("data.rawimages", "raw_images")
	v.SetDefault("data.rawlabels", "raw_labels")

	v.SetDefault("split.ratio", 0.8)
	v.SetDefault("split.seed", 42)

	v.SetDefault("train.basemodel", "yolov8n.pt")
	v.SetDefault("train.epochs", 50)
	v.SetDefault("train.imgsz", 512)
	v.SetDefault("train.patience", 15)
	v.SetDefault("train.batch", 2)
	v.SetDefault("train.coslr", true)
	v.SetDefault("train.mixup", 0.1)
	v.SetDefault("train.copypaste", 0.1)
	v.SetDefault("train.degrees", 10.0)
	v.SetDefault("train.scale", 0.5)
	v.SetDefault("train.workers", 0)
	v.SetDefault("train.optimizer", "Adam")
	v.SetDefault("train.seed", 42)
	v.SetDefault("train.deterministic", true)
	v.SetDefault("train.cache", false)
	v.SetDefault("train.amp", false)
	v.SetDefault("train.device", "0")

	v.SetDefault("model.dir", "models")
	v.SetDefault("model.checkpoint", "models/best.pt")

	v.SetDefault("infer.testdir", "data/test_set")
	v.SetDefault("infer.outputdir", "predictions/test_set")
	v.SetDefault("infer.samples", 5)
	v.SetDefault("infer.language", "eng")

	v.SetDefault("rules.squaremin", 0.9)
	v.SetDefault("rules.squaremax", 1.1)
	v.SetDefault("rules.squaremaxconf", 0.9)
	v.SetDefault("rules.wideminratio", 3.0)
	v.SetDefault("rules.widemaxconf", 0.85)
	v.SetDefault("rules.primary", 0)
	v.SetDefault("rules.secondary", 1)
	v.SetDefault("rules.interface", 3)

	v.SetDefault("backend.command", "yolo")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	categories := make([]map[string]interface{}, 0, 5)
	for _, c := range DefaultCategories() {
		categories = append(categories, map[string]interface{}{
			"id":    c.ID,
			"name":  c.Name,
			"color": c.Color,
		})
	}
	v.SetDefault("categories", categories)
}
