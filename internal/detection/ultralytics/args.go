package ultralytics

import (
	"strconv"

	"github.com/ironsheep/manga-bubble-detector/internal/detection"
)

// TrainArgs builds the argument list for "yolo detect train".
func TrainArgs(dataConfig string, hp detection.Hyperparameters, project, run string) []string {
	return []string{
		"detect", "train",
		kv("data", dataConfig),
		kv("model", hp.BaseModel),
		kv("epochs", strconv.Itoa(hp.Epochs)),
		kv("imgsz", strconv.Itoa(hp.ImageSize)),
		kv("patience", strconv.Itoa(hp.Patience)),
		kv("batch", strconv.Itoa(hp.Batch)),
		kv("cos_lr", pyBool(hp.CosLR)),
		kv("mixup", pyFloat(hp.Mixup)),
		kv("copy_paste", pyFloat(hp.CopyPaste)),
		kv("degrees", pyFloat(hp.Degrees)),
		kv("scale", pyFloat(hp.Scale)),
		kv("workers", strconv.Itoa(hp.Workers)),
		kv("project", project),
		kv("name", run),
		kv("exist_ok", "True"),
		kv("pretrained", "True"),
		kv("optimizer", hp.Optimizer),
		kv("verbose", "True"),
		kv("seed", strconv.FormatInt(hp.Seed, 10)),
		kv("deterministic", pyBool(hp.Deterministic)),
		kv("cache", pyBool(hp.Cache)),
		kv("amp", pyBool(hp.AMP)),
		kv("device", hp.Device),
	}
}

// PredictArgs builds the argument list for "yolo detect predict" writing
// normalized label files with confidences under project/name/labels.
func PredictArgs(checkpoint, source, project, name string) []string {
	return []string{
		"detect", "predict",
		kv("model", checkpoint),
		kv("source", source),
		kv("project", project),
		kv("name", name),
		kv("exist_ok", "True"),
		kv("save", "False"),
		kv("save_txt", "True"),
		kv("save_conf", "True"),
		kv("verbose", "False"),
	}
}

func kv(key, value string) string {
	return key + "=" + value
}

func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func pyFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
