package labels

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Ext is the annotation file extension.
const Ext = ".txt"

// Record is one bounding box annotation.
type Record struct {
	Class   int     `json:"class"`
	XCenter float64 `json:"x_center"`
	YCenter float64 `json:"y_center"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// ParseRecord parses one annotation line. It reports false for lines with
// fewer than five fields or fields that are not numbers.
func ParseRecord(line string) (Record, bool) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return Record{}, false
	}
	return parseFields(fields)
}

// ParseClass reads the category of one annotation line. A line counts when
// it has at least five fields and an integer first field; the coordinates
// are not checked.
func ParseClass(line string) (int, bool) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return 0, false
	}
	class, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, false
	}
	return class, true
}

// ParsePrediction parses a detector output line, which carries an extra
// trailing confidence field. A line without it gets confidence 1.
func ParsePrediction(line string) (Record, float64, bool) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return Record{}, 0, false
	}
	rec, ok := parseFields(fields)
	if !ok {
		return Record{}, 0, false
	}
	conf := 1.0
	if len(fields) > 5 {
		c, err := strconv.ParseFloat(fields[5], 64)
		if err != nil {
			return Record{}, 0, false
		}
		conf = c
	}
	return rec, conf, true
}

func parseFields(fields []string) (Record, bool) {
	class, err := strconv.Atoi(fields[0])
	if err != nil || class < 0 {
		return Record{}, false
	}

	var coords [4]float64
	for i := range coords {
		v, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return Record{}, false
		}
		coords[i] = v
	}

	return Record{
		Class:   class,
		XCenter: coords[0],
		YCenter: coords[1],
		Width:   coords[2],
		Height:  coords[3],
	}, true
}

// LabelPath returns the annotation path paired with imageName: the same
// basename with the .txt extension, inside labelsDir.
func LabelPath(labelsDir, imageName string) string {
	return filepath.Join(labelsDir, Stem(imageName)+Ext)
}

// Stem strips the directory and extension from a filename.
func Stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
