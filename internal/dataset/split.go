package dataset

import (
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/ironsheep/manga-bubble-detector/internal/labels"
)

// Split is the outcome of a stratified split. Train and Val hold image
// filenames in assignment order; Counts is the instance count per category
// over every labeled image.
type Split struct {
	Train  []string      `json:"train"`
	Val    []string      `json:"val"`
	Counts labels.Counts `json:"counts"`
}

// Splitter assigns labeled images to the train or val partition.
type Splitter struct {
	// Ratio is the target share of each category's images in train.
	Ratio float64
	// Seed fixes the shuffle order.
	Seed   int64
	Logger *zap.Logger
}

// Split reads imagesDir and the sibling annotations in labelsDir and returns
// the assignment. Images without a label file, or whose label file has no
// well-formed record, are left out of both partitions.
func (s Splitter) Split(imagesDir, labelsDir string) (*Split, error) {
	if s.Ratio <= 0 || s.Ratio >= 1 {
		return nil, fmt.Errorf("split ratio %v out of range (0,1)", s.Ratio)
	}
	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}

	names, err := ListImages(imagesDir)
	if err != nil {
		return nil, err
	}

	total := make(labels.Counts)
	classes := make(map[string][]int, len(names))
	for _, name := range names {
		path := labels.LabelPath(labelsDir, name)
		if !isFile(path) {
			log.Debug("image has no label file", zap.String("image", name))
			continue
		}
		counts := labels.CountFile(path, log)
		total.Add(counts)
		classes[name] = counts.Classes()
	}

	train, val := Assign(names, classes, s.Ratio, s.Seed)
	log.Info("dataset split",
		zap.Int("images", len(names)),
		zap.Int("train", len(train)),
		zap.Int("val", len(val)),
		zap.Int("categories", len(total)))

	return &Split{Train: train, Val: val, Counts: total}, nil
}

// Assign is the pure core of the splitter. names is shuffled with seed; each
// image then votes once per category it carries: train if that category's
// running train share is below ratio (or it has no history yet), val
// otherwise. The majority wins and ties go to train. Names missing from
// classes, or mapped to no category, are skipped.
func Assign(names []string, classes map[string][]int, ratio float64, seed int64) (train, val []string) {
	order := make([]string, len(names))
	copy(order, names)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	trained := make(map[int]int)
	validated := make(map[int]int)

	for _, name := range order {
		cats, ok := classes[name]
		if !ok || len(cats) == 0 {
			continue
		}

		trainVotes, valVotes := 0, 0
		for _, c := range cats {
			seen := trained[c] + validated[c]
			if seen == 0 || float64(trained[c])/float64(seen) < ratio {
				trainVotes++
			} else {
				valVotes++
			}
		}

		if trainVotes >= valVotes {
			train = append(train, name)
			for _, c := range cats {
				trained[c]++
			}
		} else {
			val = append(val, name)
			for _, c := range cats {
				validated[c]++
			}
		}
	}

	return train, val
}
