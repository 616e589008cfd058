// Package classify trains per-class average-color centroids from a labeled
// image directory and assigns new images the label of the nearest centroid.
package classify

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/caiomaz/ovoscan/internal/feature"

	"github.com/rs/zerolog"
)

// Extractor reduces an image file to a color descriptor. It fails softly:
// an error means "no descriptor for this file", not a reason to abort.
type Extractor func(pathname string) (feature.Descriptor, error)

// ErrNoTrainedClasses is returned when not a single class produced a
// centroid. It is the only fatal condition in training; everything below it
// (missing files, classes with no usable images) is absorbed with a warning.
var ErrNoTrainedClasses = errors.New("no classes could be trained")

type centroid struct {
	class Class
	desc  feature.Descriptor
}

// CentroidTable holds one centroid per trained class, in configured class
// order. It is built once by Train and read-only afterward, so concurrent
// classification against it needs no locking.
type CentroidTable struct {
	centroids []centroid
}

// Len reports the number of trained classes.
func (t *CentroidTable) Len() int {
	return len(t.centroids)
}

// Each invokes fn for every centroid in configured class order.
func (t *CentroidTable) Each(fn func(label string, desc feature.Descriptor)) {
	for _, c := range t.centroids {
		fn(c.class.Label, c.desc)
	}
}

// Trainer builds a CentroidTable from the training set described by Config.
type Trainer struct {
	Config  Config
	Extract Extractor
}

// NewTrainer prepares a trainer with the default extractor.
func NewTrainer(config Config) *Trainer {
	return &Trainer{Config: config, Extract: feature.Average}
}

// Train runs the extractor over every expected training image and averages
// the survivors into per-class centroids. Intended to run once at process
// startup; the resulting table is never updated afterward.
func (t *Trainer) Train(log *zerolog.Logger) (*CentroidTable, error) {
	err := t.Config.Validate()
	if err != nil {
		return nil, err
	}

	table := &CentroidTable{}

	for _, class := range t.Config.Classes {
		descriptors := t.collect(class, log)
		if len(descriptors) == 0 {
			log.Warn().Str("class", class.Label).Msg("no usable training images: class will be untrained")
			continue
		}

		table.centroids = append(table.centroids, centroid{
			class: class,
			desc:  feature.Mean(descriptors),
		})

		log.Info().Str("class", class.Label).Int("images", len(descriptors)).Msg("trained")
	}

	if table.Len() == 0 {
		return nil, fmt.Errorf("%w: check the training images under %s", ErrNoTrainedClasses, t.Config.BaseDir)
	}

	return table, nil
}

func (t *Trainer) collect(class Class, log *zerolog.Logger) []feature.Descriptor {
	var descriptors []feature.Descriptor

	for i := 1; i <= t.Config.ImagesPerClass; i++ {
		pathname := filepath.Join(t.Config.BaseDir, fmt.Sprintf("%s-%02d%s", class.Prefix, i, t.Config.Extension))

		desc, err := t.Extract(pathname)
		if err != nil {
			log.Warn().Err(err).Str("class", class.Label).Msg("skipping training image")
			continue
		}

		descriptors = append(descriptors, desc)
	}

	return descriptors
}
