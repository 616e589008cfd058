package classify

import (
	"errors"
	"fmt"

	"github.com/caiomaz/ovoscan/internal/feature"
)

// ErrNoResult indicates the query image could not be reduced to a
// descriptor. A failed query is never given a label; callers must check for
// this instead of assuming a result.
var ErrNoResult = errors.New("image could not be classified")

// Result is one successful classification.
type Result struct {
	Label    string
	Distance float64
	Path     string
}

func (r Result) String() string {
	return fmt.Sprintf("%s (distance %.2f)", r.Label, r.Distance)
}

// Classifier assigns query images the label of the nearest centroid. It
// never mutates the table, so a single Classifier is safe for concurrent
// use.
type Classifier struct {
	Table   *CentroidTable
	Extract Extractor
}

// NewClassifier prepares a classifier over a trained table with the default
// extractor.
func NewClassifier(table *CentroidTable) *Classifier {
	return &Classifier{Table: table, Extract: feature.Average}
}

// Classify extracts the query descriptor and selects the class with the
// strictly smallest Euclidean distance. Equal distances are resolved by
// table order: the first class seen at the winning distance keeps it.
func (c *Classifier) Classify(pathname string) (Result, error) {
	desc, err := c.Extract(pathname)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrNoResult, err)
	}

	best := Result{Path: pathname}
	found := false

	c.Table.Each(func(label string, centroid feature.Descriptor) {
		distance := desc.Distance(centroid)
		if !found || distance < best.Distance {
			best.Label = label
			best.Distance = distance
			found = true
		}
	})

	if !found {
		// only reachable with a hand-built empty table
		return Result{}, fmt.Errorf("%w: centroid table is empty", ErrNoResult)
	}

	return best, nil
}
