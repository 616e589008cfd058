package classify_test

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/caiomaz/ovoscan/internal/classify"
	"github.com/caiomaz/ovoscan/internal/feature"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTable trains a table through a stub extractor that maps filename
// prefixes to fixed descriptors, bypassing the filesystem entirely.
func stubTable(t *testing.T, descriptors map[string]feature.Descriptor, classes ...classify.Class) *classify.CentroidTable {
	t.Helper()

	trainer := &classify.Trainer{
		Config: classify.Config{
			BaseDir:        "unused",
			Classes:        classes,
			ImagesPerClass: 1,
			Extension:      ".png",
		},
		Extract: func(pathname string) (feature.Descriptor, error) {
			for prefix, desc := range descriptors {
				if strings.Contains(pathname, prefix) {
					return desc, nil
				}
			}
			return feature.Descriptor{}, fmt.Errorf("no stub for %s", pathname)
		},
	}

	table, err := trainer.Train(&nop)
	require.NoError(t, err)
	return table
}

func stubClassifier(table *classify.CentroidTable, query feature.Descriptor) *classify.Classifier {
	return &classify.Classifier{
		Table: table,
		Extract: func(pathname string) (feature.Descriptor, error) {
			return query, nil
		},
	}
}

func TestClassifyNearestCentroidWins(t *testing.T) {
	table := stubTable(t,
		map[string]feature.Descriptor{
			"soft":   {H: 30, S: 0.5, V: 0.9},
			"medium": {H: 40, S: 0.4, V: 0.8},
			"hard":   {H: 55, S: 0.2, V: 0.7},
		},
		classify.Class{Label: "Soft", Prefix: "soft"},
		classify.Class{Label: "Medium", Prefix: "medium"},
		classify.Class{Label: "Hard", Prefix: "hard"},
	)

	c := stubClassifier(table, feature.Descriptor{H: 41, S: 0.4, V: 0.8})

	result, err := c.Classify("query.png")
	require.NoError(t, err)
	assert.Equal(t, "Medium", result.Label)
	assert.InDelta(t, 1, result.Distance, 1e-9)
	assert.Equal(t, "query.png", result.Path)
}

func TestClassifyExactCentroidMatchHasZeroDistance(t *testing.T) {
	centroid := feature.Descriptor{H: 30, S: 0.5, V: 0.9}
	table := stubTable(t,
		map[string]feature.Descriptor{
			"soft": centroid,
			"hard": {H: 120, S: 0.1, V: 0.2},
		},
		classify.Class{Label: "Soft", Prefix: "soft"},
		classify.Class{Label: "Hard", Prefix: "hard"},
	)

	result, err := stubClassifier(table, centroid).Classify("query.png")
	require.NoError(t, err)
	assert.Equal(t, "Soft", result.Label)
	assert.Zero(t, result.Distance)
}

func TestClassifyTieBreaksByConfiguredOrder(t *testing.T) {
	table := stubTable(t,
		map[string]feature.Descriptor{
			"low":  {H: 10},
			"high": {H: 30},
		},
		classify.Class{Label: "Low", Prefix: "low"},
		classify.Class{Label: "High", Prefix: "high"},
	)

	// the query sits exactly between both centroids: the first configured
	// class must keep the win
	result, err := stubClassifier(table, feature.Descriptor{H: 20}).Classify("query.png")
	require.NoError(t, err)
	assert.Equal(t, "Low", result.Label)
}

func TestClassifyIsDeterministic(t *testing.T) {
	table := stubTable(t,
		map[string]feature.Descriptor{
			"soft": {H: 30, S: 0.5, V: 0.9},
			"hard": {H: 55, S: 0.2, V: 0.7},
		},
		classify.Class{Label: "Soft", Prefix: "soft"},
		classify.Class{Label: "Hard", Prefix: "hard"},
	)

	c := stubClassifier(table, feature.Descriptor{H: 33, S: 0.44, V: 0.85})

	first, err := c.Classify("query.png")
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		next, err := c.Classify("query.png")
		require.NoError(t, err)
		assert.Equal(t, first, next)
	}
}

func TestClassifyUnreadableQueryReportsNoResult(t *testing.T) {
	table := stubTable(t,
		map[string]feature.Descriptor{"soft": {H: 30}},
		classify.Class{Label: "Soft", Prefix: "soft"},
	)

	c := classify.NewClassifier(table) // real extractor
	_, err := c.Classify("no/such/file.png")
	assert.ErrorIs(t, err, classify.ErrNoResult)
}

// end-to-end over real files: three tightly clustered classes of six images
// each, and a query matching one cluster's center.
func TestClassifyTrainedOnRealImages(t *testing.T) {
	dir := t.TempDir()

	shades := map[string][]color.RGBA{
		"ovo-mole":    make([]color.RGBA, 6),
		"ovo-ponto":   make([]color.RGBA, 6),
		"ovo-passado": make([]color.RGBA, 6),
	}
	for i := 0; i < 6; i++ {
		jitter := uint8(i)
		shades["ovo-mole"][i] = color.RGBA{R: 250, G: 200 + jitter, B: 120, A: 255}
		shades["ovo-ponto"][i] = color.RGBA{R: 240, G: 230 + jitter, B: 180, A: 255}
		shades["ovo-passado"][i] = color.RGBA{R: 230, G: 230, B: 210 + jitter, A: 255}
	}

	for prefix, colors := range shades {
		for i, c := range colors {
			writeTrainingImage(t, dir, prefix, i+1, c)
		}
	}

	config := testConfig(dir, classify.DefaultClasses()...)
	table, err := classify.NewTrainer(config).Train(&nop)
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())

	writeTrainingImage(t, dir, "query", 1, color.RGBA{R: 250, G: 202, B: 120, A: 255})

	result, err := classify.NewClassifier(table).Classify(filepath.Join(dir, "query-01.png"))
	require.NoError(t, err)
	assert.Equal(t, "Ovo Mole", result.Label)
}
