package classify_test

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/caiomaz/ovoscan/internal/classify"
	"github.com/caiomaz/ovoscan/internal/feature"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nop = zerolog.Nop()

func writeTrainingImage(t *testing.T, dir, prefix string, seq int, c color.RGBA) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, c)
		}
	}

	pathname := filepath.Join(dir, fmt.Sprintf("%s-%02d.png", prefix, seq))
	f, err := os.Create(pathname)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, png.Encode(f, img))
}

func testConfig(dir string, classes ...classify.Class) classify.Config {
	return classify.Config{
		BaseDir:        dir,
		Classes:        classes,
		ImagesPerClass: 6,
		Extension:      ".png",
	}
}

func TestTrainCentroidIsMeanOfUsableImages(t *testing.T) {
	dir := t.TempDir()

	// only 2 of the 6 expected files exist; the centroid must average
	// exactly those two, not treat the rest as zero vectors
	writeTrainingImage(t, dir, "soft", 1, color.RGBA{R: 255, G: 0, B: 0, A: 255})
	writeTrainingImage(t, dir, "soft", 4, color.RGBA{R: 0, G: 0, B: 255, A: 255})

	config := testConfig(dir, classify.Class{Label: "Soft", Prefix: "soft"})
	table, err := classify.NewTrainer(config).Train(&nop)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())

	red, err := feature.Average(filepath.Join(dir, "soft-01.png"))
	require.NoError(t, err)
	blue, err := feature.Average(filepath.Join(dir, "soft-04.png"))
	require.NoError(t, err)
	expected := feature.Mean([]feature.Descriptor{red, blue})

	table.Each(func(label string, desc feature.Descriptor) {
		assert.Equal(t, "Soft", label)
		assert.InDelta(t, expected.H, desc.H, 1e-9)
		assert.InDelta(t, expected.S, desc.S, 1e-9)
		assert.InDelta(t, expected.V, desc.V, 1e-9)
	})
}

func TestTrainSkipsClassWithNoUsableImages(t *testing.T) {
	dir := t.TempDir()

	writeTrainingImage(t, dir, "soft", 1, color.RGBA{R: 250, G: 220, B: 150, A: 255})
	// "hard" has one corrupt file and five missing ones
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hard-01.png"), []byte("junk"), 0644))

	config := testConfig(dir,
		classify.Class{Label: "Soft", Prefix: "soft"},
		classify.Class{Label: "Hard", Prefix: "hard"},
	)

	table, err := classify.NewTrainer(config).Train(&nop)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())

	var labels []string
	table.Each(func(label string, _ feature.Descriptor) {
		labels = append(labels, label)
	})
	assert.Equal(t, []string{"Soft"}, labels)
}

func TestTrainFailsWhenNoClassTrains(t *testing.T) {
	config := testConfig(t.TempDir(),
		classify.Class{Label: "Soft", Prefix: "soft"},
		classify.Class{Label: "Hard", Prefix: "hard"},
	)

	table, err := classify.NewTrainer(config).Train(&nop)
	assert.Nil(t, table)
	assert.ErrorIs(t, err, classify.ErrNoTrainedClasses)
}

func TestTrainFailsWhenTrainingDirMissing(t *testing.T) {
	config := testConfig(filepath.Join(t.TempDir(), "does-not-exist"),
		classify.Class{Label: "Soft", Prefix: "soft"},
	)

	table, err := classify.NewTrainer(config).Train(&nop)
	assert.Nil(t, table)
	assert.ErrorIs(t, err, classify.ErrNoTrainedClasses)
}

func TestTrainRejectsBadConfig(t *testing.T) {
	for name, config := range map[string]classify.Config{
		"no classes":     testConfig(t.TempDir()),
		"no base dir":    {Classes: classify.DefaultClasses(), ImagesPerClass: 6, Extension: ".png"},
		"zero per class": {BaseDir: t.TempDir(), Classes: classify.DefaultClasses(), Extension: ".png"},
		"duplicate": testConfig(t.TempDir(),
			classify.Class{Label: "Soft", Prefix: "a"},
			classify.Class{Label: "Soft", Prefix: "b"},
		),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := classify.NewTrainer(config).Train(&nop)
			assert.Error(t, err)
			assert.NotErrorIs(t, err, classify.ErrNoTrainedClasses)
		})
	}
}

func TestDefaultClassesMatchShippedTrainingSet(t *testing.T) {
	classes := classify.DefaultClasses()
	require.Len(t, classes, 3)
	assert.Equal(t, "Ovo Mole", classes[0].Label)
	assert.Equal(t, "ovo-mole", classes[0].Prefix)
}
