// Package feature reduces an image file to color features used for
// classification.
package feature

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	_ "golang.org/x/image/bmp"

	"github.com/EdlinOrg/prominentcolor"
	"github.com/lucasb-eyer/go-colorful"
)

// Descriptor is the average color of one image in HSV space: hue in degrees
// [0,360), saturation and value in [0,1]. Hue is treated as a linear scalar
// even though it wraps; both training and classification rely on that (see
// DESIGN.md).
type Descriptor struct {
	H float64
	S float64
	V float64
}

// Distance is the Euclidean distance between two descriptors.
func (d Descriptor) Distance(o Descriptor) float64 {
	dh := d.H - o.H
	ds := d.S - o.S
	dv := d.V - o.V
	return math.Sqrt(dh*dh + ds*ds + dv*dv)
}

func (d Descriptor) String() string {
	return fmt.Sprintf("h=%.2f s=%.3f v=%.3f", d.H, d.S, d.V)
}

// Mean is the component-wise arithmetic mean of the provided descriptors.
func Mean(descriptors []Descriptor) Descriptor {
	var sum Descriptor
	for _, d := range descriptors {
		sum.H += d.H
		sum.S += d.S
		sum.V += d.V
	}

	n := float64(len(descriptors))
	return Descriptor{H: sum.H / n, S: sum.S / n, V: sum.V / n}
}

func load(pathname string) (image.Image, error) {
	f, err := os.Open(pathname)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", pathname, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("unable to decode %s: %w", pathname, err)
	}

	return img, nil
}

// Average computes the per-channel mean HSV over every pixel of the image at
// pathname. Every pixel contributes equally: no cropping, resizing, or
// region selection. A missing or undecodable file is an expected outcome and
// is reported as a plain error for the caller to absorb.
func Average(pathname string) (Descriptor, error) {
	img, err := load(pathname)
	if err != nil {
		return Descriptor{}, err
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		return Descriptor{}, fmt.Errorf("image %s has no pixels", pathname)
	}

	var sum Descriptor
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue // fully transparent: counts as black
			}

			h, s, v := c.Hsv()
			sum.H += h
			sum.S += s
			sum.V += v
		}
	}

	n := float64(bounds.Dx() * bounds.Dy())
	return Descriptor{H: sum.H / n, S: sum.S / n, V: sum.V / n}, nil
}

// Dominant reports the most prominent color of the image at pathname as an
// RGB hex string. Used for diagnostics only; classification relies solely on
// Average.
func Dominant(pathname string) (string, error) {
	img, err := load(pathname)
	if err != nil {
		return "", err
	}

	colors, err := prominentcolor.KmeansWithArgs(prominentcolor.ArgumentNoCropping, img)
	if err != nil {
		return "", fmt.Errorf("unable to extract dominant color: %w", err)
	}

	var best *prominentcolor.ColorItem
	for i, color := range colors {
		if best == nil || color.Cnt > best.Cnt {
			best = &colors[i]
		}
	}

	if best == nil {
		return "", errors.New("no colors found")
	}

	return best.AsString(), nil
}
