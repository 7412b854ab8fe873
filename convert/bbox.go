// Package convert implements the DeepScores to COCO annotation conversion
// pipeline: bounding box denormalization, per-object mask extraction, RLE
// encoding and assembly of the final train/validation annotation lists.
package convert

import (
	"fmt"
	"math"

	deepscores "github.com/scorevision/go-deepscores"
	"github.com/scorevision/go-deepscores/coco"
	"github.com/scorevision/go-deepscores/voc"
)

// DenormalizeBBox converts one object's bounding box from fractional image
// coordinates to an absolute pixel box [x, y, width, height].  Width and
// height are rounded to 8 decimal digits to keep the output stable across
// platforms.  Fails with ErrInvalidBox when the resulting width or height is
// negative
func DenormalizeBBox(obj voc.Object, imgWidth, imgHeight float64) (coco.BoundingBox, error) {

	x := obj.XMin * imgWidth
	y := obj.YMin * imgHeight
	w := round8(obj.XMax*imgWidth - x)
	h := round8(obj.YMax*imgHeight - y)

	if w < 0 || h < 0 {
		return coco.BoundingBox{}, fmt.Errorf("%w: %gx%g at (%g, %g)",
			deepscores.ErrInvalidBox, w, h, x, y)
	}

	return coco.BoundingBox{x, y, w, h}, nil
}

// round8 rounds v to 8 decimal digits
func round8(v float64) float64 {
	return math.Round(v*1e8) / 1e8
}
