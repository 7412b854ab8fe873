// Package render draws converted annotations back onto their source images
// for visual inspection of the conversion output.  It is a QA aid only, the
// conversion pipeline itself never depends on it.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/llgcode/draw2d/draw2dimg"
	xdraw "golang.org/x/image/draw"

	"github.com/scorevision/go-deepscores/coco"
)

// Overlay blends an annotation's decoded segmentation mask over img inside
// its bounding box window using the given alpha.  The mask color is taken
// from the category palette
func Overlay(img *image.RGBA, ann coco.Annotation, alpha float64) error {

	mask, err := coco.DecodeRLE(ann.Segmentation)

	if err != nil {
		return fmt.Errorf("annotation %d: %w", ann.ID, err)
	}

	clr := CategoryColor(ann.CategoryID)

	// mask pixel (0,0) maps to the floored top-left box corner
	offX := int(ann.BBox.X())
	offY := int(ann.BBox.Y())

	for y := 0; y < mask.Height(); y++ {
		for x := 0; x < mask.Width(); x++ {

			if !mask.At(x, y) {
				continue
			}

			px := offX + x
			py := offY + y

			if !image.Pt(px, py).In(img.Rect) {
				continue
			}

			old := img.RGBAAt(px, py)

			img.SetRGBA(px, py, color.RGBA{
				R: blend(old.R, clr.R, alpha),
				G: blend(old.G, clr.G, alpha),
				B: blend(old.B, clr.B, alpha),
				A: 255,
			})
		}
	}

	return nil
}

// DrawBox strokes the annotation's bounding box outline on img
func DrawBox(img *image.RGBA, ann coco.Annotation) {

	gc := draw2dimg.NewGraphicContext(img)
	gc.SetStrokeColor(CategoryColor(ann.CategoryID))
	gc.SetLineWidth(1)

	x := ann.BBox.X()
	y := ann.BBox.Y()

	gc.MoveTo(x, y)
	gc.LineTo(x+ann.BBox.Width(), y)
	gc.LineTo(x+ann.BBox.Width(), y+ann.BBox.Height())
	gc.LineTo(x, y+ann.BBox.Height())
	gc.Close()
	gc.Stroke()
}

// Thumbnail scales img down so its longer side is maxSide pixels, returning
// img unchanged when it is already small enough
func Thumbnail(img *image.RGBA, maxSide int) *image.RGBA {

	w := img.Rect.Dx()
	h := img.Rect.Dy()

	longer := w

	if h > longer {
		longer = h
	}

	if longer <= maxSide {
		return img
	}

	scale := float64(maxSide) / float64(longer)
	dst := image.NewRGBA(image.Rect(0, 0,
		int(float64(w)*scale), int(float64(h)*scale)))

	xdraw.ApproxBiLinear.Scale(dst, dst.Rect, img, img.Rect, draw.Over, nil)

	return dst
}

// blend mixes the overlay channel into the original channel by alpha
func blend(orig, over uint8, alpha float64) uint8 {
	return uint8(float64(orig)*(1-alpha) + float64(over)*alpha)
}
