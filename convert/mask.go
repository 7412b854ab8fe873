package convert

import (
	"image"
	"math"

	"gocv.io/x/gocv"

	"github.com/scorevision/go-deepscores/coco"
)

// CropWindow computes the integer pixel window covered by a bounding box,
// flooring the top-left corner and ceiling the bottom-right so the window
// always contains the full box.  The window is clamped to the image bounds;
// a box extending past an image edge contributes only its in-image part, so
// the RLE size and area reflect the clamped window
func CropWindow(box coco.BoundingBox, imgWidth, imgHeight int) image.Rectangle {

	x0 := int(math.Floor(box.X()))
	y0 := int(math.Floor(box.Y()))
	x1 := int(math.Ceil(box.X() + box.Width()))
	y1 := int(math.Ceil(box.Y() + box.Height()))

	rect := image.Rect(x0, y0, x1, y1)

	return rect.Intersect(image.Rect(0, 0, imgWidth, imgHeight))
}

// ExtractBinaryMask crops the full segmentation mask to the given window and
// isolates the pixels whose grayscale value equals the category's reserved
// intensity.  Object instances of other categories can overlap the same window,
// filtering on the intensity keeps exactly the instance being annotated.
// Returns the binary mask and its foreground area in pixels
func ExtractBinaryMask(mask gocv.Mat, window image.Rectangle,
	intensity uint8) (*coco.BinaryMask, int) {

	region := mask.Region(window)
	defer region.Close()

	width := region.Cols()
	height := region.Rows()

	bm := coco.NewBinaryMask(width, height)
	area := 0

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {

			if region.GetUCharAt(y, x) == intensity {
				bm.Set(x, y, true)
				area++
			}
		}
	}

	return bm, area
}
