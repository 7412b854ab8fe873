package coco

// BinaryMask is a 2D boolean mask over a bounding box crop window, true where
// a pixel belongs to the object instance being annotated.  Pixels are stored
// row-major and addressed as (x, y) with x being the column
type BinaryMask struct {
	width  int
	height int
	pix    []bool
}

// NewBinaryMask returns an all-background mask of the given dimensions
func NewBinaryMask(width, height int) *BinaryMask {
	return &BinaryMask{
		width:  width,
		height: height,
		pix:    make([]bool, width*height),
	}
}

// Width returns the mask width in pixels
func (m *BinaryMask) Width() int {
	return m.width
}

// Height returns the mask height in pixels
func (m *BinaryMask) Height() int {
	return m.height
}

// At reports whether the pixel at column x, row y is foreground
func (m *BinaryMask) At(x, y int) bool {
	return m.pix[y*m.width+x]
}

// Set marks the pixel at column x, row y as foreground or background
func (m *BinaryMask) Set(x, y int, v bool) {
	m.pix[y*m.width+x] = v
}

// Area returns the number of foreground pixels in the mask
func (m *BinaryMask) Area() int {

	area := 0

	for _, v := range m.pix {
		if v {
			area++
		}
	}

	return area
}
