// Package coco implements the COCO style annotation types, the uncompressed
// run-length encoding (RLE) segmentation codec and the corpus output writer.
package coco

// BoundingBox is an absolute pixel rectangle in COCO order
// [x, y, width, height].  It marshals to a plain JSON array
type BoundingBox [4]float64

// X returns the left edge of the box
func (b BoundingBox) X() float64 { return b[0] }

// Y returns the top edge of the box
func (b BoundingBox) Y() float64 { return b[1] }

// Width returns the box width
func (b BoundingBox) Width() float64 { return b[2] }

// Height returns the box height
func (b BoundingBox) Height() float64 { return b[3] }

// RLE is the uncompressed COCO run-length encoding of a binary mask.  Counts
// holds alternating background/foreground run lengths in column-major
// traversal order, always starting with a background run.  Size is the mask
// dimensions as [height, width]
type RLE struct {
	Counts []int  `json:"counts"`
	Size   [2]int `json:"size"`
}

// Annotation is one COCO object detection annotation record.  Records are
// built once by the converter and never mutated afterwards
type Annotation struct {
	Segmentation RLE         `json:"segmentation"`
	Area         int         `json:"area"`
	IsCrowd      int         `json:"iscrowd"`
	ImageID      int         `json:"image_id"`
	BBox         BoundingBox `json:"bbox"`
	CategoryID   int         `json:"category_id"`
	ID           int         `json:"id"`
}

// Image describes one source image in the corpus container
type Image struct {
	ID       int    `json:"id"`
	FileName string `json:"file_name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// Category describes one object category in the corpus container
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
