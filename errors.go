package deepscores

import "errors"

var (
	// ErrParse indicates a malformed XML annotation file, such as a missing
	// size block or an object without a name or bndbox
	ErrParse = errors.New("malformed annotation")
	// ErrImageLoad indicates the segmentation mask image is missing, corrupt
	// or its dimensions do not match the size declared in the XML annotation
	ErrImageLoad = errors.New("segmentation mask load failed")
	// ErrLookup indicates a category or image name is absent from the
	// supplied lookup tables
	ErrLookup = errors.New("name not in lookup")
	// ErrInvalidBox indicates a bounding box with negative width or height
	ErrInvalidBox = errors.New("invalid bounding box")
)
