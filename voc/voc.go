// Package voc parses the per-image XML object annotations of the DeepScores
// dataset.  The files follow the PASCAL VOC annotation dialect except that
// bounding box coordinates are fractions of the image width and height in
// [0, 1] rather than absolute pixels.
package voc

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"

	deepscores "github.com/scorevision/go-deepscores"
)

// Object is one annotated object, with its category name and bounding box
// corners as fractions of the image dimensions
type Object struct {
	// Name is the object category name
	Name string
	// XMin, YMin, XMax, YMax are the box corners in [0, 1]
	XMin float64
	YMin float64
	XMax float64
	YMax float64
}

// Annotation is the parsed content of one per-image XML file
type Annotation struct {
	// Width and Height are the image dimensions in pixels
	Width  float64
	Height float64
	// Objects is the ordered object list as it appears in the file
	Objects []Object
}

// ParseFile parses the XML annotation at the given path
func ParseFile(path string) (*Annotation, error) {

	f, err := os.Open(path)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", deepscores.ErrParse, err)
	}

	defer f.Close()

	return Parse(f)
}

// Parse decodes one XML annotation from r.  It fails with ErrParse when the
// size block or any per-object name or bndbox field is missing or
// unparsable
func Parse(r io.Reader) (*Annotation, error) {

	// pointer fields so missing elements are distinguishable from zeros
	var data struct {
		XMLName xml.Name `xml:"annotation"`
		Size    *struct {
			Width  *float64 `xml:"width"`
			Height *float64 `xml:"height"`
		} `xml:"size"`
		Objects []struct {
			Name   *string `xml:"name"`
			BndBox *struct {
				XMin *float64 `xml:"xmin"`
				YMin *float64 `xml:"ymin"`
				XMax *float64 `xml:"xmax"`
				YMax *float64 `xml:"ymax"`
			} `xml:"bndbox"`
		} `xml:"object"`
	}

	if err := xml.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: %v", deepscores.ErrParse, err)
	}

	if data.Size == nil || data.Size.Width == nil || data.Size.Height == nil {
		return nil, fmt.Errorf("%w: missing size element",
			deepscores.ErrParse)
	}

	ann := &Annotation{
		Width:   *data.Size.Width,
		Height:  *data.Size.Height,
		Objects: make([]Object, 0, len(data.Objects)),
	}

	for i, raw := range data.Objects {

		if raw.Name == nil {
			return nil, fmt.Errorf("%w: object %d has no name",
				deepscores.ErrParse, i)
		}

		box := raw.BndBox

		if box == nil || box.XMin == nil || box.YMin == nil ||
			box.XMax == nil || box.YMax == nil {
			return nil, fmt.Errorf("%w: object %d has no bndbox",
				deepscores.ErrParse, i)
		}

		ann.Objects = append(ann.Objects, Object{
			Name: *raw.Name,
			XMin: *box.XMin,
			YMin: *box.YMin,
			XMax: *box.XMax,
			YMax: *box.YMax,
		})
	}

	return ann, nil
}
