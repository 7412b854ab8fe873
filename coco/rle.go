package coco

import "fmt"

// EncodeRLE encodes a binary mask into the uncompressed COCO run-length
// form.  The mask is traversed in column-major order, down each column then
// left to right across columns, and maximal runs of equal value are emitted
// as their lengths.  Runs alternate background/foreground starting with
// background; when the very first pixel is foreground a zero-length
// background run is prepended so the alternation always holds.
//
// The traversal order and the leading zero rule are the interoperability
// contract with COCO consumers, so they are implemented explicitly here
// rather than relying on any array layout.
func EncodeRLE(m *BinaryMask) RLE {

	rle := RLE{
		Counts: make([]int, 0, 8),
		Size:   [2]int{m.height, m.width},
	}

	last := false
	run := 0

	for x := 0; x < m.width; x++ {
		for y := 0; y < m.height; y++ {

			v := m.At(x, y)

			if v == last {
				run++
				continue
			}

			// first run is foreground, insert the empty background run
			if run == 0 && v {
				rle.Counts = append(rle.Counts, 0)
			} else {
				rle.Counts = append(rle.Counts, run)
			}

			last = v
			run = 1
		}
	}

	// flush the final run, an empty mask still emits a single zero count
	rle.Counts = append(rle.Counts, run)

	return rle
}

// DecodeRLE reconstructs a binary mask from its run-length encoding by
// replaying counts as alternating background/foreground runs in column-major
// order.  It fails if the counts do not sum to height*width
func DecodeRLE(rle RLE) (*BinaryMask, error) {

	height := rle.Size[0]
	width := rle.Size[1]

	total := 0

	for _, c := range rle.Counts {
		if c < 0 {
			return nil, fmt.Errorf("negative run length %d", c)
		}

		total += c
	}

	if total != height*width {
		return nil, fmt.Errorf("run lengths sum to %d, want %d",
			total, height*width)
	}

	m := NewBinaryMask(width, height)

	pos := 0
	fg := false

	for _, c := range rle.Counts {

		if fg {
			for i := pos; i < pos+c; i++ {
				// column-major pixel index back to (x, y)
				m.Set(i/height, i%height, true)
			}
		}

		pos += c
		fg = !fg
	}

	return m, nil
}
