package coco

import (
	"reflect"
	"testing"
)

// maskFromRows builds a binary mask from row-major 0/1 literals for readable
// test cases
func maskFromRows(rows [][]int) *BinaryMask {

	height := len(rows)
	width := 0

	if height > 0 {
		width = len(rows[0])
	}

	m := NewBinaryMask(width, height)

	for y, row := range rows {
		for x, v := range row {
			m.Set(x, y, v != 0)
		}
	}

	return m
}

func TestEncodeRLE(t *testing.T) {

	tests := []struct {
		name     string
		rows     [][]int
		expected []int
	}{
		{
			name: "all background 4x4",
			rows: [][]int{
				{0, 0, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
			},
			expected: []int{16},
		},
		{
			name: "all foreground 3x2",
			rows: [][]int{
				{1, 1, 1},
				{1, 1, 1},
			},
			expected: []int{0, 6},
		},
		{
			name: "first column-major pixel foreground 2x2",
			rows: [][]int{
				{1, 0},
				{0, 0},
			},
			expected: []int{0, 1, 3},
		},
		{
			name: "single pixel mid mask 3x3",
			rows: [][]int{
				{0, 0, 0},
				{0, 1, 0},
				{0, 0, 0},
			},
			expected: []int{4, 1, 4},
		},
		{
			name: "checkerboard 2x2",
			rows: [][]int{
				{1, 0},
				{0, 1},
			},
			expected: []int{0, 1, 2, 1},
		},
		{
			// second column runs top to bottom before third column,
			// catches row-major traversal mistakes
			name: "vertical bar 3x3",
			rows: [][]int{
				{0, 1, 0},
				{0, 1, 0},
				{0, 1, 0},
			},
			expected: []int{3, 3, 3},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {

			m := maskFromRows(tc.rows)
			rle := EncodeRLE(m)

			if !reflect.DeepEqual(rle.Counts, tc.expected) {
				t.Errorf("counts wrong, expected %v, got %v",
					tc.expected, rle.Counts)
			}

			if rle.Size[0] != m.Height() || rle.Size[1] != m.Width() {
				t.Errorf("size wrong, expected [%d %d], got %v",
					m.Height(), m.Width(), rle.Size)
			}

			// sum of counts always equals height*width
			sum := 0

			for _, c := range rle.Counts {
				sum += c
			}

			if sum != m.Width()*m.Height() {
				t.Errorf("counts sum to %d, expected %d",
					sum, m.Width()*m.Height())
			}
		})
	}
}

func TestRLERoundTrip(t *testing.T) {

	tests := []struct {
		name string
		rows [][]int
	}{
		{
			name: "all background",
			rows: [][]int{
				{0, 0},
				{0, 0},
			},
		},
		{
			name: "all foreground",
			rows: [][]int{
				{1, 1},
				{1, 1},
			},
		},
		{
			name: "single pixel",
			rows: [][]int{
				{0, 0, 0},
				{0, 0, 1},
			},
		},
		{
			name: "checkerboard",
			rows: [][]int{
				{1, 0, 1, 0},
				{0, 1, 0, 1},
				{1, 0, 1, 0},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {

			orig := maskFromRows(tc.rows)
			decoded, err := DecodeRLE(EncodeRLE(orig))

			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}

			for y := 0; y < orig.Height(); y++ {
				for x := 0; x < orig.Width(); x++ {
					if decoded.At(x, y) != orig.At(x, y) {
						t.Errorf("pixel (%d, %d) wrong after round trip",
							x, y)
					}
				}
			}
		})
	}
}

func TestDecodeRLEBadCounts(t *testing.T) {

	tests := []struct {
		name string
		rle  RLE
	}{
		{
			name: "counts short of size",
			rle:  RLE{Counts: []int{3}, Size: [2]int{2, 2}},
		},
		{
			name: "counts exceed size",
			rle:  RLE{Counts: []int{5}, Size: [2]int{2, 2}},
		},
		{
			name: "negative run",
			rle:  RLE{Counts: []int{-1, 5}, Size: [2]int{2, 2}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {

			if _, err := DecodeRLE(tc.rle); err == nil {
				t.Errorf("expected error for %v", tc.rle)
			}
		})
	}
}

func TestBinaryMaskArea(t *testing.T) {

	m := maskFromRows([][]int{
		{1, 0, 1},
		{0, 1, 0},
	})

	if m.Area() != 3 {
		t.Errorf("expected area 3, got %d", m.Area())
	}
}
