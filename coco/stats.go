package coco

import (
	"gonum.org/v1/gonum/stat"
)

// Summary holds descriptive statistics over one annotation list, typically
// logged at the end of a conversion run as a sanity check on the corpus
type Summary struct {
	// Count is the total number of annotation records
	Count int
	// PerCategory is the number of records per category id
	PerCategory map[int]int
	// AreaMean is the mean object mask area in pixels
	AreaMean float64
	// AreaStdDev is the standard deviation of object mask areas
	AreaStdDev float64
}

// Summarize computes descriptive statistics over the given annotation list
func Summarize(list AnnotationList) (Summary, error) {

	s := Summary{
		PerCategory: make(map[int]int),
	}

	areas := make([]float64, 0, list.Len())

	err := list.Each(func(a Annotation) error {
		s.Count++
		s.PerCategory[a.CategoryID]++
		areas = append(areas, float64(a.Area))
		return nil
	})

	if err != nil {
		return Summary{}, err
	}

	if len(areas) > 0 {
		s.AreaMean = stat.Mean(areas, nil)
	}

	// StdDev is undefined for fewer than two samples
	if len(areas) > 1 {
		_, s.AreaStdDev = stat.MeanStdDev(areas, nil)
	}

	return s, nil
}
