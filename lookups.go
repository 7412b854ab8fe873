package deepscores

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
)

// CategoryLookup maps a category name to its integer category id
type CategoryLookup map[string]int

// ImageLookup maps an image name to its integer image id
type ImageLookup map[string]int

// ClassColorLookup maps a category name to the grayscale intensity value
// reserved for that category in the segmentation masks
type ClassColorLookup map[string]int

// TrainSet holds the image names belonging to the training split.  Any image
// not in the set belongs to the validation split
type TrainSet map[string]struct{}

// Contains reports whether the given image name is part of the training split
func (t TrainSet) Contains(name string) bool {
	_, ok := t[name]
	return ok
}

// LoadClassNames reads the class_names.csv file shipped with the dataset and
// returns the category id and grayscale color lookups.  The file must have a
// header row and the columns "id", "name" and "color"
func LoadClassNames(file string) (CategoryLookup, ClassColorLookup, error) {

	f, err := os.Open(file)

	if err != nil {
		return nil, nil, fmt.Errorf("error opening file: %w", err)
	}

	defer f.Close()

	df := dataframe.ReadCSV(f, dataframe.HasHeader(true))

	if df.Err != nil {
		return nil, nil, fmt.Errorf("error reading csv: %w", df.Err)
	}

	// Col returns a series carrying an error when the column is absent,
	// it must be checked before Records
	nameCol := df.Col("name")

	if nameCol.Err != nil {
		return nil, nil, fmt.Errorf("missing name column: %w", nameCol.Err)
	}

	idCol := df.Col("id")

	if idCol.Err != nil {
		return nil, nil, fmt.Errorf("missing id column: %w", idCol.Err)
	}

	colorCol := df.Col("color")

	if colorCol.Err != nil {
		return nil, nil, fmt.Errorf("missing color column: %w", colorCol.Err)
	}

	names := nameCol.Records()
	ids := idCol.Records()
	colors := colorCol.Records()

	categories := make(CategoryLookup, len(names))
	classColors := make(ClassColorLookup, len(names))

	for i, name := range names {

		id, err := strconv.Atoi(ids[i])

		if err != nil {
			return nil, nil, fmt.Errorf("invalid category id %q: %w", ids[i], err)
		}

		color, err := strconv.Atoi(colors[i])

		if err != nil {
			return nil, nil, fmt.Errorf("invalid class color %q: %w", colors[i], err)
		}

		categories[name] = id
		classColors[name] = color
	}

	return categories, classColors, nil
}

// LoadTrainSet reads the training split membership from the given text file.
// It should contain one image name per line
func LoadTrainSet(file string) (TrainSet, error) {

	// open the file
	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	defer f.Close()

	// create a scanner to read the file
	scanner := bufio.NewScanner(f)

	set := make(TrainSet)

	// read and trim each line
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		set[line] = struct{}{}
	}

	// check for errors during scanning
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return set, nil
}

// BuildImageLookup assigns sequential image ids starting from 1 to the given
// image names in sorted order, so a fixed input set always produces the same
// lookup
func BuildImageLookup(names []string) ImageLookup {

	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)

	lookup := make(ImageLookup, len(sorted))

	for i, name := range sorted {
		lookup[name] = i + 1
	}

	return lookup
}
