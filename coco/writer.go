package coco

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Corpus is the COCO container shape written for each dataset split
type Corpus struct {
	Images      []Image
	Annotations AnnotationList
	Categories  []Category
}

// WriteFile serializes the corpus to the given path in the standard COCO
// container shape {"images": [...], "annotations": [...], "categories":
// [...]}.  Annotations are streamed from the list so a disk-backed corpus is
// never held in memory.
//
// The write is atomic, the JSON goes to a temporary file in the same
// directory which is renamed into place only after a successful write.  A
// failed run never leaves a half-written corpus behind
func (c *Corpus) WriteFile(path string) error {

	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")

	if err != nil {
		return fmt.Errorf("error creating temp file: %w", err)
	}

	// clean up the temp file on any failure path
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)

	if err := c.encode(w); err != nil {
		return err
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("error flushing corpus: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error closing corpus: %w", err)
	}

	name := tmp.Name()
	tmp = nil

	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("error finalizing corpus: %w", err)
	}

	return nil
}

// encode writes the corpus JSON to w, streaming the annotation list
func (c *Corpus) encode(w *bufio.Writer) error {

	images, err := json.Marshal(c.Images)

	if err != nil {
		return fmt.Errorf("error encoding images: %w", err)
	}

	categories, err := json.Marshal(c.Categories)

	if err != nil {
		return fmt.Errorf("error encoding categories: %w", err)
	}

	w.WriteString(`{"images":`)
	w.Write(images)
	w.WriteString(`,"annotations":[`)

	first := true

	err = c.Annotations.Each(func(a Annotation) error {

		if !first {
			w.WriteByte(',')
		}

		first = false

		rec, err := json.Marshal(a)

		if err != nil {
			return fmt.Errorf("error encoding annotation %d: %w", a.ID, err)
		}

		_, err = w.Write(rec)
		return err
	})

	if err != nil {
		return err
	}

	w.WriteString(`],"categories":`)
	w.Write(categories)
	w.WriteByte('}')

	return nil
}
