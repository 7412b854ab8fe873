package coco

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// AnnotationList is an ordered, append-only sequence of annotation records.
// Implementations must preserve append order exactly; whether records are
// held in memory or spilled to disk is not observable through this interface
type AnnotationList interface {
	// Append adds one record to the end of the list
	Append(a Annotation) error
	// Len returns the number of records appended so far
	Len() int
	// Each calls fn for every record in append order, stopping at the
	// first error
	Each(fn func(a Annotation) error) error
	// Close releases any resources held by the list
	Close() error
}

// MemoryList is an AnnotationList backed by an in-memory slice
type MemoryList struct {
	records []Annotation
}

// NewMemoryList returns an empty in-memory annotation list
func NewMemoryList() *MemoryList {
	return &MemoryList{}
}

func (l *MemoryList) Append(a Annotation) error {
	l.records = append(l.records, a)
	return nil
}

func (l *MemoryList) Len() int {
	return len(l.records)
}

func (l *MemoryList) Each(fn func(a Annotation) error) error {

	for _, a := range l.records {
		if err := fn(a); err != nil {
			return err
		}
	}

	return nil
}

func (l *MemoryList) Close() error {
	return nil
}

// SpillList is an AnnotationList that writes records to a JSON lines file in
// a work directory as they are appended.  A full DeepScores run produces far
// more annotations than fit in memory, so only the file offset and count are
// retained
type SpillList struct {
	file   *os.File
	writer *bufio.Writer
	enc    *json.Encoder
	count  int
}

// NewSpillList creates a disk-backed annotation list using a temporary file
// in workDir.  The file is removed on Close
func NewSpillList(workDir, name string) (*SpillList, error) {

	f, err := os.CreateTemp(workDir, name+"-*.jsonl")

	if err != nil {
		return nil, fmt.Errorf("error creating spill file: %w", err)
	}

	w := bufio.NewWriter(f)

	return &SpillList{
		file:   f,
		writer: w,
		enc:    json.NewEncoder(w),
	}, nil
}

func (l *SpillList) Append(a Annotation) error {

	if err := l.enc.Encode(a); err != nil {
		return fmt.Errorf("error writing spill record: %w", err)
	}

	l.count++
	return nil
}

func (l *SpillList) Len() int {
	return l.count
}

// Each streams the spilled records back from disk in append order
func (l *SpillList) Each(fn func(a Annotation) error) error {

	if err := l.writer.Flush(); err != nil {
		return fmt.Errorf("error flushing spill file: %w", err)
	}

	if _, err := l.file.Seek(0, 0); err != nil {
		return fmt.Errorf("error rewinding spill file: %w", err)
	}

	dec := json.NewDecoder(bufio.NewReader(l.file))

	for i := 0; i < l.count; i++ {

		var a Annotation

		if err := dec.Decode(&a); err != nil {
			return fmt.Errorf("error reading spill record %d: %w", i, err)
		}

		if err := fn(a); err != nil {
			return err
		}
	}

	// restore the append position
	if _, err := l.file.Seek(0, 2); err != nil {
		return fmt.Errorf("error seeking spill file: %w", err)
	}

	return nil
}

func (l *SpillList) Close() error {

	name := l.file.Name()

	if err := l.file.Close(); err != nil {
		return err
	}

	return os.Remove(name)
}
