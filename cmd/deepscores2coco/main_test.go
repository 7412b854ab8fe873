package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestImageNames(t *testing.T) {

	dir := t.TempDir()

	files := []string{"img_1.xml", "IMG_2.XML", "img_3.txt", "img_4.v2.xml"}

	for _, name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if err := os.Mkdir(filepath.Join(dir, "nested.xml"), 0o755); err != nil {
		t.Fatal(err)
	}

	names, err := imageNames(dir)

	if err != nil {
		t.Fatalf("imageNames failed: %v", err)
	}

	// upper case extensions count, non-xml files and directories do not,
	// and the image name stops at the first dot
	expected := []string{"IMG_2", "img_1", "img_4"}

	if !reflect.DeepEqual(names, expected) {
		t.Errorf("expected %v, got %v", expected, names)
	}
}
