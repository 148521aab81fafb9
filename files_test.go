package main

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
)

func TestLoadImage(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "/img/ok.png")
	if err := afero.WriteFile(fs, "/img/fake.png", []byte("just some text, not pixels"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	img := loadImage(fs, "/img/ok.png")
	if !img.Loaded() || img.ContentType != "image/png" || len(img.Data) != len(pngBytes) {
		t.Fatalf("ok.png = %+v, want loaded png", img)
	}

	img = loadImage(fs, "/img/fake.png")
	if img.Loaded() || !errors.Is(img.Err, errNotImage) {
		t.Fatalf("fake.png err = %v, want errNotImage", img.Err)
	}
	if img.Path != "/img/fake.png" {
		t.Fatalf("path = %q, want it kept for logging", img.Path)
	}

	img = loadImage(fs, "/img/gone.png")
	if img.Loaded() {
		t.Fatalf("missing file loaded")
	}
}

func TestDatasetLoad(t *testing.T) {
	ds := testDataset(t, "cats")
	cats, _ := ds.Category("cats")

	for _, path := range append(cats.Real, cats.Fake...) {
		if img := ds.Load(path); !img.Loaded() {
			t.Fatalf("load %s: %v", path, img.Err)
		}
	}
}
