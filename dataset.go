/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
)

// ErrEmptyDataset is returned when no category under the content root has
// both real and fake images. The game cannot start without one.
var ErrEmptyDataset = errors.New("no usable categories found")

var allowedExtensions = map[string]bool{
	".bmp":  true,
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".webp": true,
}

// Category is a named bucket of matched real and fake images. Both lists are
// non-empty for every category held by a Dataset.
type Category struct {
	Name string
	Real []string
	Fake []string
}

// Dataset is the read-only index of usable categories. It is built once at
// startup and shared without locking.
type Dataset struct {
	fs         afero.Fs
	root       string
	names      []string
	categories map[string]Category
}

func isImage(name string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(name))]
}

func listDirs(fs afero.Fs, dir string) []string {
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil
	}

	dirs := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() {
			dirs = append(dirs, info.Name())
		}
	}

	return dirs
}

func listImages(fs afero.Fs, dir string) []string {
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil
	}

	files := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() || !isImage(info.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, info.Name()))
	}

	return files
}

// buildDataset scans root/real/<category> and root/fake/<category>. Only
// categories present on both sides with at least one image on each side
// are kept.
func buildDataset(fs afero.Fs, root string) (*Dataset, error) {
	realRoot := filepath.Join(root, "real")
	fakeRoot := filepath.Join(root, "fake")

	fakeNames := make(map[string]bool)
	for _, name := range listDirs(fs, fakeRoot) {
		fakeNames[name] = true
	}

	ds := &Dataset{
		fs:         fs,
		root:       root,
		categories: make(map[string]Category),
	}

	for _, name := range listDirs(fs, realRoot) {
		if !fakeNames[name] {
			continue
		}

		reals := listImages(fs, filepath.Join(realRoot, name))
		fakes := listImages(fs, filepath.Join(fakeRoot, name))
		if len(reals) == 0 || len(fakes) == 0 {
			continue
		}

		ds.categories[name] = Category{Name: name, Real: reals, Fake: fakes}
		ds.names = append(ds.names, name)
	}

	if len(ds.names) == 0 {
		return nil, fmt.Errorf("%w under %s (expected real/<category> and fake/<category>)", ErrEmptyDataset, root)
	}

	slices.Sort(ds.names)

	return ds, nil
}

// Categories returns the usable category names in sorted order.
func (d *Dataset) Categories() []string {
	return slices.Clone(d.names)
}

func (d *Dataset) Category(name string) (Category, bool) {
	c, ok := d.categories[name]
	return c, ok
}

func (d *Dataset) Len() int {
	return len(d.names)
}

// Images counts every indexed image across both sides.
func (d *Dataset) Images() int {
	total := 0
	for _, c := range d.categories {
		total += len(c.Real) + len(c.Fake)
	}
	return total
}
