/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/afero"
)

const maxImageSize = 32 << 20

var errNotImage = errors.New("not an image")

// Image is the outcome of loading one round image: either Data and
// ContentType are set, or Err says why the load failed.
type Image struct {
	Path        string
	Data        []byte
	ContentType string
	Err         error
}

func (i Image) Loaded() bool {
	return i.Err == nil
}

// loadImage reads path from fs and checks that its content sniffs as an
// image. It never panics; every failure comes back in Image.Err.
func loadImage(fs afero.Fs, path string) Image {
	f, err := fs.Open(path)
	if err != nil {
		return Image{Path: path, Err: err}
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageSize+1))
	if err != nil {
		return Image{Path: path, Err: fmt.Errorf("reading: %w", err)}
	}
	if len(data) > maxImageSize {
		return Image{Path: path, Err: fmt.Errorf("larger than %d bytes", maxImageSize)}
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return Image{Path: path, Err: fmt.Errorf("%w: detected %s", errNotImage, contentType)}
	}

	return Image{Path: path, Data: data, ContentType: contentType}
}

// Load reads one of the dataset's images.
func (d *Dataset) Load(path string) Image {
	return loadImage(d.fs, path)
}
