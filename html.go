/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"embed"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
)

//go:embed fakereal/*
var assets embed.FS

const placeholderAsset = "fakereal/placeholder.svg"

var assetTypes = map[string]string{
	".css":  "text/css; charset=utf-8",
	".html": "text/html; charset=utf-8",
	".js":   "text/javascript; charset=utf-8",
	".svg":  "image/svg+xml",
}

func cacheFor(w http.ResponseWriter, d time.Duration) {
	w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(int(d.Seconds())))
	w.Header().Set("Expires", time.Now().Add(d).UTC().Format(http.TimeFormat))
}

// writeBody sends a complete response and reports write failures on errs.
func writeBody(cfg *Config, w http.ResponseWriter, contentType string, status int, data []byte, errs chan<- error) {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	securityHeaders(cfg, w)
	w.WriteHeader(status)

	if _, err := w.Write(data); err != nil {
		errs <- err
	}
}

func serveHomePage(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		data, err := assets.ReadFile("fakereal/index.html")
		if err != nil {
			page := newPage(cfg.prefix, "Fake vs Real", "The game client is missing from this build.")
			writeBody(cfg, w, assetTypes[".html"], http.StatusInternalServerError, []byte(page), errs)

			return
		}

		w.Header().Set("Cache-Control", "no-cache")
		writeBody(cfg, w, assetTypes[".html"], http.StatusOK, data, errs)
	}
}

func serveText(cfg *Config, body string, maxAge time.Duration, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if maxAge > 0 {
			cacheFor(w, maxAge)
		}
		writeBody(cfg, w, "text/plain; charset=utf-8", http.StatusOK, []byte(body), errs)
	}
}

func serveHealthCheck(cfg *Config, errs chan<- error) httprouter.Handle {
	return serveText(cfg, "Ok\n", 0, errs)
}

func serveRobots(cfg *Config, errs chan<- error) httprouter.Handle {
	return serveText(cfg, "User-agent: *\nDisallow: /\n", time.Hour, errs)
}

// serveAssets serves the embedded client. Unknown extensions are left for
// the browser to sniff.
func serveAssets(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		fname := "fakereal/" + strings.TrimPrefix(p.ByName("asset"), "/")

		data, err := assets.ReadFile(fname)
		if err != nil {
			http.NotFound(w, r)

			return
		}

		cacheFor(w, time.Hour)
		writeBody(cfg, w, assetTypes[strings.ToLower(filepath.Ext(fname))], http.StatusOK, data, errs)
	}
}
