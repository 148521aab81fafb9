/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"log"
	"strings"
	"time"
)

func logf(cfg *Config, format string, args ...any) {
	if cfg == nil || !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

// errorf always prints, verbose or not.
func errorf(format string, args ...any) {
	log.Printf("%s | ERROR: "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

// drainErrors logs handler write failures for the life of the process.
func drainErrors(errs <-chan error) {
	for err := range errs {
		errorf("%v", err)
	}
}

func newPage(prefix, title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(getFavicon(prefix))
	htmlBody.WriteString(fmt.Sprintf(`<link rel="stylesheet" href="%s/assets/fakereal/app.css">`, prefix))
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", title))
	htmlBody.WriteString(fmt.Sprintf("<body class=\"page\"><a href=\"%s/\">%s</a></body></html>", prefix, body))

	return htmlBody.String()
}
