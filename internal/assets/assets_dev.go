// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

//go:build dev

// Package assets serves static files from disk in development builds, so
// edits show up without a rebuild.
package assets

import (
	"net/http"
	"os"
	"path/filepath"
	"runtime"
)

// CSSPath returns the path to the main CSS file.
func CSSPath() string {
	return "/static/css/styles.css"
}

// JSPath returns the path to the main JS file.
func JSPath() string {
	return "/static/js/app.js"
}

// FileServer serves the static directory next to this source file, so the
// dev binary works from any working directory.
func FileServer() http.Handler {
	return http.FileServerFS(os.DirFS(staticDir()))
}

func staticDir() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return filepath.Join("internal", "assets", "static")
	}
	return filepath.Join(filepath.Dir(file), "static")
}
