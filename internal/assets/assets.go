// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

//go:build !dev

// Package assets provides embedded static assets with content-hashed filenames.
package assets

import (
	"embed"
	"encoding/json"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
)

//go:embed esbuild-meta.json
var metaData []byte

//go:embed static
var staticFS embed.FS

// esbuildMeta is the part of the esbuild metafile we read.
type esbuildMeta struct {
	Outputs map[string]struct{} `json:"outputs"`
}

const (
	defaultCSSPath = "/static/css/styles.css"
	defaultJSPath  = "/static/js/app.js"
)

var cssPath, jsPath = resolvePaths(metaData)

// resolvePaths maps esbuild output files (internal/assets/static/...) to
// their URLs. Missing or unreadable metadata keeps the unhashed defaults.
func resolvePaths(meta []byte) (css, js string) {
	css, js = defaultCSSPath, defaultJSPath

	var m esbuildMeta
	if err := json.Unmarshal(meta, &m); err != nil {
		slog.Debug("esbuild meta unreadable, using unhashed asset paths", "error", err)
		return css, js
	}

	for output := range m.Outputs {
		_, rest, ok := strings.Cut(output, "/static/")
		if !ok {
			continue
		}
		url := "/static/" + rest
		switch path.Ext(url) {
		case ".css":
			css = url
		case ".js":
			js = url
		}
	}
	return css, js
}

// CSSPath returns the path to the main CSS file.
func CSSPath() string {
	return cssPath
}

// JSPath returns the path to the main JS file.
func JSPath() string {
	return jsPath
}

// FileServer returns an http.Handler that serves the embedded static files.
// Request paths are relative to the static directory.
func FileServer() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("failed to create sub filesystem: " + err.Error())
	}
	return http.FileServer(http.FS(sub))
}
