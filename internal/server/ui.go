package server

import (
	_ "embed"
	"net/http"
)

// indexHTML is the single-page question form served at "/".
//
//go:embed static/index.html
var indexHTML []byte

// uiHandler serves the embedded web UI.
func uiHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(indexHTML)
	})
}
