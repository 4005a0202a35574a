package routes

import (
	"docdiff/util"
	"embed"
	"net/http"
	"strings"
)

//go:embed static/*
var staticFS embed.FS

var staticContentTypes = map[string]string{
	".css": "text/css; charset=utf-8",
	".js":  "text/javascript; charset=utf-8",
	".svg": "image/svg+xml",
}

func Static_File(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, util.StaticUrlPrefix)
	if strings.Contains(name, "..") {
		Misc_NotFound(w, r)
		return
	}

	content, err := staticFS.ReadFile("static/" + name)
	if err != nil {
		Misc_NotFound(w, r)
		return
	}

	contentType := "application/octet-stream"
	if dotIndex := strings.LastIndex(name, "."); dotIndex >= 0 {
		if knownType, ok := staticContentTypes[name[dotIndex:]]; ok {
			contentType = knownType
		}
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content); err != nil {
		panic(err)
	}
}
