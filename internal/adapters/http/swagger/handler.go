// Package swagger serves the OpenAPI description of the analytics API and a
// ReDoc page that renders it.
package swagger

import (
	"bytes"
	"context"
	_ "embed"
	"html/template"
	"net/http"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// OpenAPI is the embedded OpenAPI 3 document.
//
//go:embed openapi.yaml
var OpenAPI []byte

const (
	docPath   = "/openapi.yaml"
	pagePath  = "/api-docs"
	redocCDN  = "https://cdn.redoc.ly/redoc/v2.1.5/bundles/redoc.standalone.js"
	pageTitle = "rapport API"
)

var pageTmpl = template.Must(template.New("redoc").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body style="margin:0">
<div id="docs"></div>
<script src="{{.Script}}"></script>
<script>Redoc.init({{.Spec}}, {hideDownloadButton: false}, document.getElementById("docs"));</script>
</body>
</html>
`))

// Register mounts GET /api-docs and GET /openapi.yaml on mux. The document is
// served with a content hash ETag and answers matching If-None-Match with 304.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("swagger: nil mux")
	}

	var page bytes.Buffer
	if err := pageTmpl.Execute(&page, struct{ Title, Script, Spec string }{pageTitle, redocCDN, docPath}); err != nil {
		panic("swagger: render page: " + err.Error())
	}
	etag := `"` + strconv.FormatUint(xxhash.Sum64(OpenAPI), 16) + `"`

	mux.HandleFunc("GET "+pagePath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page.Bytes())
	})

	mux.HandleFunc("GET "+docPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", etag)
		w.Header().Set("Cache-Control", "no-cache")
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(OpenAPI)
	})
}
