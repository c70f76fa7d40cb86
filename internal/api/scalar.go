package api

import (
	"bytes"
	"html/template"
	"net/http"
)

var docsPage = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
	<title>{{.Title}} · API reference</title>
	<meta charset="utf-8" />
	<meta name="viewport" content="width=device-width, initial-scale=1" />
	<style>body { margin: 0; }</style>
</head>
<body>
	<script id="api-reference" data-url="{{.SpecURL}}"></script>
	<script>
		document.getElementById('api-reference').dataset.configuration = JSON.stringify({{.Config}})
	</script>
	<script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
</body>
</html>`))

// scalarConfig is the subset of Scalar options the dashboard sets.
type scalarConfig struct {
	Theme              string         `json:"theme"`
	Layout             string         `json:"layout"`
	DefaultOpenAllTags bool           `json:"defaultOpenAllTags"`
	HideClientButton   bool           `json:"hideClientButton"`
	MetaData           scalarMetaData `json:"metaData"`
}

type scalarMetaData struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ScalarHandler serves the API reference for the sales endpoints, rendered by Scalar.
// The page is built once; title and description are escaped.
func ScalarHandler(specURL, title, description string) http.Handler {
	var buf bytes.Buffer
	err := docsPage.Execute(&buf, struct {
		Title   string
		SpecURL string
		Config  scalarConfig
	}{
		Title:   title,
		SpecURL: specURL,
		Config: scalarConfig{
			Theme:              "purple",
			Layout:             "modern",
			DefaultOpenAllTags: true,
			HideClientButton:   true,
			MetaData:           scalarMetaData{Title: title, Description: description},
		},
	})
	page := buf.Bytes()

	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if err != nil {
			http.Error(w, "docs page unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(page)
	})
}
