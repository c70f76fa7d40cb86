package web

import (
	"bytes"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTemplates() fstest.MapFS {
	return fstest.MapFS{
		"layout.html":     {Data: []byte(`{{ define "layout" }}<!DOCTYPE html><html><body>{{ template "content" . }}</body></html>{{ end }}`)},
		"pages/page.html": {Data: []byte(`{{ define "content" }}<h1>{{ .Title }}</h1>{{ end }}`)},
	}
}

func TestTemplateEngine_Render(t *testing.T) {
	engine := NewTemplateEngine(testTemplates(), false)
	require.NoError(t, engine.Load())

	var buf bytes.Buffer
	data := map[string]interface{}{"Title": "Dashboard"}
	require.NoError(t, engine.Render(&buf, "page", data))

	assert.Contains(t, buf.String(), "<!DOCTYPE html>")
	assert.Contains(t, buf.String(), "<h1>Dashboard</h1>")
}

func TestTemplateEngine_RenderContent(t *testing.T) {
	engine := NewTemplateEngine(testTemplates(), false)
	require.NoError(t, engine.Load())

	var buf bytes.Buffer
	require.NoError(t, engine.RenderContent(&buf, "page", map[string]interface{}{"Title": "Sales"}))

	assert.Equal(t, "<h1>Sales</h1>", buf.String())
}

func TestTemplateEngine_MissingPage(t *testing.T) {
	engine := NewTemplateEngine(testTemplates(), false)
	require.NoError(t, engine.Load())

	var buf bytes.Buffer
	assert.Error(t, engine.Render(&buf, "nope", nil))
}

func TestTemplateEngine_NoLayouts(t *testing.T) {
	engine := NewTemplateEngine(fstest.MapFS{}, false)
	assert.Error(t, engine.Load())
}

func TestEmbeddedDashboardPage(t *testing.T) {
	engine := NewTemplateEngine(TemplatesFS(), false)
	require.NoError(t, engine.Load())

	var buf bytes.Buffer
	require.NoError(t, engine.Render(&buf, "dashboard", map[string]interface{}{
		"Title":   "Sales Dashboard",
		"Version": "dev",
		"WSPath":  "/ws",
	}))

	html := buf.String()
	for _, id := range []string{
		"startDate", "endDate",
		"kpiTotalSales", "kpiNumOrders", "kpiAOV",
		"salesOverTimeChart", "salesByCategoryChart",
		"downloadCsvBtn",
	} {
		assert.Contains(t, html, `id="`+id+`"`)
	}
	assert.Contains(t, html, "/static/js/dashboard.js")
}
