package handlers

import (
	"net/http"

	"github.com/blockedby/sales-dashboard/internal/web"
)

// PagesHandler handles HTML page requests
type PagesHandler struct {
	templates *web.TemplateEngine
	ds        Dataset // optional
	version   string
}

// NewPagesHandler creates a new pages handler
func NewPagesHandler(templates *web.TemplateEngine, ds Dataset, version string) *PagesHandler {
	return &PagesHandler{
		templates: templates,
		ds:        ds,
		version:   version,
	}
}

// Dashboard renders the dashboard page. start and end query parameters
// prefill the date inputs.
func (h *PagesHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"Title":   "Sales Dashboard",
		"Version": h.version,
		"WSPath":  "/ws",
		"Start":   r.URL.Query().Get("start"),
		"End":     r.URL.Query().Get("end"),
		"Orders":  0,
		"Dropped": 0,
	}

	if h.ds != nil {
		stats, _ := h.ds.Stats()
		data["Orders"] = stats.Orders
		data["Dropped"] = stats.Dropped
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.Render(w, "dashboard", data); err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
	}
}
