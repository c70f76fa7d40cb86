package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/blockedby/sales-dashboard/internal/logger"
	"github.com/blockedby/sales-dashboard/internal/models"
	"github.com/blockedby/sales-dashboard/internal/sales"
	"github.com/blockedby/sales-dashboard/internal/web"
)

// unboundedLabel fills a missing side of the report filename.
const unboundedLabel = "None"

// ReportsHandler streams CSV reports.
type ReportsHandler struct {
	src     ReportSource
	limiter *rate.Limiter
	pub     EventPublisher
	hub     Broadcaster
	log     *logger.Logger
}

// NewReportsHandler creates a new ReportsHandler. limiter, pub and hub may be nil.
func NewReportsHandler(src ReportSource, limiter *rate.Limiter, pub EventPublisher, hub Broadcaster) *ReportsHandler {
	return &ReportsHandler{
		src:     src,
		limiter: limiter,
		pub:     pub,
		hub:     hub,
		log:     logger.Get().Component("reports"),
	}
}

// ReportFilename names the CSV attachment for a range.
func ReportFilename(r sales.Range) string {
	return fmt.Sprintf("sales_report_%s_%s.csv", labelOrNone(r.StartLabel()), labelOrNone(r.EndLabel()))
}

// DownloadCSV writes the filtered order lines as a CSV attachment.
// GET /api/report/csv?start=&end=
func (h *ReportsHandler) DownloadCSV(w http.ResponseWriter, r *http.Request) {
	if h.limiter != nil && !h.limiter.Allow() {
		w.Header().Set("Retry-After", "1")
		http.Error(w, "too many report requests", http.StatusTooManyRequests)
		return
	}

	q := r.URL.Query()
	rng, err := sales.ParseRange(q.Get("start"), q.Get("end"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := h.src.ReportRows(r.Context(), rng)
	if err != nil {
		h.log.Error().Err(err).Msg("load report rows")
		http.Error(w, "failed to build report", http.StatusInternalServerError)
		return
	}

	filename := ReportFilename(rng)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := sales.WriteReport(csv.NewWriter(w), rows); err != nil {
		// headers are already sent
		h.log.Warn().Err(err).Str("filename", filename).Msg("write report")
		return
	}

	h.log.Info().Str("filename", filename).Int("rows", len(rows)).Msg("report generated")

	if h.hub != nil {
		h.hub.Broadcast(web.ReportGeneratedEvent(filename, len(rows)))
	}
	if h.pub != nil {
		event := models.ReportGeneratedEvent{
			ReportID:    uuid.New(),
			Start:       labelOrNone(rng.StartLabel()),
			End:         labelOrNone(rng.EndLabel()),
			Rows:        len(rows),
			GeneratedAt: time.Now().UTC(),
		}
		if err := h.pub.PublishReportGenerated(r.Context(), event); err != nil {
			h.log.Warn().Err(err).Msg("publish report event")
		}
	}
}

func labelOrNone(label string) string {
	if label == "" {
		return unboundedLabel
	}
	return label
}
