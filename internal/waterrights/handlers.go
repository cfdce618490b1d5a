package waterrights

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/openwaterdata/waterrights/internal/domain"
	"github.com/openwaterdata/waterrights/internal/logger"
	"github.com/openwaterdata/waterrights/internal/metrics"
)

// maxCriteriaBytes bounds a criteria body. Drawn polygons can be large.
const maxCriteriaBytes = 8 << 20

// Handlers binds a Service to HTTP.
type Handlers struct {
	svc      *Service
	fileName string
}

func NewHandlers(svc *Service, fileName string) *Handlers {
	if fileName == "" {
		fileName = "WaterRights.zip"
	}
	return &Handlers{svc: svc, fileName: fileName}
}

func (h *Handlers) FindHandler(w http.ResponseWriter, r *http.Request) {
	c, ok := decodeCriteria(w, r)
	if !ok {
		return
	}
	page, err := h.svc.FindWaterRights(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, page)
}

func (h *Handlers) AnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	c, ok := decodeCriteria(w, r)
	if !ok {
		return
	}
	summary, err := h.svc.Analytics(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, summary)
}

// DownloadHandler streams the export archive. Every check runs before the
// first byte; once streaming has started a failure aborts the connection so
// the client never sees a truncated archive as a complete one.
func (h *Handlers) DownloadHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := logger.FromContext(r.Context())

	c, ok := decodeCriteria(w, r)
	if !ok {
		return
	}

	m, err := h.svc.PrepareExport(r.Context(), c)
	if err != nil {
		metrics.ObserveExport(exportOutcome(err), 0, time.Since(start))
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.fileName))
	w.WriteHeader(http.StatusOK)

	if err := m.Write(r.Context(), w); err != nil {
		metrics.ObserveExport(metrics.OutcomeAborted, m.Records, time.Since(start))
		log.Warn("export aborted mid-stream", zap.Int64("records", m.Records), zap.Error(err))
		panic(http.ErrAbortHandler)
	}

	metrics.ObserveExport(metrics.OutcomeOK, m.Records, time.Since(start))
	log.Info("export written",
		zap.Int64("records", m.Records),
		zap.Strings("files", m.FileNames()),
		zap.Duration("took", time.Since(start)),
	)
}

func (h *Handlers) DetailsHandler(w http.ResponseWriter, r *http.Request) {
	details, err := h.svc.WaterRightDetails(r.Context(), chi.URLParam(r, "waterRightId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, details)
}

func (h *Handlers) SitesHandler(w http.ResponseWriter, r *http.Request) {
	sites, err := h.svc.SiteInfo(r.Context(), chi.URLParam(r, "waterRightId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, sites)
}

func (h *Handlers) SourcesHandler(w http.ResponseWriter, r *http.Request) {
	sources, err := h.svc.SourceInfo(r.Context(), chi.URLParam(r, "waterRightId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, sources)
}

func (h *Handlers) SiteLocationsHandler(w http.ResponseWriter, r *http.Request) {
	locations, err := h.svc.SiteLocations(r.Context(), chi.URLParam(r, "waterRightId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, locations)
}

func (h *Handlers) DigestHandler(w http.ResponseWriter, r *http.Request) {
	digests, err := h.svc.DigestsBySite(r.Context(), chi.URLParam(r, "siteUuid"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, digests)
}

func (h *Handlers) SiteDetailsHandler(w http.ResponseWriter, r *http.Request) {
	site, err := h.svc.SiteDetails(r.Context(), chi.URLParam(r, "siteUuid"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, site)
}

func (h *Handlers) SiteLocationHandler(w http.ResponseWriter, r *http.Request) {
	loc, err := h.svc.SiteLocation(r.Context(), chi.URLParam(r, "siteUuid"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, loc)
}

func (h *Handlers) SiteSourcesHandler(w http.ResponseWriter, r *http.Request) {
	sources, err := h.svc.SiteSources(r.Context(), chi.URLParam(r, "siteUuid"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, sources)
}

func (h *Handlers) SiteRightsHandler(w http.ResponseWriter, r *http.Request) {
	rights, err := h.svc.SiteRights(r.Context(), chi.URLParam(r, "siteUuid"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, rights)
}

func (h *Handlers) RiverBasinsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, h.svc.RiverBasins())
}

func decodeCriteria(w http.ResponseWriter, r *http.Request) (domain.SearchCriteria, bool) {
	var c domain.SearchCriteria
	r.Body = http.MaxBytesReader(w, r.Body, maxCriteriaBytes)
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return c, false
	}
	return c, true
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Warn("encode response", zap.Error(err))
	}
}

// writeError maps a service error onto a status code. Only unexpected
// errors are logged.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrExportTooLarge):
		http.Error(w, "Download limit exceeded.", http.StatusRequestEntityTooLarge)
	case domain.IsCallerError(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	default:
		logger.FromContext(r.Context()).Error("request failed", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func exportOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrDegenerateCriteria):
		return metrics.OutcomeDegenerate
	case errors.Is(err, domain.ErrNoMatchingRecords):
		return metrics.OutcomeNoMatch
	case errors.Is(err, domain.ErrExportTooLarge):
		return metrics.OutcomeTooLarge
	case domain.IsCallerError(err):
		return metrics.OutcomeInvalid
	}
	return metrics.OutcomeFailed
}
