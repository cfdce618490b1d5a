package waterrights

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openwaterdata/waterrights/internal/middleware"
)

// RouteOptions configures the download endpoint.
type RouteOptions struct {
	FileName           string
	DownloadsPerMinute float64
	DownloadBurst      int
}

func SetupRoutes(svc *Service, opts RouteOptions) http.Handler {
	r := chi.NewRouter()
	h := NewHandlers(svc, opts.FileName)

	r.Route("/WaterRights", func(r chi.Router) {
		r.Post("/find", h.FindHandler)
		r.Post("/AnalyticsSummaryInformation", h.AnalyticsHandler)

		r.Group(func(r chi.Router) {
			if opts.DownloadsPerMinute > 0 {
				r.Use(middleware.Throttle(opts.DownloadsPerMinute, opts.DownloadBurst))
			}
			r.Post("/download", h.DownloadHandler)
		})

		r.Get("/{waterRightId}", h.DetailsHandler)
		r.Get("/{waterRightId}/Sites", h.SitesHandler)
		r.Get("/{waterRightId}/Sources", h.SourcesHandler)
		r.Get("/{waterRightId}/SiteLocations", h.SiteLocationsHandler)
	})

	r.Route("/Sites/{siteUuid}", func(r chi.Router) {
		r.Get("/", h.SiteDetailsHandler)
		r.Get("/SiteLocation", h.SiteLocationHandler)
		r.Get("/Sources", h.SiteSourcesHandler)
		r.Get("/Rights", h.SiteRightsHandler)
		r.Get("/WaterRightsDigest", h.DigestHandler)
	})
	r.Get("/RiverBasins", h.RiverBasinsHandler)

	return r
}
