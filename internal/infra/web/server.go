// File: internal/infra/web/server.go
package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"matchday-reports/internal/usecase"
)

// Server exposes the report API. Ownership and state rules live in the
// usecases; the server only translates HTTP to usecase calls and domain
// errors back to statuses.
type Server struct {
	reportUC *usecase.ReportUseCase
	assetUC  *usecase.AssetUseCase
	auth     *AuthManager
	log      *zerolog.Logger

	srv *http.Server
}

func NewServer(reportUC *usecase.ReportUseCase, assetUC *usecase.AssetUseCase, auth *AuthManager, log *zerolog.Logger) *Server {
	return &Server{reportUC: reportUC, assetUC: assetUC, auth: auth, log: log}
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(traceID)
	r.Use(requestLog(s.log))
	r.Use(recoverer(s.log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/reports", func(r chi.Router) {
		r.Use(s.auth.RequireAuthor)
		r.Post("/", s.createReport)
		r.Get("/", s.listReports)
		r.Route("/{reportID}", func(r chi.Router) {
			r.Get("/", s.getReport)
			r.Patch("/", s.updateReport)
			r.Post("/submit", s.submitReport)
			r.Post("/publish", s.publishReport)
			r.Post("/unpublish", s.unpublishReport)
			r.Get("/jobs", s.listJobs)
			r.Get("/assets", s.listAssets)
			r.Post("/assets/attach", s.attachAsset)
			r.Post("/assets/upload-url", s.uploadAssetURL)
			r.Post("/assets/read-url", s.readAssetURL)
		})
	})
	return r
}

func (s *Server) Start(port int) error {
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info().Int("port", port).Msg("http server listening")
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
