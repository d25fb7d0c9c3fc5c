// File: internal/infra/web/handlers.go
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"matchday-reports/internal/domain"
	"matchday-reports/internal/domain/model"
	"matchday-reports/internal/domain/ports/repository"
	"matchday-reports/internal/infra/logging"
	"matchday-reports/internal/usecase"
)

const dateLayout = "2006-01-02"

type reportDate struct{ time.Time }

func (d *reportDate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

type createReportRequest struct {
	Date     reportDate `json:"date"`
	Opponent string     `json:"opponent"`
	Content  string     `json:"content"`
}

type updateReportRequest struct {
	Date     *reportDate `json:"date"`
	Opponent *string     `json:"opponent"`
	Content  *string     `json:"content"`
}

type assetRequest struct {
	Kind     string `json:"kind"`
	MimeType string `json:"mime_type"`
}

type reportDetailResponse struct {
	*model.Report
	Assets []*model.Asset `json:"assets"`
	Jobs   []*model.Job   `json:"jobs"`
}

type submitResponse struct {
	Report *model.Report `json:"report"`
	Jobs   []*model.Job  `json:"jobs"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps the domain sentinels onto HTTP statuses. A failed
// enqueue after a committed submit gets its own 503 so callers know the job
// rows exist and a retry is safe.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "report not found")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "not allowed to access this report")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrBadRequest), errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrEnqueueFailed):
		writeError(w, http.StatusServiceUnavailable, "jobs were recorded but could not be enqueued, retry submit")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) createReport(w http.ResponseWriter, r *http.Request) {
	var req createReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	report, err := s.reportUC.Create(r.Context(), AuthorID(r.Context()), req.Date.Time, req.Opponent, req.Content)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reportID := chi.URLParam(r, "reportID")
	authorID := AuthorID(ctx)

	report, err := s.reportUC.Get(ctx, reportID, authorID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	assets, err := s.reportUC.ListAssets(ctx, reportID, authorID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	jobs, err := s.reportUC.ListJobs(ctx, reportID, authorID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reportDetailResponse{Report: report, Assets: assets, Jobs: jobs})
}

func (s *Server) listReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.ReportFilter{Opponent: q.Get("opponent")}
	if v := q.Get("status"); v != "" {
		filter.Status = model.ReportStatus(v)
	}
	if v := q.Get("date_from"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date_from")
			return
		}
		filter.DateFrom = t
	}
	if v := q.Get("date_to"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date_to")
			return
		}
		filter.DateTo = t
	}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	reports, err := s.reportUC.List(r.Context(), AuthorID(r.Context()), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if reports == nil {
		reports = []*model.Report{}
	}
	writeJSON(w, http.StatusOK, reports)
}

func (s *Server) updateReport(w http.ResponseWriter, r *http.Request) {
	var req updateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	patch := usecase.ReportPatch{Opponent: req.Opponent, Content: req.Content}
	if req.Date != nil {
		patch.Date = &req.Date.Time
	}
	report, err := s.reportUC.Update(r.Context(), chi.URLParam(r, "reportID"), AuthorID(r.Context()), patch)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) submitReport(w http.ResponseWriter, r *http.Request) {
	ctx := logging.WithReportID(r.Context(), chi.URLParam(r, "reportID"))
	report, jobs, err := s.reportUC.Submit(ctx, chi.URLParam(r, "reportID"), AuthorID(ctx))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{Report: report, Jobs: jobs})
}

func (s *Server) publishReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.reportUC.Publish(r.Context(), chi.URLParam(r, "reportID"), AuthorID(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) unpublishReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.reportUC.Unpublish(r.Context(), chi.URLParam(r, "reportID"), AuthorID(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.reportUC.ListJobs(r.Context(), chi.URLParam(r, "reportID"), AuthorID(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if jobs == nil {
		jobs = []*model.Job{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) listAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := s.assetUC.List(r.Context(), chi.URLParam(r, "reportID"), AuthorID(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if assets == nil {
		assets = []*model.Asset{}
	}
	writeJSON(w, http.StatusOK, assets)
}

func (s *Server) uploadAssetURL(w http.ResponseWriter, r *http.Request) {
	var req assetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	url, path, err := s.assetUC.UploadURL(r.Context(), chi.URLParam(r, "reportID"), AuthorID(r.Context()), req.Kind, req.MimeType)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"upload_url": url, "storage_path": path})
}

func (s *Server) attachAsset(w http.ResponseWriter, r *http.Request) {
	var req assetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	asset, err := s.assetUC.Attach(r.Context(), chi.URLParam(r, "reportID"), AuthorID(r.Context()), req.Kind, req.MimeType)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

func (s *Server) readAssetURL(w http.ResponseWriter, r *http.Request) {
	var req assetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	url, err := s.assetUC.ReadURL(r.Context(), chi.URLParam(r, "reportID"), AuthorID(r.Context()), req.Kind)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"read_url": url})
}
