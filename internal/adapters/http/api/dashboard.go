package api

import (
	"errors"
	"net/http"
	"net/url"

	service "github.com/okian/devilmatch/internal/app"
	"github.com/okian/devilmatch/internal/domain/aggregate"
	"github.com/okian/devilmatch/internal/domain/filter"
	"github.com/okian/devilmatch/pkg/logger"
)

// Flash codes carried back to the page after a form post.
const (
	paramFlash      = "flash"
	paramReason     = "reason"
	flashUploaded   = "uploaded"
	flashRefreshed  = "refreshed"
	flashUploadFail = "upload_failed"
	uploadField     = "file"
)

type summaryResponse struct {
	Summary aggregate.Summary `json:"summary"`
	Notice  *service.Notice   `json:"notice,omitempty"`
}

// HandleDashboard handles GET /api/dashboard with the full view model.
func (s *Server) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	vm, err := s.deps.Render(r.Context(), service.Request{Query: filter.ParseQuery(r.URL.Query())})
	if err != nil {
		s.logger.Error(r.Context(), "render dashboard", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "render_failed", WrapKind("dashboard", ErrRender, err))
		return
	}
	writeJSON(w, http.StatusOK, vm)
}

// HandleSummary handles GET /api/summary for the selected date range.
func (s *Server) HandleSummary(w http.ResponseWriter, r *http.Request) {
	q := filter.ParseQuery(r.URL.Query())
	sum, notice, err := s.deps.Summary(r.Context(), q.Scope)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "render_failed", WrapKind("summary", ErrRender, err))
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{Summary: sum, Notice: notice})
}

// HandleUpload handles POST /api/upload with a multipart "file" field.
func (s *Server) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ack, err := s.ingest(w, r)
	if err != nil {
		status, code := uploadStatus(err)
		writeError(w, status, code, err)
		return
	}
	writeJSON(w, http.StatusCreated, ack)
}

// HandleRefresh handles POST /api/refresh.
func (s *Server) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	s.deps.Refresh(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

// HandleUploadForm handles the page's upload form and redirects back.
func (s *Server) HandleUploadForm(w http.ResponseWriter, r *http.Request) {
	back := selection(r.URL.Query())
	if _, err := s.ingest(w, r); err != nil {
		back.Set(paramFlash, flashUploadFail)
		back.Set(paramReason, err.Error())
	} else {
		back.Set(paramFlash, flashUploaded)
	}
	redirect(w, r, back)
}

// HandleRefreshForm handles the page's refresh button and redirects back.
func (s *Server) HandleRefreshForm(w http.ResponseWriter, r *http.Request) {
	s.deps.Refresh(r.Context())
	back := selection(r.URL.Query())
	back.Set(paramFlash, flashRefreshed)
	redirect(w, r, back)
}

func (s *Server) ingest(w http.ResponseWriter, r *http.Request) (service.UploadAck, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.uploadMaxBytes+multipartOverhead)
	file, hdr, err := r.FormFile(uploadField)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return service.UploadAck{}, WrapKind("upload", service.ErrUpload, service.ErrUploadTooLarge)
		}
		return service.UploadAck{}, NewKind("upload", ErrBadRequest, "missing %q file field", uploadField)
	}
	defer file.Close()
	return s.deps.Ingest(r.Context(), hdr.Filename, file)
}

func redirect(w http.ResponseWriter, r *http.Request, v url.Values) {
	target := "/"
	if enc := v.Encode(); enc != "" {
		target += "?" + enc
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
