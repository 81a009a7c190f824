package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/damilare-ak/clinicnote/constants"
	"github.com/damilare-ak/clinicnote/internal/async"
)

// maxUploadBytes bounds transcript uploads; session documents are small.
const maxUploadBytes = 32 << 20

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.processor.Status().Snapshot())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	recs, err := s.repo.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("web.history_query_failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "history query failed")
		return
	}

	type row struct {
		ID          string `json:"id"`
		ClientName  string `json:"client_name"`
		SessionDate string `json:"session_date"`
		Filename    string `json:"filename"`
		Status      string `json:"status"`
		Provider    string `json:"provider,omitempty"`
		PageID      string `json:"page_id,omitempty"`
		Error       string `json:"error,omitempty"`
		CreatedAt   string `json:"created_at"`
	}
	out := make([]row, 0, len(recs))
	for _, rec := range recs {
		out = append(out, row{
			ID:          rec.ID,
			ClientName:  rec.ClientName,
			SessionDate: rec.SessionDate,
			Filename:    rec.Filename,
			Status:      string(rec.Status),
			Provider:    rec.Provider,
			PageID:      rec.PageID,
			Error:       rec.Error,
			CreatedAt:   rec.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"sessions": out})
}

// handleUpload accepts a multipart transcript upload. The default path
// queues processing and returns 202; ?sync=1 processes inline and returns
// the full result.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	ext := constants.NormalizeExt(filepath.Ext(header.Filename))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		s.writeError(w, http.StatusUnsupportedMediaType,
			fmt.Sprintf("unsupported file type %q", ext))
		return
	}

	localPath := filepath.Join(os.TempDir(), uuid.New().String()+"_"+filepath.Base(header.Filename))
	dst, err := os.Create(localPath)
	if err != nil {
		s.logger.Error("web.upload_save_failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "could not save upload")
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		_ = dst.Close()
		_ = os.Remove(localPath)
		s.logger.Error("web.upload_write_failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "could not save upload")
		return
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(localPath)
		s.writeError(w, http.StatusInternalServerError, "could not save upload")
		return
	}

	if r.URL.Query().Get("sync") == "1" {
		defer func() { _ = os.Remove(localPath) }()
		result := s.processor.ProcessOne(r.Context(), localPath)
		status := http.StatusOK
		if !result.Success {
			status = http.StatusUnprocessableEntity
		}
		s.writeJSON(w, status, result)
		return
	}

	traceID := uuid.New().String()
	err = s.queue.Enqueue(r.Context(), async.Task{
		Name:    "process:" + header.Filename,
		TraceID: traceID,
		Run: func(ctx context.Context) error {
			defer func() { _ = os.Remove(localPath) }()
			result := s.processor.ProcessOne(ctx, localPath)
			if !result.Success {
				return fmt.Errorf("processing %s: %s", result.Filename, result.Error)
			}
			return nil
		},
	})
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "queue unavailable")
		return
	}

	s.writeJSON(w, http.StatusAccepted, map[string]any{
		"queued":   true,
		"trace_id": traceID,
		"filename": header.Filename,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.exporter.ExportHistoryXLSX(r.Context())
	if err != nil {
		s.logger.Error("web.export_failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="sessions.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
