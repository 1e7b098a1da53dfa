package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dgallion1/docrank/internal/parser"
	"github.com/dgallion1/docrank/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func newJobID() string { return uuid.NewString() }

// handleAnalyze accepts a multipart upload of documents plus persona and
// job, and queues one analysis over all of them.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	persona := strings.TrimSpace(r.FormValue("persona"))
	task := strings.TrimSpace(r.FormValue("job"))
	if persona == "" || task == "" {
		jsonError(w, "persona and job are required", http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	var total int64
	inputs := make([]pipeline.Input, 0, len(files))
	seen := make(map[string]bool, len(files))
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		if !parser.IsSupportedExtension(filename) {
			jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
			return
		}
		if seen[filename] {
			jsonError(w, "duplicate filename: "+filename, http.StatusBadRequest)
			return
		}
		seen[filename] = true

		f, err := fh.Open()
		if err != nil {
			jsonError(w, "failed to open file", http.StatusInternalServerError)
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
		f.Close()
		if err != nil {
			jsonError(w, "failed to read file", http.StatusInternalServerError)
			return
		}
		total += int64(len(data))
		if total > s.cfg.MaxUploadBytes {
			jsonError(w, fmt.Sprintf("upload exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		inputs = append(inputs, pipeline.Input{Name: filename, Data: data})
	}

	// Same order a directory run would use.
	slices.SortFunc(inputs, func(a, b pipeline.Input) int { return strings.Compare(a.Name, b.Name) })

	job := pipeline.NewJob(s.newID(), persona, task, inputs)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": "/api/analyze/" + job.ID,
	})
}

func (s *Server) handleAnalyzeStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if job := s.orchestrator.GetJob(jobID); job != nil {
		writeJSON(w, http.StatusOK, job.Snapshot())
		return
	}

	// Evicted jobs may still have a published report.
	if pub := s.orchestrator.Publisher(); pub != nil {
		node, err := pub.GetNode(r.Context(), pipeline.ReportKeyPrefix+jobID)
		if err != nil {
			s.log.Warn("report lookup failed", "job_id", jobID, "error", err)
		} else if node != nil {
			var stored struct {
				Report json.RawMessage `json:"report"`
			}
			if err := json.Unmarshal(node.Value, &stored); err == nil && len(stored.Report) > 0 {
				writeJSON(w, http.StatusOK, map[string]any{
					"job_id": jobID,
					"status": pipeline.StatusCompleted,
					"phase":  "archived",
					"report": stored.Report,
				})
				return
			}
		}
	}
	jsonError(w, "job not found", http.StatusNotFound)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
