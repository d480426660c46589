package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/md2rst/internal/convert"
	"github.com/dgallion1/md2rst/internal/parser"
	"github.com/dgallion1/md2rst/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

const rstContentType = "text/x-rst; charset=utf-8"

// optionsFromQuery overrides defaults with any option present in q. Values
// are parsed with strconv.ParseBool.
func optionsFromQuery(q url.Values, defaults convert.Options) (convert.Options, error) {
	opts := defaults
	flags := []struct {
		name string
		dst  *bool
	}{
		{"no_underscore_emphasis", &opts.NoUnderscoreEmphasis},
		{"parse_relative_links", &opts.ParseRelativeLinks},
		{"anonymous_references", &opts.AnonymousReferences},
		{"disable_inline_math", &opts.DisableInlineMath},
		{"use_mermaid", &opts.UseMermaid},
		{"front_matter", &opts.FrontMatter},
		{"guess_language", &opts.GuessLanguage},
	}
	for _, f := range flags {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("invalid value for %s: %q", f.name, v)
		}
		*f.dst = b
	}
	return opts, nil
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFromQuery(r.URL.Query(), s.cfg.Defaults)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("body exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "failed to read body", http.StatusBadRequest)
		return
	}

	out, err := convert.Convert(string(data), opts)
	if err != nil {
		s.log.Warn("conversion failed", "error", err, "bytes", len(data))
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", rstContentType)
	w.Write([]byte(out))
}

func (s *Server) handleBatchConvert(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFromQuery(r.URL.Query(), s.cfg.Defaults)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	batchID := s.orchestrator.NewBatchID()
	var results []map[string]any
	accepted, queueFull := 0, false
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		if !parser.IsSupportedExtension(filename) {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)),
			})
			continue
		}

		f, err := fh.Open()
		if err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    "failed to open file",
			})
			continue
		}

		data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
		f.Close()
		if err != nil || int64(len(data)) > s.cfg.MaxUploadBytes {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    "file too large or read error",
			})
			continue
		}

		job := pipeline.NewJob(batchID, filename, data, opts)
		if err := s.orchestrator.Submit(job); err != nil {
			if errors.Is(err, pipeline.ErrQueueFull) {
				queueFull = true
			}
			results = append(results, map[string]any{
				"filename": filename,
				"error":    err.Error(),
			})
			continue
		}

		accepted++
		results = append(results, map[string]any{
			"filename": filename,
			"job_id":   job.ID,
			"status":   job.Snapshot().Status,
			"poll_url": fmt.Sprintf("/api/jobs/%s", job.ID),
		})
	}

	code := http.StatusAccepted
	if accepted == 0 && queueFull {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"batch_id": batchID,
		"poll_url": fmt.Sprintf("/api/batches/%s", batchID),
		"jobs":     results,
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

func (s *Server) handleBatchStatus(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")
	jobs := s.orchestrator.Batch(batchID)
	if len(jobs) == 0 {
		jsonError(w, "batch not found", http.StatusNotFound)
		return
	}

	snaps := make([]pipeline.JobSnapshot, 0, len(jobs))
	counts := map[pipeline.JobStatus]int{}
	for _, job := range jobs {
		snap := job.Snapshot()
		counts[snap.Status]++
		snaps = append(snaps, snap)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"batch_id": batchID,
		"done":     counts[pipeline.StatusCompleted]+counts[pipeline.StatusFailed] == len(snaps),
		"counts":   counts,
		"jobs":     snaps,
	})
}

func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	out, ok := job.Result()
	if !ok {
		snap := job.Snapshot()
		jsonError(w, fmt.Sprintf("job is %s", snap.Status), http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", rstContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rstName(job.Filename)))
	w.Write([]byte(out))
}

// rstName swaps the Markdown extension of name for ".rst".
func rstName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".rst"
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
