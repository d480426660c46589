package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/md2rst/internal/convert"
	"github.com/dustin/go-humanize"
)

// ConvertFunc converts Markdown to reStructuredText.
type ConvertFunc func(markdown string, opts convert.Options) (string, error)

// Worker converts queued jobs one at a time.
type Worker struct {
	jobs    *JobStore
	convert ConvertFunc
	log     *slog.Logger
}

func NewWorker(jobs *JobStore, fn ConvertFunc, log *slog.Logger) *Worker {
	return &Worker{
		jobs:    jobs,
		convert: fn,
		log:     log,
	}
}

// Process converts a single job and records the outcome on it.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "batch_id", job.BatchID, "filename", job.Filename)

	if err := ctx.Err(); err != nil {
		job.AddError(fmt.Sprintf("cancelled: %s", err))
		job.SetStatus(StatusFailed, "queued")
		return
	}

	// An identical conversion that already finished is reused.
	if result, ok := w.jobs.CompletedByHash(job.ContentHash, job.ID); ok {
		log.Info("duplicate document, reusing result")
		job.Complete(result, true)
		return
	}

	job.SetStatus(StatusConverting, "converting")
	data := job.FileData()
	out, err := w.convert(string(data), job.Options)
	if err != nil {
		log.Error("conversion failed", "error", err)
		job.AddError(fmt.Sprintf("convert: %s", err))
		job.SetStatus(StatusFailed, "converting")
		return
	}

	job.Complete(out, false)
	log.Info("conversion complete",
		"input", humanize.Bytes(uint64(len(data))),
		"output", humanize.Bytes(uint64(len(out))))
}
