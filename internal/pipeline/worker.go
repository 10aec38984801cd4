package pipeline

import (
	"context"
	"log/slog"
)

// Worker processes a single export job.
type Worker struct {
	exporter *Exporter
	log      *slog.Logger
}

func NewWorker(exporter *Exporter, log *slog.Logger) *Worker {
	return &Worker{exporter: exporter, log: log}
}

// Process runs extraction and packaging for a job. Images are fetched one
// at a time and any failure fails the whole job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID)
	defer job.releaseInput()

	// Phase 1: Extract
	job.SetStatus(StatusExtracting, "extracting")
	res, err := w.exporter.Convert(job.HTMLData(), job.opts)
	if err != nil {
		log.Error("extraction failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "extracting")
		return
	}
	job.SetExtracted(res.Title, res.Filename, res.Turns, len(res.Images))
	log.Info("conversation extracted", "title", res.Title, "turns", res.Turns, "images", len(res.Images))

	// Phase 2: Package
	job.SetStatus(StatusPackaging, "packaging")
	artifact, err := w.exporter.Package(ctx, res)
	if err != nil {
		log.Error("packaging failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "packaging")
		return
	}

	job.SetArtifact(artifact)
	log.Info("export complete", "filename", artifact.Filename, "bytes", len(artifact.Data))
}
