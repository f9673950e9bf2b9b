package processor

import (
	"context"

	"sceneforge/internal/models"
	"sceneforge/internal/pkg/errors"
	"sceneforge/internal/pkg/logger"
	"sceneforge/internal/ports"
	"sceneforge/internal/render"
)

// JobStore is the slice of the metadata store the orchestrator needs.
type JobStore interface {
	Get(ctx context.Context, id string) (*models.Animation, error)
	ClaimRun(ctx context.Context, id string) error
	Complete(ctx context.Context, id string, out models.RenderOutcome) error
	Fail(ctx context.Context, id string, cause string) error
}

// RenderPipeline executes one script inside a workspace directory.
type RenderPipeline interface {
	Render(ctx context.Context, dir string, req render.Request) (*render.Result, error)
}

// Workspaces allocates and tears down per-job scratch directories.
type Workspaces interface {
	Acquire(jobID string) (string, error)
	Release(dir string) error
}

type Deps struct {
	Store      JobStore
	Pipeline   RenderPipeline
	Workspaces Workspaces
	SP         ports.StorageProvider
	Log        *logger.Logger
}

// Processor drives the pending→running→terminal state machine for one job:
// claim the run, render inside an exclusive workspace, hand artifacts off to
// storage, persist the outcome. Every exit path releases the workspace and
// leaves the record terminal.
type Processor struct {
	store      JobStore
	pipeline   RenderPipeline
	workspaces Workspaces
	uploader   *Uploader
	log        *logger.Logger
}

func New(d Deps) *Processor {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	log = log.WithComponent("processor")

	return &Processor{
		store:      d.Store,
		pipeline:   d.Pipeline,
		workspaces: d.Workspaces,
		uploader:   NewUploader(d.SP, log),
		log:        log,
	}
}

// ProcessJob orquesta una traversal completa del job.
func (p *Processor) ProcessJob(ctx context.Context, jobID string) error {
	log := p.log.FromContext(ctx).WithJobID(jobID)

	log.Debug("fetching animation record")
	anim, err := p.store.Get(ctx, jobID)
	if err != nil {
		// No row to mark failed; surface to the run loop only.
		return errors.Wrap(err, "processor.fetch", "failed to fetch animation")
	}

	// pending -> running. A concurrent traversal for the same id loses the
	// conditional update and is rejected here, not queued.
	log.Debug("claiming run")
	if err := p.store.ClaimRun(ctx, jobID); err != nil {
		log.Warn("run claim rejected", "error", err.Error())
		return err
	}

	dir, err := p.workspaces.Acquire(jobID)
	if err != nil {
		return p.failJob(ctx, jobID, errors.Wrap(err, "processor.workspace", "failed to acquire workspace"))
	}
	defer func() {
		if err := p.workspaces.Release(dir); err != nil {
			log.Warn("workspace release failed", "dir", dir, "error", err.Error())
		}
	}()

	res, err := p.pipeline.Render(ctx, dir, render.Request{
		JobID:   jobID,
		Script:  anim.Script,
		Quality: anim.Quality,
	})
	if err != nil {
		return p.failJob(ctx, jobID, err)
	}
	log.Info("render succeeded",
		"scene", res.SceneName,
		"size_bytes", res.SizeBytes,
		"resolution", res.Resolution,
		"render_ms", res.RenderTime.Milliseconds(),
		"thumbnail", res.ThumbnailPath != "",
	)

	// Hand-off to durable storage. A render without a retrievable artifact is
	// not complete, so an upload error fails the job.
	up, err := p.uploader.UploadOutputs(ctx, jobID, res)
	if err != nil {
		return p.failJob(ctx, jobID, err)
	}

	outcome := models.RenderOutcome{
		VideoObjectKey:  up.VideoKey,
		VideoURL:        up.VideoURL,
		ThumbObjectKey:  up.ThumbKey,
		ThumbURL:        up.ThumbURL,
		SizeBytes:       res.SizeBytes,
		Resolution:      res.Resolution,
		DurationSeconds: res.DurationSeconds,
		RenderMs:        res.RenderTime.Milliseconds(),
	}
	if err := p.store.Complete(ctx, jobID, outcome); err != nil {
		return p.failJob(ctx, jobID, errors.Wrap(err, "processor.save", "failed to persist result"))
	}
	return nil
}

// failJob persists the failure cause verbatim and returns it.
func (p *Processor) failJob(ctx context.Context, jobID string, cause error) error {
	log := p.log.FromContext(ctx).WithJobID(jobID)

	msg := ""
	if cause != nil {
		msg = cause.Error()
		if len(msg) > 2000 {
			msg = msg[:2000]
		}

		var sfErr *errors.Error
		if errors.As(cause, &sfErr) {
			log.Error("job failed",
				"code", string(sfErr.Code),
				"op", sfErr.Op,
				"message", sfErr.Message,
			)
		} else {
			log.Error("job failed", "error", msg)
		}
	}

	if err := p.store.Fail(ctx, jobID, msg); err != nil {
		log.Error("failed to persist failure", "error", err.Error())
	}

	return cause
}
