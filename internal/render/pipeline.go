package render

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sceneforge/internal/pkg/errors"
	"sceneforge/internal/pkg/logger"
)

// Config holds external tool locations and execution limits.
type Config struct {
	ManimBin   string
	FFmpegBin  string
	FFprobeBin string
	// Timeout is the hard wall-clock limit for the render process.
	Timeout time.Duration
	// ToolTimeout bounds the auxiliary ffmpeg/ffprobe calls, independent of
	// the render timeout.
	ToolTimeout time.Duration
}

// Request describes one render execution inside a workspace.
type Request struct {
	JobID   string
	Script  string
	Scene   string // optional explicit entry symbol
	Quality string
}

// Result is the outcome of a successful render.
type Result struct {
	SceneName       string
	VideoPath       string
	ThumbnailPath   string // empty when extraction failed
	SizeBytes       int64
	Resolution      string
	DurationSeconds float64 // 0 when the probe failed
	RenderTime      time.Duration
	Stdout          string
	Stderr          string
}

// Pipeline runs one prepared script through manim and harvests its outputs.
// It performs no persistence and no uploads; the orchestrator owns those.
type Pipeline struct {
	cfg    Config
	runner CommandRunner
	log    *logger.Logger
}

func NewPipeline(cfg Config, runner CommandRunner, log *logger.Logger) *Pipeline {
	if cfg.ManimBin == "" {
		cfg.ManimBin = "manim"
	}
	if cfg.FFmpegBin == "" {
		cfg.FFmpegBin = "ffmpeg"
	}
	if cfg.FFprobeBin == "" {
		cfg.FFprobeBin = "ffprobe"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 300 * time.Second
	}
	if cfg.ToolTimeout <= 0 {
		cfg.ToolTimeout = 30 * time.Second
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &Pipeline{cfg: cfg, runner: runner, log: log.WithComponent("render")}
}

// Render executes req inside dir: prepare script, run manim, locate the
// artifact, then best-effort duration probe and thumbnail extraction.
func (p *Pipeline) Render(ctx context.Context, dir string, req Request) (*Result, error) {
	prepared, err := Prepare(req.Script, req.Scene)
	if err != nil {
		return nil, err
	}

	scriptPath := filepath.Join(dir, "animation.py")
	if err := os.WriteFile(scriptPath, []byte(prepared.Code), 0o644); err != nil {
		return nil, errors.Wrap(err, "render.write", "failed to materialize script")
	}

	profile := ProfileFor(req.Quality)
	res, err := p.runManim(ctx, dir, scriptPath, profile)
	if err != nil {
		return nil, err
	}

	artifact, err := LocateArtifact(dir)
	if err != nil {
		return nil, err
	}

	out := &Result{
		SceneName:  prepared.SceneName,
		VideoPath:  artifact.Path,
		SizeBytes:  artifact.SizeBytes,
		Resolution: profile.Resolution,
		RenderTime: res.Duration,
		Stdout:     res.Stdout,
		Stderr:     res.Stderr,
	}
	out.DurationSeconds = p.probeDuration(ctx, artifact.Path)
	out.ThumbnailPath = p.extractThumbnail(ctx, artifact.Path)

	return out, nil
}

// runManim supervises the render process. A context-deadline kill is reported
// as TIMEOUT, never conflated with a nonzero exit.
func (p *Pipeline) runManim(ctx context.Context, dir, scriptPath string, profile Profile) (CommandResult, error) {
	args := []string{
		profile.Flag,
		"--output_file", dir,
		"--disable_caching",
		"--write_to_movie",
		scriptPath,
	}

	runCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	res, err := p.runner.Run(runCtx, dir, p.cfg.ManimBin, args...)
	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return res, errors.Newf(errors.CodeTimeout,
				"execution timed out after %d seconds", int(p.cfg.Timeout.Seconds()))
		}

		cause := strings.TrimSpace(res.Stderr)
		if cause == "" {
			cause = strings.TrimSpace(res.Stdout)
		}
		if cause == "" {
			cause = err.Error()
		}
		return res, errors.Newf(errors.CodeProcessExit,
			"manim exited with code %d: %s", res.ExitCode, cause)
	}
	return res, nil
}
