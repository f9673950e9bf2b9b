package render

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// extractThumbnail derives a still frame one second into the video.
// Best-effort: every failure is logged and yields no thumbnail.
func (p *Pipeline) extractThumbnail(ctx context.Context, videoPath string) string {
	thumbPath := strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".jpg"

	toolCtx, cancel := context.WithTimeout(ctx, p.cfg.ToolTimeout)
	defer cancel()

	res, err := p.runner.Run(toolCtx, filepath.Dir(videoPath), p.cfg.FFmpegBin,
		"-i", videoPath,
		"-ss", "00:00:01",
		"-vframes", "1",
		"-y",
		thumbPath,
	)
	if err != nil {
		p.log.Warn("thumbnail extraction failed",
			"video", videoPath,
			"error", err.Error(),
			"stderr", strings.TrimSpace(res.Stderr),
		)
		return ""
	}
	if _, err := os.Stat(thumbPath); err != nil {
		p.log.Warn("thumbnail file missing after extraction", "path", thumbPath)
		return ""
	}
	return thumbPath
}

// probeDuration asks ffprobe for the video duration in seconds. Best-effort.
func (p *Pipeline) probeDuration(ctx context.Context, videoPath string) float64 {
	toolCtx, cancel := context.WithTimeout(ctx, p.cfg.ToolTimeout)
	defer cancel()

	res, err := p.runner.Run(toolCtx, filepath.Dir(videoPath), p.cfg.FFprobeBin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	)
	if err != nil {
		p.log.Debug("duration probe failed", "video", videoPath, "error", err.Error())
		return 0
	}

	d, err := strconv.ParseFloat(strings.TrimSpace(res.Stdout), 64)
	if err != nil || d < 0 {
		return 0
	}
	return d
}
