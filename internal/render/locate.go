package render

import (
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"sceneforge/internal/pkg/errors"
)

// Artifact is the canonical output file selected from a workspace.
type Artifact struct {
	Path      string
	SizeBytes int64
}

// LocateArtifact scans dir recursively for rendered videos and selects the
// most recently modified one. Ties break on the lexicographically largest
// path so repeated runs select the same file. Zero candidates is a distinct
// failure even after a clean process exit.
func LocateArtifact(dir string) (Artifact, error) {
	var (
		best    Artifact
		bestMod time.Time
		found   bool
	)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".mp4") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		mod := info.ModTime()
		if !found || mod.After(bestMod) || (mod.Equal(bestMod) && path > best.Path) {
			best = Artifact{Path: path, SizeBytes: info.Size()}
			bestMod = mod
			found = true
		}
		return nil
	})
	if err != nil {
		return Artifact{}, errors.Wrap(err, "render.locate", "workspace scan failed")
	}
	if !found {
		return Artifact{}, errors.New(errors.CodeArtifactMissing, "no video file found after render")
	}
	return best, nil
}
