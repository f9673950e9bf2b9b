package render

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WorkspaceManager allocates disposable per-job directories under a root.
// Each acquisition embeds a fresh random suffix, so a regenerated job never
// collides with a directory leaked by an earlier traversal.
type WorkspaceManager struct {
	root string
}

func NewWorkspaceManager(root string) *WorkspaceManager {
	return &WorkspaceManager{root: root}
}

// Acquire creates a fresh directory owned exclusively by one job traversal.
func (m *WorkspaceManager) Acquire(jobID string) (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	dir := filepath.Join(m.root, sanitizeID(jobID)+"_"+hex.EncodeToString(buf))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// Release removes the workspace recursively. Paths outside the root are
// refused so a corrupted record can never delete unrelated data.
func (m *WorkspaceManager) Release(dir string) error {
	rel, err := filepath.Rel(m.root, dir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("workspace outside root: %s", dir)
	}
	return os.RemoveAll(dir)
}

func sanitizeID(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "..", "")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	if s == "" {
		return "job"
	}
	return s
}
