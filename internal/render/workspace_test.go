package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWorkspaceAcquireIsUniquePerTraversal(t *testing.T) {
	root := t.TempDir()
	m := NewWorkspaceManager(root)

	first, err := m.Acquire("anim_1")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	second, err := m.Acquire("anim_1")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	if first == second {
		t.Fatalf("two acquisitions returned the same dir: %s", first)
	}
	for _, dir := range []string{first, second} {
		if !strings.HasPrefix(dir, root+string(filepath.Separator)) {
			t.Fatalf("workspace %s not under root %s", dir, root)
		}
		if st, err := os.Stat(dir); err != nil || !st.IsDir() {
			t.Fatalf("workspace %s not created: %v", dir, err)
		}
	}
}

func TestWorkspaceReleaseRemovesRecursively(t *testing.T) {
	root := t.TempDir()
	m := NewWorkspaceManager(root)

	dir, err := m.Acquire("anim_2")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	writeFile(t, filepath.Join(dir, "media", "videos", "out.mp4"), "video")

	if err := m.Release(dir); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("workspace still present after release: %v", err)
	}
}

func TestWorkspaceReleaseRefusesOutsideRoot(t *testing.T) {
	m := NewWorkspaceManager(t.TempDir())

	other := t.TempDir()
	if err := m.Release(other); err == nil {
		t.Fatal("Release() accepted a path outside the root")
	}
	if _, err := os.Stat(other); err != nil {
		t.Fatalf("outside dir was removed: %v", err)
	}
}

func TestWorkspaceAcquireSanitizesJobID(t *testing.T) {
	root := t.TempDir()
	m := NewWorkspaceManager(root)

	dir, err := m.Acquire("../../etc/passwd")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	rel, err := filepath.Rel(root, dir)
	if err != nil || strings.HasPrefix(rel, "..") {
		t.Fatalf("workspace escaped root: %s", dir)
	}
}
