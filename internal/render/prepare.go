package render

import (
	"fmt"
	"regexp"
	"strings"

	"sceneforge/internal/pkg/errors"
)

// PreparedScript is a self-contained manim program ready to execute.
type PreparedScript struct {
	Code      string
	SceneName string
}

var (
	// class Foo(Scene): / class Foo(ThreeDScene):
	sceneClassRe = regexp.MustCompile(`(?m)^\s*class\s+(\w+)\s*\([^)]*Scene[^)]*\)\s*:`)
	anyClassRe   = regexp.MustCompile(`(?m)^\s*class\s+(\w+)\s*(?:\([^)]*\))?\s*:`)
)

// Prepare normalizes a raw script into an executable unit: it ensures the
// import preamble exists, resolves the scene class to invoke, and appends a
// runnable trailer when missing. Pure function, no I/O.
func Prepare(code string, sceneName string) (PreparedScript, error) {
	sceneName = strings.TrimSpace(sceneName)
	if sceneName == "" {
		name, err := extractSceneName(code)
		if err != nil {
			return PreparedScript{}, err
		}
		sceneName = name
	}

	if !strings.Contains(code, "from manim import") {
		code = "from manim import *\n\n" + code
	}

	if !hasMainBlock(code) {
		code += fmt.Sprintf("\n\nif __name__ == '__main__':\n    scene = %s()\n    scene.render()\n", sceneName)
	}

	return PreparedScript{Code: code, SceneName: sceneName}, nil
}

func hasMainBlock(code string) bool {
	return strings.Contains(code, `__name__ == "__main__"`) ||
		strings.Contains(code, "__name__ == '__main__'")
}

// extractSceneName prefers a class extending Scene, then falls back to the
// first class definition.
func extractSceneName(code string) (string, error) {
	if m := sceneClassRe.FindStringSubmatch(code); m != nil {
		return m[1], nil
	}
	if m := anyClassRe.FindStringSubmatch(code); m != nil {
		return m[1], nil
	}
	return "", errors.New(errors.CodeNoEntryPoint, "no scene class found in script")
}
