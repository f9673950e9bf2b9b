package render

import (
	"strings"
	"testing"

	"sceneforge/internal/pkg/errors"
)

func TestPrepareAppendsTrailerOnce(t *testing.T) {
	code := "class CircleScene(Scene):\n    def construct(self):\n        pass\n"

	out, err := Prepare(code, "")
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	if got := strings.Count(out.Code, "__name__"); got != 1 {
		t.Fatalf("trailer count = %d, want 1", got)
	}
	if !strings.Contains(out.Code, "scene = CircleScene()") {
		t.Fatalf("trailer does not reference resolved scene:\n%s", out.Code)
	}
	if out.SceneName != "CircleScene" {
		t.Fatalf("scene name = %q, want CircleScene", out.SceneName)
	}
}

func TestPrepareKeepsExistingTrailer(t *testing.T) {
	code := "from manim import *\n\nclass Demo(Scene):\n    pass\n\nif __name__ == '__main__':\n    scene = Demo()\n    scene.render()\n"

	out, err := Prepare(code, "")
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if got := strings.Count(out.Code, "__name__"); got != 1 {
		t.Fatalf("trailer count = %d, want 1", got)
	}
}

func TestPrepareAddsImportWhenMissing(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		wantPrefix bool
	}{
		{"missing import", "class A(Scene):\n    pass\n", true},
		{"star import present", "from manim import *\n\nclass A(Scene):\n    pass\n", false},
		{"named import present", "from manim import Scene\n\nclass A(Scene):\n    pass\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Prepare(tt.code, "")
			if err != nil {
				t.Fatalf("Prepare() error = %v", err)
			}
			gotPrefix := strings.HasPrefix(out.Code, "from manim import *\n\n")
			if gotPrefix != tt.wantPrefix {
				t.Fatalf("import prepended = %v, want %v", gotPrefix, tt.wantPrefix)
			}
			if strings.Count(out.Code, "from manim import") != 1 {
				t.Fatalf("import count = %d, want 1", strings.Count(out.Code, "from manim import"))
			}
		})
	}
}

func TestPrepareSceneResolution(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		explicit  string
		wantScene string
	}{
		{
			name:      "explicit name wins",
			code:      "class Other(Scene):\n    pass\n",
			explicit:  "Chosen",
			wantScene: "Chosen",
		},
		{
			name:      "scene subclass preferred over helper class",
			code:      "class Helper:\n    pass\n\nclass Graph(ThreeDScene):\n    pass\n",
			wantScene: "Graph",
		},
		{
			name:      "fallback to first class",
			code:      "class Widget:\n    pass\n\nclass Other:\n    pass\n",
			wantScene: "Widget",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Prepare(tt.code, tt.explicit)
			if err != nil {
				t.Fatalf("Prepare() error = %v", err)
			}
			if out.SceneName != tt.wantScene {
				t.Fatalf("scene name = %q, want %q", out.SceneName, tt.wantScene)
			}
		})
	}
}

func TestPrepareNoEntryPoint(t *testing.T) {
	_, err := Prepare("print('hello')\n", "")
	if err == nil {
		t.Fatal("Prepare() error = nil, want NO_ENTRY_POINT")
	}
	if !errors.IsCode(err, errors.CodeNoEntryPoint) {
		t.Fatalf("error code = %v, want NO_ENTRY_POINT", errors.GetCode(err))
	}
}

func TestProfileFor(t *testing.T) {
	if p := ProfileFor("high_quality"); p.Flag != "-qh" || p.Resolution != "1080p" {
		t.Fatalf("high_quality profile = %+v", p)
	}
	if p := ProfileFor("nonsense"); p.Name != DefaultProfileName {
		t.Fatalf("unknown quality resolved to %q, want default", p.Name)
	}
	if p := ProfileFor(""); p.Flag != "-qm" {
		t.Fatalf("empty quality flag = %q, want -qm", p.Flag)
	}
	if ValidProfile("nonsense") {
		t.Fatal("ValidProfile(nonsense) = true")
	}
	if !ValidProfile("production_quality") {
		t.Fatal("ValidProfile(production_quality) = false")
	}
}
