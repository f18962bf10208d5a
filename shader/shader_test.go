package shader

import (
	"strings"
	"testing"
)

func TestBackgroundDeclaresUniforms(t *testing.T) {
	src := Background()
	for _, want := range []string{"uniform sampler2D texture", "uniform float time"} {
		if !strings.Contains(src.Frag, want) {
			t.Errorf("background fragment source missing %q", want)
		}
	}
	if !strings.Contains(src.Vert, "(a_position + 1.0) * 0.5") {
		t.Error("background vertex source should derive uv from position")
	}
}

func TestSpriteAttributes(t *testing.T) {
	src := Sprite()
	for _, want := range []string{"attribute vec2 a_position", "attribute vec2 a_uv"} {
		if !strings.Contains(src.Vert, want) {
			t.Errorf("sprite vertex source missing %q", want)
		}
	}
	if strings.Contains(src.Frag, "time") {
		t.Error("sprite fragment source should not depend on time")
	}
}
