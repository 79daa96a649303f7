package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ilkoid/pixelbros-assets/pkg/config"
)

func TestEngine_DefaultRules(t *testing.T) {
	e := New(nil)

	tests := []struct {
		path string
		want string
	}{
		{path: "Portfolio/A/P/reel.MP4", want: ResourceVideo},
		{path: "Portfolio/A/P/take.mov", want: ResourceVideo},
		{path: "Portfolio/A/P/logo.svg", want: ResourceRaw},
		{path: "Portfolio/A/P/1.jpeg", want: ResourceImage},
		{path: `Inicio\hero.gif`, want: ResourceImage},
		{path: "Portfolio/A/P/doc.pdf", want: ResourceRaw},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Classify(tt.path))
		})
	}
}

func TestEngine_PathPatterns(t *testing.T) {
	e := New([]config.FileRule{
		{Tag: ResourceRaw, Patterns: []string{"inicio/**/*.png"}},
		{Tag: ResourceImage, Patterns: []string{"*.png"}},
	})

	assert.Equal(t, ResourceRaw, e.Classify("/Inicio/icons/arrow.png"))
	assert.Equal(t, ResourceImage, e.Classify("/Portfolio/A/P/1.png"))
}

func TestEngine_Process(t *testing.T) {
	e := New(nil)
	got := e.Process([]string{"a/1.jpg", "a/2.mp4", "a/3.jpg", "a/4.svg"})

	assert.Equal(t, map[string][]string{
		ResourceImage: {"a/1.jpg", "a/3.jpg"},
		ResourceVideo: {"a/2.mp4"},
		ResourceRaw:   {"a/4.svg"},
	}, got)
}
