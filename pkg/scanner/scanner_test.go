package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/pixelbros-assets/pkg/config"
	"github.com/ilkoid/pixelbros-assets/pkg/media"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return root
}

func defaultOptions(root string) Options {
	assets := config.AssetsConfig{Root: root}
	return FromConfig(assets.GetDefaults(), nil)
}

func TestScan_FindsMediaAndBuildsIDs(t *testing.T) {
	root := writeTree(t, map[string]string{
		"Portfolio/Diseño/Dulce Cuidado/1.jpg":    "jpg",
		"Portfolio/Diseño/Dulce Cuidado/2.mp4":    "video",
		"Portfolio/Diseño/Dulce Cuidado/logo.svg": "<svg/>",
		"Inicio/hero.png":                         "png",
		"Portfolio/notes.txt":                     "noise",
		"Other/skip.jpg":                          "outside folders",
	})

	res, err := Scan(context.Background(), defaultOptions(root))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/Inicio/hero.png",
		"/Portfolio/Diseño/Dulce Cuidado/1.jpg",
		"/Portfolio/Diseño/Dulce Cuidado/2.mp4",
		"/Portfolio/Diseño/Dulce Cuidado/logo.svg",
	}, res.Keys())
	assert.Equal(t, 1, res.SkippedCount)

	first := res.Assets[1]
	assert.Equal(t, "pixelbros/Portfolio/Diseno/Dulce_Cuidado/1", first.PublicID)
	assert.Equal(t, "Portfolio/Diseño/Dulce Cuidado/1.jpg", first.RelPath)
	assert.Equal(t, int64(3), first.Size)
	assert.Equal(t, media.Image, first.MediaType)
	assert.Equal(t, "image", first.ResourceType)

	assert.Equal(t, media.Video, res.Assets[2].MediaType)
	assert.Equal(t, "video", res.Assets[2].ResourceType)
	assert.Equal(t, media.Image, res.Assets[3].MediaType)
	assert.Equal(t, "raw", res.Assets[3].ResourceType)

	assert.Equal(t, int64(3+5+6+3), res.TotalSize())
}

func TestScan_IgnoresHiddenFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"Portfolio/A/P/1.jpg":          "x",
		"Portfolio/A/P/.DS_Store":      "x",
		"Portfolio/.cache/A/P/1.jpg":   "x",
		"Portfolio/A/P/drafts/old.jpg": "x",
	})

	opts := defaultOptions(root)
	opts.Ignore = append(opts.Ignore, "**/drafts/**")

	res, err := Scan(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"/Portfolio/A/P/1.jpg"}, res.Keys())
	assert.Equal(t, 3, res.IgnoredCount)
	assert.Zero(t, res.SkippedCount)
}

func TestScan_DotFolderWalksRoot(t *testing.T) {
	root := writeTree(t, map[string]string{
		"Portfolio/A/P/1.jpg": "x",
		"Inicio/hero.png":     "x",
		"readme.txt":          "x",
	})

	opts := defaultOptions(root)
	opts.Folders = []string{"."}

	res, err := Scan(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"/Inicio/hero.png", "/Portfolio/A/P/1.jpg"}, res.Keys())
	assert.Equal(t, 1, res.SkippedCount)
}

func TestScan_MissingFolderIsSkipped(t *testing.T) {
	root := writeTree(t, map[string]string{"Portfolio/A/P/1.jpg": "x"})

	res, err := Scan(context.Background(), defaultOptions(root))
	require.NoError(t, err)
	assert.Len(t, res.Assets, 1)
}

func TestScan_Errors(t *testing.T) {
	_, err := Scan(context.Background(), Options{Root: filepath.Join(t.TempDir(), "absent")})
	require.Error(t, err)

	root := writeTree(t, map[string]string{"Portfolio/A/P/1.jpg": "x"})
	opts := defaultOptions(root)
	opts.Ignore = []string{"[unclosed"}
	_, err = Scan(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ignore pattern")
}

func TestScan_RespectsCancellation(t *testing.T) {
	root := writeTree(t, map[string]string{"Portfolio/A/P/1.jpg": "x"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Scan(ctx, defaultOptions(root))
	require.ErrorIs(t, err, context.Canceled)
}
