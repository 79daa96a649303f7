package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/pixelbros-assets/pkg/manifest"
	"github.com/ilkoid/pixelbros-assets/pkg/portfolio"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := rootCmd()

	for _, args := range [][]string{
		{"upload"},
		{"retry"},
		{"extra"},
		{"manifest", "merge"},
		{"manifest", "show"},
		{"index"},
		{"journal"},
	} {
		cmd, rest, err := root.Find(args)
		require.NoError(t, err, args)
		assert.Empty(t, rest)
		assert.Equal(t, args[len(args)-1], cmd.Name())
	}

	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
	assert.NotNil(t, root.PersistentFlags().Lookup("debug"))
}

// workspace — конфиг, дерево ассетов и манифест во временной директории.
type workspace struct {
	dir      string
	config   string
	manifest string
}

func newWorkspace(t *testing.T, files []string, m manifest.Manifest) workspace {
	t.Helper()
	dir := t.TempDir()
	for _, rel := range files {
		p := filepath.Join(dir, "assets", filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}

	w := workspace{
		dir:      dir,
		config:   filepath.Join(dir, "config.yaml"),
		manifest: filepath.Join(dir, "manifest.json"),
	}
	yaml := fmt.Sprintf(`assets:
  root: %q
  folders: ["Portfolio"]
  manifest_path: %q
  local_base_url: "/assets"
app:
  log_dir: %q
`, filepath.Join(dir, "assets"), w.manifest, filepath.Join(dir, "logs"))
	require.NoError(t, os.WriteFile(w.config, []byte(yaml), 0o644))

	if m != nil {
		require.NoError(t, manifest.Save(w.manifest, m))
	}
	return w
}

func (w workspace) run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := rootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", w.config}, args...))
	require.NoError(t, root.Execute())
	return out.String()
}

func TestManifestMerge_RemoteWinsAndOverwritesByDefault(t *testing.T) {
	w := newWorkspace(t,
		[]string{"Portfolio/A/P/1.jpg", "Portfolio/A/P/2.jpg"},
		manifest.Manifest{"/Portfolio/A/P/1.jpg": "https://cdn/1.jpg"})

	w.run(t, "manifest", "merge")

	got, err := manifest.Load(w.manifest)
	require.NoError(t, err)
	assert.Equal(t, manifest.Manifest{
		"/Portfolio/A/P/1.jpg": "https://cdn/1.jpg",
		"/Portfolio/A/P/2.jpg": "/assets/Portfolio/A/P/2.jpg",
	}, got)
}

func TestManifestMerge_OutLeavesRemoteUntouched(t *testing.T) {
	remote := manifest.Manifest{"/Portfolio/A/P/1.jpg": "https://cdn/1.jpg"}
	w := newWorkspace(t, []string{"Portfolio/A/P/1.jpg", "Portfolio/A/P/2.jpg"}, remote)
	out := filepath.Join(w.dir, "merged.json")

	w.run(t, "manifest", "merge", "-o", out)

	got, err := manifest.Load(w.manifest)
	require.NoError(t, err)
	assert.Equal(t, remote, got)

	merged, err := manifest.Load(out)
	require.NoError(t, err)
	assert.Len(t, merged, 2)
	assert.Equal(t, "https://cdn/1.jpg", merged["/Portfolio/A/P/1.jpg"])
}

func TestIndex_WritesJSONWithCollisions(t *testing.T) {
	w := newWorkspace(t, nil, manifest.Manifest{
		"/Portfolio/A B/C/1.jpg": "https://cdn/image/upload/1.jpg",
		"/Portfolio/A/B C/2.jpg": "https://cdn/image/upload/2.jpg",
		"/Portfolio/A/D/1.mp4":   "https://cdn/video/upload/d.mp4",
		"/Inicio/hero.png":       "https://cdn/image/upload/hero.png",
	})
	out := filepath.Join(w.dir, "index.json")

	stdout := w.run(t, "index", "-o", out)
	assert.Contains(t, stdout, `! slug "a-b-c"`)
	assert.Contains(t, stdout, "Index saved to: "+out)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	var idx portfolio.Index
	require.NoError(t, json.Unmarshal(raw, &idx))

	slugs := make([]string, 0, len(idx.Projects))
	for _, p := range idx.Projects {
		slugs = append(slugs, p.Slug)
	}
	assert.ElementsMatch(t, []string{"a-b-c", "a-d"}, slugs)
	assert.Equal(t, []portfolio.Collision{
		{Kind: portfolio.CollisionSlug, Slug: "a-b-c", Kept: "A B/C", Merged: "A/B C"},
	}, idx.Collisions)

	video := idx.BySlug["a-d"].Items
	require.Len(t, video, 1)
	assert.Equal(t, "https://cdn/video/upload/so_0,q_auto,f_jpg/d.jpg", video[0].Poster)
}

func TestIndex_SummaryCountsResourceTypes(t *testing.T) {
	w := newWorkspace(t, nil, manifest.Manifest{
		"/Portfolio/A/P/1.jpg": "u1",
		"/Portfolio/A/P/2.mp4": "u2",
		"/Portfolio/A/P/l.svg": "u3",
		"/Inicio/hero.png":     "u4",
	})

	out := w.run(t, "index")
	assert.Contains(t, out, "1 categories, 1 projects, 0 keys skipped")
	assert.Contains(t, out, "  image  2\n")
	assert.Contains(t, out, "  raw    1\n")
	assert.Contains(t, out, "  video  1\n")
}

func TestIndex_Records(t *testing.T) {
	w := newWorkspace(t, nil, manifest.Manifest{
		"/Portfolio/A/P/2.mp4": "u2",
		"/Portfolio/A/P/1.jpg": "u1",
		"/Inicio/hero.png":     "u3",
	})

	out := w.run(t, "index", "--records")
	assert.Equal(t,
		"image  /Portfolio/A/P/1.jpg -> u1\n"+
			"video  /Portfolio/A/P/2.mp4 -> u2\n",
		out)
}
