package portfolio

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/pixelbros-assets/pkg/media"
)

func sampleIndex() *Index {
	return Build(map[string]string{
		"/Portfolio/Branding/Acme/1.mp4":          "https://cdn/video/upload/acme-1.mp4",
		"/Portfolio/Branding/Acme/2.jpg":          "https://cdn/image/upload/acme-2.jpg",
		"/Portfolio/Branding/Zeta/1.jpg":          "https://cdn/image/upload/zeta-1.jpg",
		"/Portfolio/Social Media/Bar/1.jpg":       "https://cdn/image/upload/bar-1.jpg",
		"/Portfolio/Social Media/Bar/Promo/2.jpg": "https://cdn/image/upload/bar-2.jpg",
	})
}

func TestIndex_Lookup(t *testing.T) {
	idx := sampleIndex()

	p, ok := idx.Lookup("branding-zeta")
	require.True(t, ok)
	assert.Equal(t, "Zeta", p.Title)

	p, ok = idx.Lookup("missing")
	assert.False(t, ok)
	require.NotNil(t, p)
	assert.Equal(t, "branding-acme", p.Slug, "falls back to the first project")

	p, ok = (&Index{BySlug: map[string]*Project{}}).Lookup("x")
	assert.False(t, ok)
	assert.Nil(t, p)
}

func TestIndex_ProjectsIn(t *testing.T) {
	idx := sampleIndex()

	assert.Len(t, idx.ProjectsIn(""), 3)
	assert.Len(t, idx.ProjectsIn(AllCategories), 3)

	social := idx.ProjectsIn("social-media")
	require.Len(t, social, 1)
	assert.Equal(t, "social-media-bar", social[0].Slug)

	assert.Empty(t, idx.ProjectsIn("unknown"))
}

func TestIndex_Featured(t *testing.T) {
	idx := sampleIndex()
	assert.Len(t, idx.Featured(2), 2)
	assert.Len(t, idx.Featured(10), 3)
	assert.Len(t, idx.Featured(0), 3)
}

func TestIndex_Covers(t *testing.T) {
	idx := sampleIndex()

	assert.Equal(t, []string{
		"https://cdn/image/upload/acme-2.jpg",
		"https://cdn/image/upload/zeta-1.jpg",
		"https://cdn/image/upload/bar-1.jpg",
	}, idx.Covers(0))
	assert.Len(t, idx.Covers(2), 2)

	strip := idx.CoverStrip(10, 14)
	assert.Len(t, strip, 12)
	assert.Equal(t, strip[0], strip[3])

	assert.Empty(t, Build(nil).CoverStrip(10, 14))
}

func TestPosterURL(t *testing.T) {
	assert.Equal(t,
		"https://res.cloudinary.com/x/video/upload/so_0,q_auto,f_jpg/v1/pixelbros/reel.jpg",
		PosterURL("https://res.cloudinary.com/x/video/upload/v1/pixelbros/reel.mp4"))
	assert.Equal(t, "https://cdn/clip.jpg", PosterURL("https://cdn/clip.WEBM"))
	assert.Equal(t, "", PosterURL("https://cdn/image/upload/1.jpg"))
	assert.Equal(t, "", PosterURL(""))
}

func TestRecords(t *testing.T) {
	records := Records(map[string]string{
		`\Portfolio\B\P\2.mov`: "b",
		"/Portfolio/A/P/1.jpg": "a",
	})

	assert.Equal(t, []AssetRecord{
		{RawPath: "/Portfolio/A/P/1.jpg", URL: "a", MediaType: media.Image},
		{RawPath: "/Portfolio/B/P/2.mov", URL: "b", MediaType: media.Video},
	}, records)
}

func TestIndex_JSONShape(t *testing.T) {
	idx := sampleIndex()
	raw, err := json.Marshal(idx)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "categories")
	assert.Contains(t, decoded, "projects")
	assert.Contains(t, decoded, "projectsBySlug")
	assert.NotContains(t, decoded, "collisions")

	noCover, err := json.Marshal(&Project{Slug: "x"})
	require.NoError(t, err)
	assert.Contains(t, string(noCover), `"coverSrc":null`)
}
