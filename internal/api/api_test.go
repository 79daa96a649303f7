package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/pixelbros-assets/pkg/manifest"
	"github.com/ilkoid/pixelbros-assets/pkg/media"
	"github.com/ilkoid/pixelbros-assets/pkg/portfolio"
)

var sample = manifest.Manifest{
	"/Portfolio/Branding/Acme/1.jpg":            "https://cdn/b/acme/1.jpg",
	"/Portfolio/Branding/Acme/2.jpg":            "https://cdn/b/acme/2.jpg",
	"/Portfolio/Branding/Zeta/1.jpg":            "https://cdn/b/zeta/1.jpg",
	"/Portfolio/Social Media/Café/reel.mp4":     "https://cdn/video/upload/s/cafe/reel.mp4",
	"/Portfolio/Social Media/Café/Posts/01.png": "https://cdn/s/cafe/posts/01.png",
	"/Inicio/hero.jpg":                          "https://cdn/inicio/hero.jpg",
}

func newTestServer(t *testing.T) (*httptest.Server, *Metrics) {
	t.Helper()
	metrics := NewMetrics()
	svc := NewStaticService(sample, metrics)
	srv := httptest.NewServer(NewRouter(svc, metrics))
	t.Cleanup(srv.Close)
	return srv, metrics
}

func getJSON(t *testing.T, url string, dest any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if dest != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
	}
	return resp.StatusCode
}

func TestRouter_Index(t *testing.T) {
	srv, _ := newTestServer(t)

	var idx portfolio.Index
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/portfolio", &idx))
	require.Len(t, idx.Categories, 2)
	assert.Equal(t, "branding", idx.Categories[0].ID)
	assert.Equal(t, "social-media", idx.Categories[1].ID)
	assert.Len(t, idx.Projects, 3)
	assert.Contains(t, idx.BySlug, "social-media-cafe")
}

func TestRouter_Categories(t *testing.T) {
	srv, _ := newTestServer(t)

	var cats []portfolio.Category
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/portfolio/categories", &cats))
	require.Len(t, cats, 2)
	assert.Equal(t, "Branding", cats[0].Name)
	assert.Len(t, cats[0].Projects, 2)
}

func TestRouter_ProjectsFilter(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		query string
		want  []string
	}{
		{query: "", want: []string{"branding-acme", "branding-zeta", "social-media-cafe"}},
		{query: "?category=all", want: []string{"branding-acme", "branding-zeta", "social-media-cafe"}},
		{query: "?category=social-media", want: []string{"social-media-cafe"}},
		{query: "?category=unknown", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var projects []portfolio.Project
			assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/portfolio/projects"+tt.query, &projects))
			slugs := make([]string, len(projects))
			for i, p := range projects {
				slugs[i] = p.Slug
			}
			assert.Equal(t, tt.want, slugs)
		})
	}
}

func TestRouter_ProjectDetail(t *testing.T) {
	srv, _ := newTestServer(t)

	var p portfolio.Project
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/portfolio/projects/social-media-cafe", &p))
	assert.Equal(t, "Café", p.Title)
	require.Len(t, p.Groups, 2)
	assert.Nil(t, p.Items)

	var posters []string
	for _, g := range p.Groups {
		for _, it := range g.Items {
			if it.Type == media.Video {
				posters = append(posters, it.Poster)
			} else {
				assert.Empty(t, it.Poster, it.Src)
			}
		}
	}
	assert.Equal(t, []string{"https://cdn/video/upload/so_0,q_auto,f_jpg/s/cafe/reel.jpg"}, posters)

	var body map[string]string
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/api/portfolio/projects/nope", &body))
	assert.Equal(t, "project not found", body["error"])
}

func TestRouter_CoversAndFeatured(t *testing.T) {
	srv, _ := newTestServer(t)

	var covers []string
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/portfolio/covers", &covers))
	assert.Equal(t, []string{
		"https://cdn/b/acme/1.jpg",
		"https://cdn/b/zeta/1.jpg",
		"https://cdn/s/cafe/posts/01.png",
	}, covers)

	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/portfolio/covers?limit=1", &covers))
	assert.Len(t, covers, 1)

	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/portfolio/covers?strip=1", &covers))
	assert.Len(t, covers, 12)

	var featured []portfolio.Project
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/portfolio/featured?n=2", &featured))
	assert.Len(t, featured, 2)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/portfolio/featured?n=-1", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/portfolio/covers?limit=abc", nil))
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t)

	var health map[string]any
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/healthz", &health))
	assert.Equal(t, "ok", health["status"])
	assert.EqualValues(t, 3, health["projects"])

	getJSON(t, srv.URL+"/api/portfolio/projects/nope", nil)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, `portfolio_http_requests_total{route="/api/portfolio/projects/{slug}",status="404"} 1`)
	assert.Contains(t, text, "portfolio_index_projects 3")
	assert.Contains(t, text, "portfolio_index_media_items 5")
}

func TestService_ReloadKeepsPreviousIndexOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, manifest.Save(path, sample))

	svc, err := NewService(path, nil)
	require.NoError(t, err)
	before := svc.Index()

	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))
	require.Error(t, svc.Reload())
	assert.Same(t, before, svc.Index())
}

func TestService_WatchRebuildsOnSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, manifest.Save(path, manifest.Manifest{"/Portfolio/A/P/1.jpg": "u1"}))

	svc, err := NewService(path, nil)
	require.NoError(t, err)
	require.Len(t, svc.Index().Projects, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Watch(ctx, 20*time.Millisecond) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// даём watcher'у подписаться
	time.Sleep(100 * time.Millisecond)

	next := manifest.Manifest{
		"/Portfolio/A/P/1.jpg": "u1",
		"/Portfolio/A/Q/1.jpg": "u2",
	}
	require.NoError(t, manifest.Save(path, next))

	require.Eventually(t, func() bool {
		return len(svc.Index().Projects) == 2
	}, 3*time.Second, 20*time.Millisecond)
}

func TestService_WatchRequiresFile(t *testing.T) {
	svc := NewStaticService(sample, nil)
	err := svc.Watch(context.Background(), 0)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "no manifest file"))
}
