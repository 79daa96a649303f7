package inspect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ilkoid/pixelbros-assets/pkg/manifest"
	"github.com/ilkoid/pixelbros-assets/pkg/s3storage"
)

func TestCompare(t *testing.T) {
	m := manifest.Manifest{
		"/Portfolio/A/P/1.jpg": "https://cdn.test/image/upload/pixelbros/Portfolio/A/P/1.jpg",
		"/Portfolio/A/P/2.jpg": "https://cdn.test/image/upload/pixelbros/Portfolio/A/P/2.jpg",
		"/Inicio/hero.jpg":     "https://res.cloudinary.com/demo/image/upload/hero.jpg",
	}
	objects := []s3storage.StoredObject{
		{Key: "image/upload/pixelbros/Portfolio/A/P/1.jpg", Size: 100},
		{Key: "raw/upload/pixelbros/logos/old.svg", Size: 7},
	}

	r := Compare(m, objects, "https://cdn.test/")

	assert.Equal(t, []Entry{{
		Key:       "/Portfolio/A/P/1.jpg",
		URL:       "https://cdn.test/image/upload/pixelbros/Portfolio/A/P/1.jpg",
		ObjectKey: "image/upload/pixelbros/Portfolio/A/P/1.jpg",
		Size:      100,
	}}, r.Present)
	assert.Len(t, r.Missing, 1)
	assert.Equal(t, "/Portfolio/A/P/2.jpg", r.Missing[0].Key)
	assert.Len(t, r.External, 1)
	assert.Equal(t, "/Inicio/hero.jpg", r.External[0].Key)
	assert.Equal(t, []string{"raw/upload/pixelbros/logos/old.svg"}, r.Orphans)
	assert.Equal(t, int64(100), r.Bytes)
}

func TestCompare_Empty(t *testing.T) {
	r := Compare(manifest.Manifest{}, nil, "https://cdn.test")
	assert.Empty(t, r.Present)
	assert.Empty(t, r.Missing)
	assert.Empty(t, r.Orphans)
}
