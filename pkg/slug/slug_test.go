package slug

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "strips accents", input: "Diseño", want: "Diseno"},
		{name: "spaces become underscore", input: "Dulce Cuidado", want: "Dulce_Cuidado"},
		{name: "collapses runs", input: "a  &  b", want: "a_b"},
		{name: "trims edges", input: "  (final) ", want: "final"},
		{name: "keeps dot dash underscore", input: "img-2_v3.jpg", want: "img-2_v3.jpg"},
		{name: "keeps case", input: "Café Bar", want: "Cafe_Bar"},
		{name: "empty", input: "", want: ""},
		{name: "only symbols", input: "¡¿!?", want: ""},
		{name: "non latin letters", input: "Фото 1", want: "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "Social Media", want: "social-media"},
		{input: "Café Bar", want: "cafe-bar"},
		{input: "Diseño de Identidad Visual", want: "diseno-de-identidad-visual"},
		{input: "--Acme & Co.--", want: "acme-co"},
		{input: "ÁRBOL", want: "arbol"},
		{input: "!!!", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.input))
		})
	}
}

func TestStripAccents_OnlyCombiningBlock(t *testing.T) {
	// "ø" не раскладывается в NFD и остаётся как есть
	assert.Equal(t, "Ano ø", StripAccents("Año ø"))
}

func TestPublicID(t *testing.T) {
	got := PublicID("pixelbros", "Portfolio/Diseño de Identidad Visual/Dulce Cuidado/1.jpg")
	assert.Equal(t, "pixelbros/Portfolio/Diseno_de_Identidad_Visual/Dulce_Cuidado/1", got)

	assert.Equal(t, "Inicio/hero", PublicID("", `Inicio\hero.mp4`))
	assert.Equal(t, "p/dir.v2/file", PublicID("p/", "dir.v2/file.png"))
}

func TestManifestKey(t *testing.T) {
	root := filepath.Join("src", "assets")

	key, err := ManifestKey(root, filepath.Join(root, "Portfolio", "Branding", "Acme", "1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "/Portfolio/Branding/Acme/1.jpg", key)

	_, err = ManifestKey(root, filepath.Join("src", "images", "logo.png"))
	assert.Error(t, err)
}
