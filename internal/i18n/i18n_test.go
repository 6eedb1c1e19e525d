package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LoadsEmbeddedCatalogs(t *testing.T) {
	b, err := New("en")
	require.NoError(t, err)

	assert.Equal(t, []string{"en", "fr", "ja"}, b.Locales())
	assert.Equal(t, "en", b.Fallback())
}

func TestNew_UnknownFallback(t *testing.T) {
	_, err := New("kh")
	require.Error(t, err)
}

func TestBundle_Match(t *testing.T) {
	b, err := New("en")
	require.NoError(t, err)

	tests := []struct {
		in, want string
	}{
		{"", "en"},
		{"en", "en"},
		{"fr", "fr"},
		{"fr-CA", "fr"},
		{"ja-JP", "ja"},
		{"kh", "en"},
		{"de", "en"},
		{"!!", "en"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, b.Match(tc.in))
		})
	}
}

func TestBundle_Message(t *testing.T) {
	b, err := New("en")
	require.NoError(t, err)

	assert.Equal(t, "Se connecter", b.Message("fr", "sign_in"))
	assert.Equal(t, "Welcome, Seraphina", b.Message("en", "welcome", "Seraphina"))
	// ja has no under_construction entry.
	assert.Equal(t, "This page is under construction", b.Message("ja", "under_construction"))
	assert.Equal(t, "no_such_key", b.Message("fr", "no_such_key"))
}

func TestBundle_CatalogIsCopyWithFallback(t *testing.T) {
	b, err := New("en")
	require.NoError(t, err)

	c := b.Catalog("ja")
	assert.Equal(t, "ログイン", c["sign_in"])
	assert.Equal(t, "This page is under construction", c["under_construction"])

	c["sign_in"] = "changed"
	assert.Equal(t, "ログイン", b.Message("ja", "sign_in"))
}

func TestNewBundle_FallbackOrdering(t *testing.T) {
	b, err := newBundle("fr", map[string]map[string]string{
		"en": {"k": "en"},
		"fr": {"k": "fr"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"fr", "en"}, b.Locales())
	assert.Equal(t, "fr", b.Match("de"))
}
