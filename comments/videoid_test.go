package comments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{"WatchWithExtraParams", "https://www.youtube.com/watch?v=ABC123&t=5s", "ABC123"},
		{"WatchParamNotFirst", "https://www.youtube.com/watch?feature=share&v=QWE_-9", "QWE_-9"},
		{"ShortLink", "https://youtu.be/XYZ789", "XYZ789"},
		{"ShortLinkWithQuery", "https://youtu.be/XYZ789?si=abc", "XYZ789"},
		{"Embed", "https://www.youtube.com/embed/EMB456", "EMB456"},
		{"Shorts", "https://www.youtube.com/shorts/SHR111", "SHR111"},
		{"Fragment", "https://www.youtube.com/watch?v=FRG222#comments", "FRG222"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ExtractVideoID(tt.url)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, id)
		})
	}

	t.Run("NoMatch", func(t *testing.T) {
		for _, url := range []string{"", "https://example.com/video", "not a url"} {
			id, err := ExtractVideoID(url)
			assert.ErrorIs(t, err, ErrInvalidIdentifier)
			assert.Empty(t, id)
		}
	})
}

func TestResolveVideoID(t *testing.T) {
	id, err := ResolveVideoID(" dQw4w9WgXcQ ")
	assert.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", id)

	id, err = ResolveVideoID("https://youtu.be/XYZ789")
	assert.NoError(t, err)
	assert.Equal(t, "XYZ789", id)

	_, err = ResolveVideoID("")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)

	_, err = ResolveVideoID("https://vimeo.com/12345")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}
