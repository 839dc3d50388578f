package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Simple word", "General", "general"},
		{"Spaces become dashes", "Design Crits", "design-crits"},
		{"Accents are stripped", "Café Crème", "cafe-creme"},
		{"Noise collapses", "  Hello,   World!! ", "hello-world"},
		{"Digits are kept", "Class of 2026", "class-of-2026"},
		{"Only noise", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

func TestDefaultCommunities_Contain_Default(t *testing.T) {
	req := require.New(t)
	communities := DefaultCommunities()

	req.NotEmpty(communities)
	req.Equal(DefaultCommunityID, communities[0].ID)
}
