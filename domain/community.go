package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultCommunityID is the community every actor belongs to.
// It can be neither left nor deleted.
const DefaultCommunityID = "general"

// Community is a named channel actors can join.
// CreatedBy is empty for the seeded communities.
type Community struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedBy   string `json:"createdBy"`
}

func DefaultCommunities() []Community {
	return []Community{
		{ID: DefaultCommunityID, Name: "General", Description: "Everyone lands here first"},
		{ID: "design", Name: "Design", Description: "Critiques, sketches and prototypes"},
		{ID: "random", Name: "Random", Description: "Anything that fits nowhere else"},
	}
}

// Slugify derives a community id from its display name:
// accents are stripped, letters lowered and every other run of characters becomes a dash.
func Slugify(name string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		name,
	)
	if err != nil {
		folded = name
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
