package domain

import "strings"

// Profile describes an actor. The record with the greatest Published wins.
type Profile struct {
	URL       string `json:"-"`
	Name      string `json:"name"`
	Pronouns  string `json:"pronouns,omitempty"`
	Bio       string `json:"bio,omitempty"`
	Icon      string `json:"icon,omitempty"`
	Describes string `json:"describes"`
	Published int64  `json:"published"`
}

// ProfileSchema selects the profile records describing actor.
func ProfileSchema(actor string) Schema {
	return NewSchema(
		SchemaField{Name: "describes", Const: actor},
		SchemaField{Name: "published", Kind: "number"},
	)
}

func (p Profile) Value() map[string]any {
	value := map[string]any{
		"name":      p.Name,
		"pronouns":  p.Pronouns,
		"bio":       p.Bio,
		"describes": p.Describes,
		"published": p.Published,
	}
	if p.Icon != "" {
		value["icon"] = p.Icon
	}
	return value
}

func ProfileFromObject(o Object) Profile {
	return Profile{
		URL:       o.URL,
		Name:      stringValue(o.Value["name"]),
		Pronouns:  stringValue(o.Value["pronouns"]),
		Bio:       stringValue(o.Value["bio"]),
		Icon:      stringValue(o.Value["icon"]),
		Describes: stringValue(o.Value["describes"]),
		Published: int64Value(o.Value["published"]),
	}
}

// ShortenActor keeps the last path segment of an actor URI.
func ShortenActor(uri string) string {
	if uri == "" {
		return "Unknown User"
	}
	parts := strings.Split(uri, "/")
	if last := parts[len(parts)-1]; last != "" {
		return last
	}
	return uri
}

// DisplayName prefers the profile name and falls back to the shortened actor.
func DisplayName(p *Profile, actor string) string {
	if p != nil && p.Name != "" {
		return p.Name
	}
	return ShortenActor(actor)
}

// Initial is the first character of the display name, used when no icon is set.
func Initial(p *Profile, actor string) string {
	for _, r := range DisplayName(p, actor) {
		return strings.ToUpper(string(r))
	}
	return ""
}
