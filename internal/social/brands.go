package social

import (
	"strings"
	"unicode"
)

// Brand describes how a network is drawn on the public page.
type Brand struct {
	Name  string
	Color string
	// Glyph is the short text shown inside the icon badge.
	Glyph string
}

var brands = map[string]Brand{
	"github":    {Name: "GitHub", Color: "#181717", Glyph: "GH"},
	"x":         {Name: "X", Color: "#000000", Glyph: "X"},
	"twitter":   {Name: "Twitter", Color: "#1DA1F2", Glyph: "TW"},
	"instagram": {Name: "Instagram", Color: "#E4405F", Glyph: "IG"},
	"facebook":  {Name: "Facebook", Color: "#1877F2", Glyph: "FB"},
	"linkedin":  {Name: "LinkedIn", Color: "#0A66C2", Glyph: "in"},
	"youtube":   {Name: "YouTube", Color: "#FF0000", Glyph: "YT"},
	"tiktok":    {Name: "TikTok", Color: "#000000", Glyph: "TT"},
	"twitch":    {Name: "Twitch", Color: "#9146FF", Glyph: "TV"},
	"spotify":   {Name: "Spotify", Color: "#1DB954", Glyph: "SP"},
	"mastodon":  {Name: "Mastodon", Color: "#6364FF", Glyph: "MA"},
	"bluesky":   {Name: "Bluesky", Color: "#0085FF", Glyph: "BS"},
	"discord":   {Name: "Discord", Color: "#5865F2", Glyph: "DC"},
	"email":     {Name: "Email", Color: "#6B7280", Glyph: "@"},
}

const fallbackColor = "#6B7280"

// BrandFor returns the brand for a slug. Unknown slugs get a neutral badge
// showing up to two initials.
func BrandFor(slug string) (Brand, bool) {
	key := strings.ToLower(strings.TrimSpace(slug))
	if brand, ok := brands[key]; ok {
		return brand, true
	}
	return Brand{Name: slug, Color: fallbackColor, Glyph: Initials(key)}, false
}

// Initials returns up to two uppercase letters or digits from the slug.
func Initials(slug string) string {
	var letters []rune
	for _, r := range slug {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			letters = append(letters, unicode.ToUpper(r))
			if len(letters) == 2 {
				break
			}
		}
	}
	if len(letters) == 0 {
		return "?"
	}
	return string(letters)
}
