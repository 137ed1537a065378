package blocks

import (
	"encoding/json"
	"strings"
)

// SocialIcon is one entry of a social_icons block's JSON array.
type SocialIcon struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// ParseSocialIcons decodes the socialIcons field. Malformed JSON and entries
// without a platform or url are dropped.
func ParseSocialIcons(raw string) []SocialIcon {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	var decoded []SocialIcon
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return nil
	}
	icons := make([]SocialIcon, 0, len(decoded))
	for _, icon := range decoded {
		platform := strings.ToLower(strings.TrimSpace(icon.Platform))
		link := strings.TrimSpace(icon.URL)
		if platform == "" || link == "" {
			continue
		}
		icons = append(icons, SocialIcon{Platform: platform, URL: link})
	}
	return icons
}
