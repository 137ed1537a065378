package render

import (
	"net/url"
	"regexp"
	"strings"
)

// Embed providers understood by EmbedURL.
const (
	EmbedYouTube    = "youtube"
	EmbedSpotify    = "spotify"
	EmbedSoundCloud = "soundcloud"
	EmbedCustom     = "custom"
)

var (
	youtubePattern = regexp.MustCompile(`^(?:https?://)?(?:www\.|m\.)?(?:youtube\.com/(?:watch\?(?:[^#]*&)?v=|embed/|shorts/|live/)|youtu\.be/)([A-Za-z0-9_-]{11})`)
	spotifyPattern = regexp.MustCompile(`^(?:https?://)?open\.spotify\.com/(?:intl-[a-z]{2}(?:-[a-z]{2})?/)?(track|album|playlist|episode|show|artist)/([A-Za-z0-9]+)`)

	// Editor format checks. Looser than the embed conversion above.
	embedFormats = map[string]*regexp.Regexp{
		EmbedYouTube:    regexp.MustCompile(`^(?:https?://)?(?:www\.|m\.)?(?:youtube\.com/(?:watch|embed)|youtu\.be/)`),
		EmbedSpotify:    regexp.MustCompile(`^(?:https?://)?open\.spotify\.com/`),
		EmbedSoundCloud: regexp.MustCompile(`^(?:https?://)?(?:www\.|m\.)?soundcloud\.com/`),
		EmbedCustom:     regexp.MustCompile(`^https?://`),
	}
)

// EmbedProviders lists the embed types offered by the editor.
func EmbedProviders() []string {
	return []string{EmbedYouTube, EmbedSpotify, EmbedSoundCloud, EmbedCustom}
}

// ValidEmbedFormat reports whether rawURL has the shape the editor expects
// for the provider. A URL can pass this check and still fail EmbedURL.
func ValidEmbedFormat(embedType, rawURL string) bool {
	pattern, ok := embedFormats[strings.ToLower(strings.TrimSpace(embedType))]
	if !ok {
		return false
	}
	return pattern.MatchString(strings.TrimSpace(rawURL))
}

// EmbedURL converts a user supplied media URL into the provider's iframe
// source. The boolean is false when the URL cannot be embedded.
func EmbedURL(embedType, rawURL string) (string, bool) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", false
	}
	switch strings.ToLower(strings.TrimSpace(embedType)) {
	case EmbedYouTube:
		match := youtubePattern.FindStringSubmatch(trimmed)
		if match == nil {
			return "", false
		}
		return "https://www.youtube-nocookie.com/embed/" + match[1], true
	case EmbedSpotify:
		match := spotifyPattern.FindStringSubmatch(trimmed)
		if match == nil {
			return "", false
		}
		return "https://open.spotify.com/embed/" + match[1] + "/" + match[2], true
	case EmbedSoundCloud:
		parsed, ok := httpURL(trimmed)
		if !ok {
			return "", false
		}
		host := strings.ToLower(parsed.Hostname())
		if host != "soundcloud.com" && !strings.HasSuffix(host, ".soundcloud.com") {
			return "", false
		}
		return "https://w.soundcloud.com/player/?url=" + url.QueryEscape(parsed.String()), true
	case EmbedCustom:
		parsed, ok := httpURL(trimmed)
		if !ok {
			return "", false
		}
		return parsed.String(), true
	default:
		return "", false
	}
}

func httpURL(raw string) (*url.URL, bool) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, false
	}
	if parsed.Host == "" {
		return nil, false
	}
	return parsed, true
}
