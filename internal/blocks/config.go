package blocks

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ConfigBag is the leniently parsed form of a block's JSON config.
type ConfigBag map[string]any

// ParseConfig decodes raw JSON into a bag. Malformed input or a non-object
// value yields an empty bag.
func ParseConfig(raw string) ConfigBag {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ConfigBag{}
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil || decoded == nil {
		return ConfigBag{}
	}
	return ConfigBag(decoded)
}

// String serializes the bag with sorted keys.
func (bag ConfigBag) String() string {
	if len(bag) == 0 {
		return "{}"
	}
	encoded, err := json.Marshal(map[string]any(bag))
	if err != nil {
		return "{}"
	}
	return string(encoded)
}

// With returns a copy of the bag with key set to value. A nil value removes the key.
func (bag ConfigBag) With(key string, value any) ConfigBag {
	out := make(ConfigBag, len(bag)+1)
	for k, v := range bag {
		out[k] = v
	}
	if value == nil {
		delete(out, key)
	} else {
		out[key] = value
	}
	return out
}

// UpdateConfigField parses raw, sets key and reserializes.
func UpdateConfigField(raw, key string, value any) string {
	return ParseConfig(raw).With(key, value).String()
}

// Bool reads a boolean, accepting JSON booleans and "true"/"false" strings.
func (bag ConfigBag) Bool(key string, fallback bool) bool {
	switch value := bag[key].(type) {
	case bool:
		return value
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fallback
		}
		return parsed
	default:
		return fallback
	}
}

// StringValue reads a trimmed string value.
func (bag ConfigBag) StringValue(key, fallback string) string {
	value, ok := bag[key].(string)
	if !ok {
		return fallback
	}
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}

// Int reads an integer, accepting JSON numbers and numeric strings.
func (bag ConfigBag) Int(key string, fallback int) int {
	switch value := bag[key].(type) {
	case float64:
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fallback
		}
		return int(value)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fallback
		}
		return parsed
	default:
		return fallback
	}
}

func (bag ConfigBag) enum(key, fallback string, allowed ...string) string {
	value := strings.ToLower(bag.StringValue(key, fallback))
	for _, candidate := range allowed {
		if value == candidate {
			return value
		}
	}
	return fallback
}

func (bag ConfigBag) extra(known ...string) ConfigBag {
	out := ConfigBag{}
	for key, value := range bag {
		isKnown := false
		for _, name := range known {
			if key == name {
				isKnown = true
				break
			}
		}
		if !isKnown {
			out[key] = value
		}
	}
	return out
}

// Animation values accepted by link blocks.
const (
	AnimationNone  = "none"
	AnimationPulse = "pulse"
	AnimationShake = "shake"
)

// LinkConfig holds display options for link blocks.
type LinkConfig struct {
	NoFollow        bool
	NewTab          bool
	Animation       string
	Thumbnail       string
	Emoji           string
	Align           string
	Outline         bool
	Radius          string
	Shadow          string
	CustomColor     string
	CustomTextColor string
	Extra           ConfigBag
}

// DecodeLinkConfig applies link defaults to the bag.
func DecodeLinkConfig(bag ConfigBag) LinkConfig {
	return LinkConfig{
		NoFollow:        bag.Bool("noFollow", false),
		NewTab:          bag.Bool("newTab", true),
		Animation:       bag.enum("animation", AnimationNone, AnimationNone, AnimationPulse, AnimationShake),
		Thumbnail:       bag.StringValue("thumbnail", ""),
		Emoji:           bag.StringValue("emoji", ""),
		Align:           bag.enum("align", "center", "left", "center", "right"),
		Outline:         bag.Bool("outline", false),
		Radius:          bag.enum("radius", "md", "none", "sm", "md", "lg", "full"),
		Shadow:          bag.enum("shadow", "none", "none", "sm", "md", "lg"),
		CustomColor:     bag.StringValue("customColor", ""),
		CustomTextColor: bag.StringValue("customTextColor", ""),
		Extra: bag.extra("noFollow", "newTab", "animation", "thumbnail", "emoji", "align",
			"outline", "radius", "shadow", "customColor", "customTextColor"),
	}
}

// HeaderConfig holds display options for header blocks.
type HeaderConfig struct {
	Level   string
	Align   string
	Weight  string
	Emoji   string
	Divider bool
	Extra   ConfigBag
}

// DecodeHeaderConfig applies header defaults to the bag.
func DecodeHeaderConfig(bag ConfigBag) HeaderConfig {
	return HeaderConfig{
		Level:   bag.enum("level", "h2", "h2", "h3", "h4"),
		Align:   bag.enum("align", "center", "left", "center", "right"),
		Weight:  bag.enum("weight", "semibold", "normal", "medium", "semibold", "bold"),
		Emoji:   bag.StringValue("emoji", ""),
		Divider: bag.Bool("divider", false),
		Extra:   bag.extra("level", "align", "weight", "emoji", "divider"),
	}
}

// EmbedConfig holds display options for embed blocks.
type EmbedConfig struct {
	AspectRatio string
	MaxWidth    int
	ShowTitle   bool
	Extra       ConfigBag
}

// DecodeEmbedConfig applies embed defaults to the bag.
func DecodeEmbedConfig(bag ConfigBag) EmbedConfig {
	maxWidth := bag.Int("maxWidth", 0)
	if maxWidth < 0 {
		maxWidth = 0
	}
	return EmbedConfig{
		AspectRatio: bag.enum("aspectRatio", "16:9", "16:9", "4:3", "1:1", "auto"),
		MaxWidth:    maxWidth,
		ShowTitle:   bag.Bool("showTitle", false),
		Extra:       bag.extra("aspectRatio", "maxWidth", "showTitle"),
	}
}

// SocialIconsConfig holds display options for social icon rows.
type SocialIconsConfig struct {
	Size    string
	Shape   string
	Spacing string
	Extra   ConfigBag
}

// DecodeSocialIconsConfig applies social icon defaults to the bag.
func DecodeSocialIconsConfig(bag ConfigBag) SocialIconsConfig {
	return SocialIconsConfig{
		Size:    bag.enum("size", "md", "sm", "md", "lg"),
		Shape:   bag.enum("shape", "circle", "circle", "rounded", "square"),
		Spacing: bag.enum("spacing", "normal", "tight", "normal", "loose"),
		Extra:   bag.extra("size", "shape", "spacing"),
	}
}

// Contact form presentation variants.
const (
	ContactVariantInline = "inline"
	ContactVariantModal  = "modal"
)

// ContactFormConfig holds display options for contact form blocks.
type ContactFormConfig struct {
	Variant        string
	ButtonText     string
	SuccessMessage string
	Description    string
	ShowPhone      bool
	ShowSubject    bool
	ShowCompany    bool
	Extra          ConfigBag
}

// DecodeContactFormConfig applies contact form defaults to the bag.
func DecodeContactFormConfig(bag ConfigBag) ContactFormConfig {
	return ContactFormConfig{
		Variant:        bag.enum("variant", ContactVariantInline, ContactVariantInline, ContactVariantModal),
		ButtonText:     bag.StringValue("buttonText", "Send Message"),
		SuccessMessage: bag.StringValue("successMessage", "Thanks! Your message has been sent."),
		Description:    bag.StringValue("description", ""),
		ShowPhone:      bag.Bool("showPhone", false),
		ShowSubject:    bag.Bool("showSubject", false),
		ShowCompany:    bag.Bool("showCompany", false),
		Extra: bag.extra("variant", "buttonText", "successMessage", "description",
			"showPhone", "showSubject", "showCompany"),
	}
}
