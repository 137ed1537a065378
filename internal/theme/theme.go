package theme

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/MarcoPoloResearchLab/linkden/internal/settings"
)

// ColorMode selects the light or dark palette.
type ColorMode string

const (
	ModeLight ColorMode = "light"
	ModeDark  ColorMode = "dark"
)

// ParseColorMode defaults to light.
func ParseColorMode(raw string) ColorMode {
	if ColorMode(strings.ToLower(strings.TrimSpace(raw))) == ModeDark {
		return ModeDark
	}
	return ModeLight
}

// Colors are the design tokens used by the page templates.
type Colors struct {
	Background  string
	Surface     string
	Text        string
	MutedText   string
	Primary     string
	PrimaryText string
	Border      string
}

// Preset is a named pair of palettes.
type Preset struct {
	Name  string
	Light Colors
	Dark  Colors
}

// DefaultPreset is used when the configured preset is unknown.
const DefaultPreset = "classic"

var presets = map[string]Preset{
	"classic": {
		Name: "classic",
		Light: Colors{Background: "#f8fafc", Surface: "#ffffff", Text: "#0f172a", MutedText: "#64748b",
			Primary: "#2563eb", PrimaryText: "#ffffff", Border: "#e2e8f0"},
		Dark: Colors{Background: "#0b1120", Surface: "#111827", Text: "#f8fafc", MutedText: "#94a3b8",
			Primary: "#3b82f6", PrimaryText: "#ffffff", Border: "#1f2937"},
	},
	"sunset": {
		Name: "sunset",
		Light: Colors{Background: "#fff7ed", Surface: "#ffffff", Text: "#431407", MutedText: "#9a3412",
			Primary: "#ea580c", PrimaryText: "#ffffff", Border: "#fed7aa"},
		Dark: Colors{Background: "#1c0a03", Surface: "#2a1206", Text: "#ffedd5", MutedText: "#fdba74",
			Primary: "#f97316", PrimaryText: "#1c0a03", Border: "#431407"},
	},
	"forest": {
		Name: "forest",
		Light: Colors{Background: "#f0fdf4", Surface: "#ffffff", Text: "#052e16", MutedText: "#166534",
			Primary: "#16a34a", PrimaryText: "#ffffff", Border: "#bbf7d0"},
		Dark: Colors{Background: "#03140a", Surface: "#052e16", Text: "#dcfce7", MutedText: "#86efac",
			Primary: "#22c55e", PrimaryText: "#03140a", Border: "#14532d"},
	},
	"mono": {
		Name: "mono",
		Light: Colors{Background: "#ffffff", Surface: "#fafafa", Text: "#0a0a0a", MutedText: "#525252",
			Primary: "#171717", PrimaryText: "#ffffff", Border: "#e5e5e5"},
		Dark: Colors{Background: "#0a0a0a", Surface: "#171717", Text: "#fafafa", MutedText: "#a3a3a3",
			Primary: "#fafafa", PrimaryText: "#0a0a0a", Border: "#262626"},
	},
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// PresetNames lists the available presets alphabetically.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named preset or the default one.
func Lookup(name string) Preset {
	if preset, ok := presets[strings.ToLower(strings.TrimSpace(name))]; ok {
		return preset
	}
	return presets[DefaultPreset]
}

// IsHexColor reports whether value is a #rgb or #rrggbb colour.
func IsHexColor(value string) bool {
	return hexColor.MatchString(strings.TrimSpace(value))
}

// Resolve picks the palette for the mode from the stored settings. An empty
// mode falls back to the theme_color_mode setting.
func Resolve(values map[string]string, mode ColorMode) (Colors, ColorMode) {
	if mode == "" {
		mode = ParseColorMode(values[settings.KeyThemeColorMode])
	}
	preset := Lookup(values[settings.KeyThemePreset])
	colors := preset.Light
	if mode == ModeDark {
		colors = preset.Dark
	}
	if custom := strings.TrimSpace(values[settings.KeyThemeCustomPrimary]); IsHexColor(custom) {
		colors.Primary = custom
	}
	return colors, mode
}

// CSSVariables renders the tokens as CSS custom properties for a :root rule.
func (c Colors) CSSVariables() string {
	return fmt.Sprintf(
		"--ld-bg:%s;--ld-surface:%s;--ld-text:%s;--ld-muted:%s;--ld-primary:%s;--ld-primary-text:%s;--ld-border:%s;",
		c.Background, c.Surface, c.Text, c.MutedText, c.Primary, c.PrimaryText, c.Border,
	)
}
