package theme

import (
	"strings"
	"testing"

	"github.com/MarcoPoloResearchLab/linkden/internal/settings"
)

func TestResolveUsesSettings(t *testing.T) {
	values := map[string]string{
		settings.KeyThemePreset:        "forest",
		settings.KeyThemeColorMode:     "dark",
		settings.KeyThemeCustomPrimary: "#ff00aa",
	}
	colors, mode := Resolve(values, "")
	if mode != ModeDark {
		t.Fatalf("expected dark mode from settings, got %s", mode)
	}
	if colors.Background != presets["forest"].Dark.Background {
		t.Fatalf("expected forest dark background, got %s", colors.Background)
	}
	if colors.Primary != "#ff00aa" {
		t.Fatalf("expected custom primary, got %s", colors.Primary)
	}
}

func TestResolveExplicitModeWins(t *testing.T) {
	colors, mode := Resolve(map[string]string{settings.KeyThemeColorMode: "dark"}, ModeLight)
	if mode != ModeLight || colors != presets[DefaultPreset].Light {
		t.Fatalf("expected default light palette, got %s %+v", mode, colors)
	}
}

func TestResolveIgnoresInvalidCustomPrimary(t *testing.T) {
	colors, _ := Resolve(map[string]string{
		settings.KeyThemePreset:        "unknown",
		settings.KeyThemeCustomPrimary: "red;}body{display:none",
	}, ModeLight)
	if colors.Primary != presets[DefaultPreset].Light.Primary {
		t.Fatalf("invalid custom colour must be ignored, got %s", colors.Primary)
	}
}

func TestCSSVariables(t *testing.T) {
	css := Lookup("mono").Light.CSSVariables()
	if !strings.Contains(css, "--ld-primary:#171717;") || !strings.HasSuffix(css, ";") {
		t.Fatalf("unexpected css %s", css)
	}
	if len(PresetNames()) != 4 || PresetNames()[0] != "classic" {
		t.Fatalf("unexpected preset names %v", PresetNames())
	}
}
