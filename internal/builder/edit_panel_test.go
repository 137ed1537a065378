package builder

import (
	"reflect"
	"slices"
	"testing"
	"time"

	"github.com/MarcoPoloResearchLab/linkden/internal/blocks"
)

func panelFor(kind blocks.Kind, config string) *EditPanel {
	title := "Title"
	return NewEditPanel(blocks.Block{ID: "blk_1", Type: string(kind), Title: &title, Config: config}, time.UTC)
}

func TestEditPanelTabsKeepEdits(t *testing.T) {
	panel := panelFor(blocks.KindLink, "{}")
	if panel.Tab() != TabContent {
		t.Fatalf("expected content tab by default")
	}
	panel.Title = "Edited"
	panel.SetTab(TabStyle)
	panel.UpdateConfigField("animation", "shake")
	panel.SetTab(Tab("bogus"))
	if panel.Tab() != TabStyle {
		t.Fatalf("unknown tabs should be ignored")
	}
	panel.SetTab(TabContent)
	if panel.Title != "Edited" || panel.LinkSettings().Animation != blocks.AnimationShake {
		t.Fatalf("edits lost across tab switches")
	}
}

func TestEditPanelVisibleFieldsPerKind(t *testing.T) {
	testCases := []struct {
		kind blocks.Kind
		tab  Tab
		want []Field
	}{
		{kind: blocks.KindLink, tab: TabContent, want: []Field{FieldTitle, FieldURL}},
		{kind: blocks.KindLink, tab: TabStyle, want: []Field{FieldIcon, FieldNoFollow, FieldNewTab, FieldAnimation, FieldThumbnail, FieldAdvancedConfig}},
		{kind: blocks.KindEmbed, tab: TabContent, want: []Field{FieldEmbedType, FieldEmbedURL}},
		{kind: blocks.KindSocialIcons, tab: TabContent, want: []Field{FieldSocialIcons}},
		{kind: blocks.KindHeader, tab: TabContent, want: []Field{FieldTitle}},
		{kind: blocks.KindHeader, tab: TabStyle, want: []Field{FieldIcon, FieldAdvancedConfig}},
		{kind: blocks.KindContactForm, tab: TabOptions, want: []Field{FieldDelivery}},
		{kind: blocks.KindHeader, tab: TabOptions, want: nil},
		{kind: blocks.KindHeader, tab: TabSchedule, want: []Field{FieldScheduleStart, FieldScheduleEnd}},
	}
	for _, testCase := range testCases {
		panel := panelFor(testCase.kind, "{}")
		panel.SetTab(testCase.tab)
		if got := panel.VisibleFields(); !slices.Equal(got, testCase.want) {
			t.Fatalf("%s/%s: got %v want %v", testCase.kind, testCase.tab, got, testCase.want)
		}
	}
	if panelFor(blocks.KindHeader, "{}").OptionsMessage() != OptionsInfoMessage {
		t.Fatalf("expected informational options copy")
	}
	if panelFor(blocks.KindContactForm, "{}").OptionsMessage() != "" {
		t.Fatalf("contact form shows the delivery selector instead")
	}
}

func TestEditPanelConfigWidgetsToleratesMalformedJSON(t *testing.T) {
	panel := panelFor(blocks.KindLink, "{not json")
	if !reflect.DeepEqual(panel.LinkSettings(), panelFor(blocks.KindLink, "{}").LinkSettings()) {
		t.Fatalf("malformed config should read like defaults")
	}
	panel.UpdateConfigField("noFollow", true)
	if panel.Config != `{"noFollow":true}` {
		t.Fatalf("unexpected config %s", panel.Config)
	}
}

func TestEditPanelEmbedWarningDoesNotBlockSave(t *testing.T) {
	panel := panelFor(blocks.KindEmbed, "{}")
	panel.EmbedType = "youtube"
	panel.EmbedURL = "https://example.com/not-youtube"
	if panel.EmbedWarning() == "" {
		t.Fatalf("expected a warning")
	}
	fields := panel.Fields()
	if value := fields.EmbedURL.Value(); value == nil || *value != "https://example.com/not-youtube" {
		t.Fatalf("invalid embed url should still be saved")
	}
	panel.EmbedURL = "https://youtu.be/dQw4w9WgXcQ"
	if panel.EmbedWarning() != "" {
		t.Fatalf("valid url should not warn")
	}
}

func TestEditPanelEmbedWarningFollowsProviderFormat(t *testing.T) {
	panel := panelFor(blocks.KindEmbed, "{}")
	accepted := map[string]string{
		"https://www.youtube.com/watch?list=PL123": "youtube",
		"https://youtube.com/embed/abc":            "youtube",
		"https://open.spotify.com/user/someone":    "spotify",
	}
	for rawURL, embedType := range accepted {
		panel.EmbedType = embedType
		panel.EmbedURL = rawURL
		if warning := panel.EmbedWarning(); warning != "" {
			t.Fatalf("%s %s should not warn, got %q", embedType, rawURL, warning)
		}
	}
	panel.EmbedType = "spotify"
	panel.EmbedURL = "https://soundcloud.com/artist"
	if panel.EmbedWarning() == "" {
		t.Fatalf("a soundcloud url is not a spotify url")
	}
}

func TestEditPanelSchedule(t *testing.T) {
	start := time.Date(2026, 11, 1, 9, 30, 0, 0, time.UTC)
	block := blocks.Block{ID: "blk_1", Type: "link", Config: "{}", ScheduledStart: &start}
	panel := NewEditPanel(block, time.UTC)
	if panel.ScheduledStart != "2026-11-01T09:30" || !panel.HasSchedule() {
		t.Fatalf("unexpected schedule %q", panel.ScheduledStart)
	}
	panel.SetTab(TabSchedule)
	if !slices.Contains(panel.VisibleFields(), FieldClearSchedule) {
		t.Fatalf("clear button should show when a schedule is set")
	}

	panel.ScheduledEnd = "2026-11-02T18:00"
	fields := panel.Fields()
	if end := fields.ScheduledEnd.Value(); end == nil || !end.Equal(time.Date(2026, 11, 2, 18, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end %v", end)
	}

	panel.ScheduledEnd = "tomorrow"
	if fields := panel.Fields(); !fields.ScheduledEnd.IsSet() || fields.ScheduledEnd.Value() != nil {
		t.Fatalf("unparseable schedule should clear")
	}

	panel.ClearSchedule()
	fields = panel.Fields()
	if fields.ScheduledStart.Value() != nil || fields.ScheduledEnd.Value() != nil || panel.HasSchedule() {
		t.Fatalf("expected cleared schedule")
	}
}

func TestEditPanelFieldsNormalizeEmptyStrings(t *testing.T) {
	panel := panelFor(blocks.KindLink, "{}")
	panel.Title = "  "
	panel.Icon = ""
	panel.Config = ""
	fields := panel.Fields()
	if fields.Title.Value() != nil || fields.Icon.Value() != nil || fields.Config.Value() != nil {
		t.Fatalf("empty strings should be null")
	}
	if !fields.Title.IsSet() || !fields.SocialIcons.IsSet() {
		t.Fatalf("the full field set should be sent")
	}
}
