package builder

import (
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/linkden/internal/blocks"
	"github.com/MarcoPoloResearchLab/linkden/internal/render"
)

// Tab is a section of the edit panel.
type Tab string

const (
	TabContent  Tab = "content"
	TabStyle    Tab = "style"
	TabOptions  Tab = "options"
	TabSchedule Tab = "schedule"
)

// Field names an input shown by the panel.
type Field string

const (
	FieldTitle          Field = "title"
	FieldURL            Field = "url"
	FieldEmbedType      Field = "embedType"
	FieldEmbedURL       Field = "embedUrl"
	FieldSocialIcons    Field = "socialIcons"
	FieldIcon           Field = "icon"
	FieldNoFollow       Field = "noFollow"
	FieldNewTab         Field = "newTab"
	FieldAnimation      Field = "animation"
	FieldThumbnail      Field = "thumbnail"
	FieldAdvancedConfig Field = "config"
	FieldDelivery       Field = "contactDelivery"
	FieldScheduleStart  Field = "scheduledStart"
	FieldScheduleEnd    Field = "scheduledEnd"
	FieldClearSchedule  Field = "clearSchedule"
)

// ScheduleLayout is the local date-time format used by schedule inputs.
const ScheduleLayout = "2006-01-02T15:04"

// OptionsInfoMessage is shown on the options tab of blocks without options.
const OptionsInfoMessage = "This block type has no additional options."

// EditPanel holds the in-progress edits for one block. Switching tabs keeps
// every edit; nothing is sent until the builder saves the panel.
type EditPanel struct {
	block    blocks.Block
	location *time.Location
	tab      Tab

	Title          string
	URL            string
	Icon           string
	EmbedType      string
	EmbedURL       string
	SocialIcons    string
	Config         string
	ScheduledStart string
	ScheduledEnd   string
}

// NewEditPanel seeds the panel from the block. Schedule values are shown in
// location, which defaults to time.Local.
func NewEditPanel(block blocks.Block, location *time.Location) *EditPanel {
	if location == nil {
		location = time.Local
	}
	panel := &EditPanel{
		block:       block,
		location:    location,
		tab:         TabContent,
		Title:       blocks.StringValue(block.Title),
		URL:         blocks.StringValue(block.URL),
		Icon:        blocks.StringValue(block.Icon),
		EmbedType:   blocks.StringValue(block.EmbedType),
		EmbedURL:    blocks.StringValue(block.EmbedURL),
		SocialIcons: blocks.StringValue(block.SocialIcons),
		Config:      block.Config,
	}
	if panel.Config == "" {
		panel.Config = "{}"
	}
	if block.ScheduledStart != nil {
		panel.ScheduledStart = block.ScheduledStart.In(location).Format(ScheduleLayout)
	}
	if block.ScheduledEnd != nil {
		panel.ScheduledEnd = block.ScheduledEnd.In(location).Format(ScheduleLayout)
	}
	return panel
}

func (p *EditPanel) BlockID() string {
	return p.block.ID
}

func (p *EditPanel) Kind() blocks.Kind {
	return p.block.Kind()
}

func (p *EditPanel) Tab() Tab {
	return p.tab
}

// SetTab switches tabs. Unknown tabs are ignored.
func (p *EditPanel) SetTab(tab Tab) {
	switch tab {
	case TabContent, TabStyle, TabOptions, TabSchedule:
		p.tab = tab
	}
}

// VisibleFields lists the inputs shown on the current tab.
func (p *EditPanel) VisibleFields() []Field {
	kind := p.Kind()
	switch p.tab {
	case TabContent:
		switch kind {
		case blocks.KindLink:
			return []Field{FieldTitle, FieldURL}
		case blocks.KindEmbed:
			return []Field{FieldEmbedType, FieldEmbedURL}
		case blocks.KindSocialIcons:
			return []Field{FieldSocialIcons}
		default:
			return []Field{FieldTitle}
		}
	case TabStyle:
		if kind == blocks.KindLink {
			return []Field{FieldIcon, FieldNoFollow, FieldNewTab, FieldAnimation, FieldThumbnail, FieldAdvancedConfig}
		}
		return []Field{FieldIcon, FieldAdvancedConfig}
	case TabOptions:
		if kind == blocks.KindContactForm {
			return []Field{FieldDelivery}
		}
		return nil
	case TabSchedule:
		if p.HasSchedule() {
			return []Field{FieldScheduleStart, FieldScheduleEnd, FieldClearSchedule}
		}
		return []Field{FieldScheduleStart, FieldScheduleEnd}
	default:
		return nil
	}
}

// OptionsMessage is the informational copy for the options tab, empty for
// contact forms.
func (p *EditPanel) OptionsMessage() string {
	if p.Kind() == blocks.KindContactForm {
		return ""
	}
	return OptionsInfoMessage
}

// UpdateConfigField sets one config key and keeps every other key.
func (p *EditPanel) UpdateConfigField(key string, value any) {
	p.Config = blocks.UpdateConfigField(p.Config, key, value)
}

// LinkSettings reads the link widgets from the current raw config.
func (p *EditPanel) LinkSettings() blocks.LinkConfig {
	return blocks.DecodeLinkConfig(blocks.ParseConfig(p.Config))
}

// EmbedWarning describes an embed URL that does not match the provider's
// format. It never blocks saving.
func (p *EditPanel) EmbedWarning() string {
	if strings.TrimSpace(p.EmbedURL) == "" {
		return ""
	}
	if render.ValidEmbedFormat(p.EmbedType, p.EmbedURL) {
		return ""
	}
	switch strings.ToLower(p.EmbedType) {
	case render.EmbedYouTube:
		return "Enter a YouTube video URL, for example https://youtu.be/VIDEO_ID."
	case render.EmbedSpotify:
		return "Enter an open.spotify.com URL."
	case render.EmbedSoundCloud:
		return "Enter a SoundCloud URL."
	case render.EmbedCustom:
		return "Enter an http(s) URL."
	default:
		return "Choose an embed type."
	}
}

// HasSchedule reports whether either schedule bound is set.
func (p *EditPanel) HasSchedule() bool {
	return strings.TrimSpace(p.ScheduledStart) != "" || strings.TrimSpace(p.ScheduledEnd) != ""
}

// ClearSchedule empties both schedule bounds.
func (p *EditPanel) ClearSchedule() {
	p.ScheduledStart = ""
	p.ScheduledEnd = ""
}

// Fields builds the full update. Empty strings become null. A schedule value
// that does not parse is treated as cleared.
func (p *EditPanel) Fields() blocks.UpdateFields {
	return blocks.UpdateFields{
		Title:          blocks.OptionalString(p.Title),
		URL:            blocks.OptionalString(p.URL),
		Icon:           blocks.OptionalString(p.Icon),
		EmbedType:      blocks.OptionalString(p.EmbedType),
		EmbedURL:       blocks.OptionalString(p.EmbedURL),
		SocialIcons:    blocks.OptionalString(p.SocialIcons),
		Config:         blocks.OptionalString(p.Config),
		ScheduledStart: blocks.OptionalTime(p.parseSchedule(p.ScheduledStart)),
		ScheduledEnd:   blocks.OptionalTime(p.parseSchedule(p.ScheduledEnd)),
	}
}

func (p *EditPanel) parseSchedule(value string) *time.Time {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	parsed, err := time.ParseInLocation(ScheduleLayout, trimmed, p.location)
	if err != nil {
		return nil
	}
	return &parsed
}
