package blocks

import (
	"encoding/json"
	"time"
)

// snapshot captures the renderable fields of a block at publish time.
type snapshot struct {
	Title          *string    `json:"title"`
	URL            *string    `json:"url"`
	Icon           *string    `json:"icon"`
	EmbedType      *string    `json:"embedType"`
	EmbedURL       *string    `json:"embedUrl"`
	SocialIcons    *string    `json:"socialIcons"`
	Config         string     `json:"config"`
	IsEnabled      bool       `json:"isEnabled"`
	ScheduledStart *time.Time `json:"scheduledStart"`
	ScheduledEnd   *time.Time `json:"scheduledEnd"`
}

func takeSnapshot(block Block) (string, error) {
	encoded, err := json.Marshal(snapshot{
		Title:          block.Title,
		URL:            block.URL,
		Icon:           block.Icon,
		EmbedType:      block.EmbedType,
		EmbedURL:       block.EmbedURL,
		SocialIcons:    block.SocialIcons,
		Config:         block.Config,
		IsEnabled:      block.IsEnabled,
		ScheduledStart: block.ScheduledStart,
		ScheduledEnd:   block.ScheduledEnd,
	})
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// PublicView returns the block as visitors see it. Published blocks are
// returned as-is; drafts fall back to their last published snapshot and are
// hidden when they were never published.
func (b Block) PublicView() (Block, bool) {
	if b.Status == StatusPublished {
		return b, true
	}
	if b.PublishedSnapshot == nil {
		return Block{}, false
	}
	var stored snapshot
	if err := json.Unmarshal([]byte(*b.PublishedSnapshot), &stored); err != nil {
		return Block{}, false
	}
	view := b
	view.Title = stored.Title
	view.URL = stored.URL
	view.Icon = stored.Icon
	view.EmbedType = stored.EmbedType
	view.EmbedURL = stored.EmbedURL
	view.SocialIcons = stored.SocialIcons
	view.Config = stored.Config
	view.IsEnabled = stored.IsEnabled
	view.ScheduledStart = stored.ScheduledStart
	view.ScheduledEnd = stored.ScheduledEnd
	view.Status = StatusPublished
	return view, true
}

// PublicBlocks returns the ordered, enabled, in-schedule public views.
func PublicBlocks(list []Block, now time.Time) []Block {
	ordered := append([]Block(nil), list...)
	SortByPosition(ordered)
	visible := make([]Block, 0, len(ordered))
	for _, block := range ordered {
		view, ok := block.PublicView()
		if !ok || !view.IsEnabled || !view.VisibleAt(now) {
			continue
		}
		visible = append(visible, view)
	}
	return visible
}

// PreviewBlocks returns the ordered enabled blocks with their current fields.
func PreviewBlocks(list []Block) []Block {
	ordered := append([]Block(nil), list...)
	SortByPosition(ordered)
	enabled := make([]Block, 0, len(ordered))
	for _, block := range ordered {
		if block.IsEnabled {
			enabled = append(enabled, block)
		}
	}
	return enabled
}
