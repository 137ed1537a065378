package blocks

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind identifies how a block is edited and rendered.
type Kind string

const (
	// KindLink is a clickable link button.
	KindLink Kind = "link"
	// KindHeader is a section heading.
	KindHeader Kind = "header"
	// KindSocialIcons is a row of social network icons.
	KindSocialIcons Kind = "social_icons"
	// KindEmbed is an embedded media player.
	KindEmbed Kind = "embed"
	// KindContactForm is a visitor contact form.
	KindContactForm Kind = "contact_form"
)

// Status tracks whether a block has unpublished changes.
type Status string

const (
	// StatusDraft marks a block with changes not yet visible on the public page.
	StatusDraft Status = "draft"
	// StatusPublished marks a block whose current fields are live.
	StatusPublished Status = "published"
)

const maxIdentifierLength = 190

var (
	// ErrInvalidBlockID indicates that a block identifier is empty or exceeds storage bounds.
	ErrInvalidBlockID = errors.New("blocks: invalid block id")
	// ErrInvalidProfileID indicates that a profile identifier is empty or exceeds storage bounds.
	ErrInvalidProfileID = errors.New("blocks: invalid profile id")
	// ErrInvalidKind indicates that a block type is empty.
	ErrInvalidKind = errors.New("blocks: invalid block type")
	// ErrBlockNotFound indicates that no block with the identifier exists for the profile.
	ErrBlockNotFound = errors.New("blocks: block not found")
	// ErrInvalidReorder indicates that a reorder batch is not a permutation of the profile's blocks.
	ErrInvalidReorder = errors.New("blocks: invalid reorder batch")
	// ErrDuplicateBlockID indicates that a create request reused an existing identifier.
	ErrDuplicateBlockID = errors.New("blocks: duplicate block id")
)

// BlockID represents a validated block identifier.
type BlockID string

// NewBlockID validates raw input and returns a BlockID.
func NewBlockID(rawInput string) (BlockID, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidBlockID)
	}
	if len(trimmed) > maxIdentifierLength {
		return "", fmt.Errorf("%w: exceeds %d characters", ErrInvalidBlockID, maxIdentifierLength)
	}
	return BlockID(trimmed), nil
}

// String returns the underlying string identifier.
func (id BlockID) String() string {
	return string(id)
}

// ProfileID represents a validated owner profile identifier.
type ProfileID string

// NewProfileID validates raw input and returns a ProfileID.
func NewProfileID(rawInput string) (ProfileID, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidProfileID)
	}
	if len(trimmed) > maxIdentifierLength {
		return "", fmt.Errorf("%w: exceeds %d characters", ErrInvalidProfileID, maxIdentifierLength)
	}
	return ProfileID(trimmed), nil
}

// String returns the underlying string identifier.
func (id ProfileID) String() string {
	return string(id)
}

// Block is a single content unit on a profile page.
type Block struct {
	ID                string     `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	ProfileID         string     `gorm:"column:profile_id;size:190;not null;index:idx_blocks_profile_position,priority:1" json:"-"`
	Type              string     `gorm:"column:type;size:64;not null" json:"type"`
	Title             *string    `gorm:"column:title;type:text" json:"title"`
	URL               *string    `gorm:"column:url;type:text" json:"url"`
	Icon              *string    `gorm:"column:icon;size:190" json:"icon"`
	EmbedType         *string    `gorm:"column:embed_type;size:64" json:"embedType"`
	EmbedURL          *string    `gorm:"column:embed_url;type:text" json:"embedUrl"`
	SocialIcons       *string    `gorm:"column:social_icons;type:text" json:"socialIcons"`
	Config            string     `gorm:"column:config;type:text;not null;default:'{}'" json:"config"`
	IsEnabled         bool       `gorm:"column:is_enabled;not null" json:"isEnabled"`
	Position          int        `gorm:"column:position;not null;default:0;index:idx_blocks_profile_position,priority:2" json:"position"`
	Status            Status     `gorm:"column:status;size:16;not null;default:'draft'" json:"status"`
	ScheduledStart    *time.Time `gorm:"column:scheduled_start" json:"scheduledStart"`
	ScheduledEnd      *time.Time `gorm:"column:scheduled_end" json:"scheduledEnd"`
	PublishedSnapshot *string    `gorm:"column:published_snapshot;type:text" json:"-"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName provides the explicit table binding for GORM.
func (Block) TableName() string {
	return "blocks"
}

// Kind returns the block type as a Kind. Unknown values are returned unchanged.
func (b Block) Kind() Kind {
	return Kind(b.Type)
}

// IsDraft reports whether the block carries unpublished changes.
func (b Block) IsDraft() bool {
	return b.Status != StatusPublished
}

// ParsedConfig returns the leniently parsed config bag.
func (b Block) ParsedConfig() ConfigBag {
	return ParseConfig(b.Config)
}

// VisibleAt reports whether the schedule window admits the instant.
func (b Block) VisibleAt(now time.Time) bool {
	if b.ScheduledStart != nil && now.Before(*b.ScheduledStart) {
		return false
	}
	if b.ScheduledEnd != nil && !now.Before(*b.ScheduledEnd) {
		return false
	}
	return true
}

// StringValue dereferences an optional string field.
func StringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// PositionUpdate assigns a position to a block in a reorder batch.
type PositionUpdate struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}

// CreateRequest describes a new block supplied by the builder.
type CreateRequest struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Title     *string `json:"title"`
	Position  int     `json:"position"`
	IsEnabled bool    `json:"isEnabled"`
}
