package analytics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	maxReferrerLength  = 512
	maxUserAgentLength = 512
)

var (
	// ErrInvalidClick indicates a click without profile or block identifiers.
	ErrInvalidClick    = errors.New("analytics: invalid click")
	errMissingDatabase = errors.New("database handle is required")
)

// ClickEvent records one visitor click on a link block.
type ClickEvent struct {
	ID        string    `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	ProfileID string    `gorm:"column:profile_id;size:190;not null;index:idx_click_events_profile_block,priority:1" json:"-"`
	BlockID   string    `gorm:"column:block_id;size:190;not null;index:idx_click_events_profile_block,priority:2" json:"blockId"`
	Referrer  *string   `gorm:"column:referrer;size:512" json:"referrer"`
	UserAgent *string   `gorm:"column:user_agent;size:512" json:"userAgent"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"createdAt"`
}

// TableName provides the explicit table binding for GORM.
func (ClickEvent) TableName() string {
	return "click_events"
}

// Click is the input for Track.
type Click struct {
	ProfileID string
	BlockID   string
	Referrer  string
	UserAgent string
}

// BlockCount is the number of clicks recorded for a block.
type BlockCount struct {
	BlockID string `gorm:"column:block_id" json:"blockId"`
	Clicks  int64  `gorm:"column:clicks" json:"clicks"`
}

// IDProvider issues row identifiers.
type IDProvider interface {
	NewID() (string, error)
}

type ServiceConfig struct {
	Database   *gorm.DB
	IDProvider IDProvider
	Clock      func() time.Time
	Logger     *zap.Logger
}

// Service records and aggregates click events.
type Service struct {
	db         *gorm.DB
	idProvider IDProvider
	clock      func() time.Time
	logger     *zap.Logger
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("analytics: %w", errMissingDatabase)
	}
	if cfg.IDProvider == nil {
		return nil, errors.New("analytics: id provider is required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: cfg.Database, idProvider: cfg.IDProvider, clock: clock, logger: logger}, nil
}

// Track stores a click event.
func (s *Service) Track(ctx context.Context, click Click) error {
	profileID := strings.TrimSpace(click.ProfileID)
	blockID := strings.TrimSpace(click.BlockID)
	if profileID == "" || blockID == "" {
		return ErrInvalidClick
	}
	id, err := s.idProvider.NewID()
	if err != nil {
		return fmt.Errorf("analytics: track: %w", err)
	}
	event := ClickEvent{
		ID:        id,
		ProfileID: profileID,
		BlockID:   blockID,
		Referrer:  truncated(click.Referrer, maxReferrerLength),
		UserAgent: truncated(click.UserAgent, maxUserAgentLength),
		CreatedAt: s.clock().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		s.logger.Warn("click tracking failed", zap.Error(err), zap.String("block_id", blockID))
		return fmt.Errorf("analytics: track: %w", err)
	}
	return nil
}

// CountsByBlock returns click totals per block for the profile, highest first.
func (s *Service) CountsByBlock(ctx context.Context, profileID string) ([]BlockCount, error) {
	var counts []BlockCount
	err := s.db.WithContext(ctx).
		Model(&ClickEvent{}).
		Select("block_id, COUNT(*) AS clicks").
		Where("profile_id = ?", profileID).
		Group("block_id").
		Order("clicks DESC").
		Order("block_id ASC").
		Scan(&counts).Error
	if err != nil {
		s.logger.Error("click counts failed", zap.Error(err))
		return nil, fmt.Errorf("analytics: counts: %w", err)
	}
	return counts, nil
}

func truncated(value string, limit int) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	if len(trimmed) > limit {
		trimmed = trimmed[:limit]
	}
	return &trimmed
}
