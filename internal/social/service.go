package social

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrInvalidSlug indicates an empty network slug.
	ErrInvalidSlug = errors.New("social: invalid slug")
	// ErrInvalidURL indicates an empty profile url.
	ErrInvalidURL = errors.New("social: invalid url")
	// ErrNetworkNotFound indicates the slug is not configured.
	ErrNetworkNotFound = errors.New("social: network not found")

	errMissingDatabase = errors.New("database handle is required")
)

// Network is a configured social network profile link.
type Network struct {
	ID       string `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	Slug     string `gorm:"column:slug;size:64;not null;uniqueIndex" json:"slug"`
	URL      string `gorm:"column:url;type:text;not null" json:"url"`
	Label    string `gorm:"column:label;size:190" json:"label"`
	IsActive bool   `gorm:"column:is_active;not null" json:"isActive"`
	Position int    `gorm:"column:position;not null;default:0" json:"position"`
}

// TableName provides the explicit table binding for GORM.
func (Network) TableName() string {
	return "social_networks"
}

// IDProvider issues row identifiers.
type IDProvider interface {
	NewID() (string, error)
}

type ServiceConfig struct {
	Database   *gorm.DB
	IDProvider IDProvider
	Logger     *zap.Logger
}

// Service manages configured social networks.
type Service struct {
	db         *gorm.DB
	idProvider IDProvider
	logger     *zap.Logger
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("social: %w", errMissingDatabase)
	}
	if cfg.IDProvider == nil {
		return nil, errors.New("social: id provider is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: cfg.Database, idProvider: cfg.IDProvider, logger: logger}, nil
}

// List returns networks ordered by position, optionally only the active ones.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]Network, error) {
	query := s.db.WithContext(ctx).Order("position ASC").Order("slug ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var networks []Network
	if err := query.Find(&networks).Error; err != nil {
		s.logger.Error("social list failed", zap.Error(err))
		return nil, fmt.Errorf("social: list: %w", err)
	}
	return networks, nil
}

// Upsert creates or replaces the network identified by its slug.
func (s *Service) Upsert(ctx context.Context, network Network) (Network, error) {
	network.Slug = strings.ToLower(strings.TrimSpace(network.Slug))
	network.URL = strings.TrimSpace(network.URL)
	if network.Slug == "" {
		return Network{}, ErrInvalidSlug
	}
	if network.URL == "" {
		return Network{}, ErrInvalidURL
	}
	if network.ID == "" {
		id, err := s.idProvider.NewID()
		if err != nil {
			return Network{}, fmt.Errorf("social: upsert: %w", err)
		}
		network.ID = id
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"url", "label", "is_active", "position"}),
	}).Create(&network).Error
	if err != nil {
		s.logger.Error("social upsert failed", zap.Error(err), zap.String("slug", network.Slug))
		return Network{}, fmt.Errorf("social: upsert: %w", err)
	}
	var stored Network
	if err := s.db.WithContext(ctx).Where("slug = ?", network.Slug).Take(&stored).Error; err != nil {
		return Network{}, fmt.Errorf("social: upsert: %w", err)
	}
	return stored, nil
}

// Delete removes the network with the slug.
func (s *Service) Delete(ctx context.Context, slug string) error {
	result := s.db.WithContext(ctx).Where("slug = ?", strings.ToLower(strings.TrimSpace(slug))).Delete(&Network{})
	if result.Error != nil {
		s.logger.Error("social delete failed", zap.Error(result.Error), zap.String("slug", slug))
		return fmt.Errorf("social: delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNetworkNotFound
	}
	return nil
}
