package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Well-known setting keys.
const (
	KeyContactDelivery    = "contact_delivery"
	KeyContactEmail       = "contact_email"
	KeyProfileName        = "profile_name"
	KeyProfileBio         = "profile_bio"
	KeyProfileAvatar      = "profile_avatar"
	KeyThemePreset        = "theme_preset"
	KeyThemeColorMode     = "theme_color_mode"
	KeyThemeCustomPrimary = "theme_custom_primary"
)

const maxKeyLength = 190

var (
	// ErrInvalidKey indicates an empty or oversized setting key.
	ErrInvalidKey      = errors.New("settings: invalid key")
	errMissingDatabase = errors.New("database handle is required")
)

// Setting is a single key/value pair.
type Setting struct {
	Key   string `gorm:"column:key;primaryKey;size:190;not null" json:"key"`
	Value string `gorm:"column:value;type:text;not null" json:"value"`
}

// TableName provides the explicit table binding for GORM.
func (Setting) TableName() string {
	return "settings"
}

// Entry is one key/value pair in a bulk update.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// DeliveryMode selects where contact form submissions go.
type DeliveryMode string

const (
	DeliveryDatabase DeliveryMode = "database"
	DeliveryEmail    DeliveryMode = "email"
	DeliveryBoth     DeliveryMode = "both"
)

// ParseDeliveryMode maps raw input to a mode, defaulting to database.
func ParseDeliveryMode(raw string) DeliveryMode {
	switch DeliveryMode(strings.ToLower(strings.TrimSpace(raw))) {
	case DeliveryEmail:
		return DeliveryEmail
	case DeliveryBoth:
		return DeliveryBoth
	default:
		return DeliveryDatabase
	}
}

// Stores reports whether submissions are persisted.
func (m DeliveryMode) Stores() bool {
	return m == DeliveryDatabase || m == DeliveryBoth
}

// Emails reports whether submissions are forwarded by email.
func (m DeliveryMode) Emails() bool {
	return m == DeliveryEmail || m == DeliveryBoth
}

// Defaults are written on first start when absent.
func Defaults() []Entry {
	return []Entry{
		{Key: KeyContactDelivery, Value: string(DeliveryDatabase)},
		{Key: KeyThemePreset, Value: "classic"},
		{Key: KeyThemeColorMode, Value: "light"},
	}
}

type ServiceConfig struct {
	Database *gorm.DB
	Logger   *zap.Logger
}

// Service reads and writes settings.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("settings: %w", errMissingDatabase)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: cfg.Database, logger: logger}, nil
}

// GetAll returns every setting as a map.
func (s *Service) GetAll(ctx context.Context) (map[string]string, error) {
	var rows []Setting
	if err := s.db.WithContext(ctx).Order("key ASC").Find(&rows).Error; err != nil {
		s.logger.Error("settings query failed", zap.Error(err))
		return nil, fmt.Errorf("settings: get all: %w", err)
	}
	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
	}
	return values, nil
}

// UpdateBulk upserts every entry in one transaction.
func (s *Service) UpdateBulk(ctx context.Context, entries []Entry) error {
	rows := make([]Setting, 0, len(entries))
	for _, entry := range entries {
		key := strings.TrimSpace(entry.Key)
		if key == "" || len(key) > maxKeyLength {
			return fmt.Errorf("%w: %q", ErrInvalidKey, entry.Key)
		}
		rows = append(rows, Setting{Key: key, Value: entry.Value})
	}
	if len(rows) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&rows).Error
	if err != nil {
		s.logger.Error("settings update failed", zap.Error(err), zap.Int("count", len(rows)))
		return fmt.Errorf("settings: update bulk: %w", err)
	}
	return nil
}

// EnsureDefaults inserts defaults for keys that are not yet present.
func EnsureDefaults(db *gorm.DB) error {
	rows := make([]Setting, 0, len(Defaults()))
	for _, entry := range Defaults() {
		rows = append(rows, Setting{Key: entry.Key, Value: entry.Value})
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

// Get reads a single setting. The boolean is false when the key is unset.
func (s *Service) Get(ctx context.Context, key string) (string, bool, error) {
	var row Setting
	err := s.db.WithContext(ctx).Where("key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("settings: get %s: %w", key, err)
	}
	return row.Value, true, nil
}

// DeliveryMode reads the contact delivery mode.
func (s *Service) DeliveryMode(ctx context.Context) (DeliveryMode, error) {
	value, _, err := s.Get(ctx, KeyContactDelivery)
	if err != nil {
		return DeliveryDatabase, err
	}
	return ParseDeliveryMode(value), nil
}
