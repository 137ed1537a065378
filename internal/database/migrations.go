package database

import (
	"errors"
	"time"

	"github.com/MarcoPoloResearchLab/linkden/internal/blocks"
	"github.com/MarcoPoloResearchLab/linkden/internal/settings"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	migrationSeedDefaultSettings   = "2026-10-01_seed_default_settings"
	migrationCompactBlockPositions = "2026-10-01_compact_block_positions"
)

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationSeedDefaultSettings, apply: settings.EnsureDefaults},
		{name: migrationCompactBlockPositions, apply: compactBlockPositions},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := db.Transaction(migration.apply); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

// compactBlockPositions rewrites every profile's positions to 0..N-1.
func compactBlockPositions(db *gorm.DB) error {
	var profileIDs []string
	if err := db.Model(&blocks.Block{}).Distinct().Pluck("profile_id", &profileIDs).Error; err != nil {
		return err
	}
	for _, profileID := range profileIDs {
		if err := blocks.CompactPositions(db, profileID); err != nil {
			return err
		}
	}
	return nil
}
