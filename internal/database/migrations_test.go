package database

import (
	"path/filepath"
	"testing"

	"github.com/MarcoPoloResearchLab/linkden/internal/blocks"
	"github.com/MarcoPoloResearchLab/linkden/internal/settings"
	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestApplyMigrationsCompactsPositionsAndSeedsSettings(testContext *testing.T) {
	tempDir := testContext.TempDir()
	databasePath := filepath.Join(tempDir, "migration.db")

	database, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{})
	if err != nil {
		testContext.Fatalf("failed to open sqlite: %v", err)
	}
	if err := database.AutoMigrate(&blocks.Block{}, &settings.Setting{}, &migrationRecord{}); err != nil {
		testContext.Fatalf("failed to migrate schema: %v", err)
	}

	for index, position := range []int{3, 7, 12} {
		block := blocks.Block{
			ID:        "blk_" + string(rune('a'+index)),
			ProfileID: "owner",
			Type:      "link",
			Config:    "{}",
			Position:  position,
			Status:    blocks.StatusDraft,
		}
		if err := database.Create(&block).Error; err != nil {
			testContext.Fatalf("failed to insert block: %v", err)
		}
	}
	if err := database.Create(&settings.Setting{Key: settings.KeyContactDelivery, Value: "email"}).Error; err != nil {
		testContext.Fatalf("failed to insert setting: %v", err)
	}

	if err := applyMigrations(database, zap.NewNop()); err != nil {
		testContext.Fatalf("failed to apply migrations: %v", err)
	}

	var stored []blocks.Block
	if err := database.Where("profile_id = ?", "owner").Order("position ASC").Find(&stored).Error; err != nil {
		testContext.Fatalf("failed to reload blocks: %v", err)
	}
	for index, block := range stored {
		if block.Position != index {
			testContext.Fatalf("expected contiguous positions, got %d at %d", block.Position, index)
		}
	}

	var delivery settings.Setting
	if err := database.Where("key = ?", settings.KeyContactDelivery).Take(&delivery).Error; err != nil {
		testContext.Fatalf("failed to reload setting: %v", err)
	}
	if delivery.Value != "email" {
		testContext.Fatalf("seeding must not overwrite existing values, got %q", delivery.Value)
	}
	var preset settings.Setting
	if err := database.Where("key = ?", settings.KeyThemePreset).Take(&preset).Error; err != nil {
		testContext.Fatalf("expected default theme preset: %v", err)
	}

	var record migrationRecord
	if err := database.Where("name = ?", migrationCompactBlockPositions).Take(&record).Error; err != nil {
		testContext.Fatalf("expected migration record to be created: %v", err)
	}
	if record.AppliedAtSeconds == 0 {
		testContext.Fatalf("expected migration timestamp to be set")
	}
}

func TestApplyMigrationsRunsOnce(testContext *testing.T) {
	database, err := OpenSQLite(filepath.Join(testContext.TempDir(), "once.db"), zap.NewNop())
	if err != nil {
		testContext.Fatalf("failed to open database: %v", err)
	}
	if err := database.Where("key = ?", settings.KeyThemePreset).Delete(&settings.Setting{}).Error; err != nil {
		testContext.Fatalf("failed to delete setting: %v", err)
	}
	if err := applyMigrations(database, zap.NewNop()); err != nil {
		testContext.Fatalf("failed to re-apply migrations: %v", err)
	}
	var count int64
	if err := database.Model(&settings.Setting{}).Where("key = ?", settings.KeyThemePreset).Count(&count).Error; err != nil {
		testContext.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		testContext.Fatalf("recorded migrations must not run again")
	}
}

func TestOpenRejectsUnknownDriver(testContext *testing.T) {
	if _, err := Open(Options{Driver: "mysql"}, nil); err == nil {
		testContext.Fatalf("expected error for unsupported driver")
	}
	if _, err := Open(Options{Driver: DriverPostgres}, nil); err == nil {
		testContext.Fatalf("expected error for missing dsn")
	}
	if _, err := Open(Options{Driver: DriverSQLite}, nil); err == nil {
		testContext.Fatalf("expected error for missing path")
	}
}
