package blocks

import (
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func mustService(t *testing.T) *Service {
	t.Helper()
	databasePath := filepath.Join(t.TempDir(), "blocks.db")
	db, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Block{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	clockNow := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	service, err := NewService(ServiceConfig{
		Database: db,
		Clock: func() time.Time {
			clockNow = clockNow.Add(time.Second)
			return clockNow
		},
		Logger: zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return service
}

func mustProfileID(t *testing.T, value string) ProfileID {
	t.Helper()
	id, err := NewProfileID(value)
	if err != nil {
		t.Fatalf("unexpected profile id error: %v", err)
	}
	return id
}

func mustBlockID(t *testing.T, value string) BlockID {
	t.Helper()
	id, err := NewBlockID(value)
	if err != nil {
		t.Fatalf("unexpected block id error: %v", err)
	}
	return id
}

func mustCreate(t *testing.T, service *Service, profileID ProfileID, id string, kind Kind, position int) Block {
	t.Helper()
	title := DefaultTitle(kind)
	created, err := service.Create(t.Context(), profileID, CreateRequest{
		ID:        id,
		Type:      string(kind),
		Title:     &title,
		Position:  position,
		IsEnabled: true,
	})
	if err != nil {
		t.Fatalf("create %s failed: %v", id, err)
	}
	return created
}

func blockIDs(list []Block) []string {
	ids := make([]string, 0, len(list))
	for _, block := range list {
		ids = append(ids, block.ID)
	}
	return ids
}

func assertContiguous(t *testing.T, list []Block) {
	t.Helper()
	for index, block := range list {
		if block.Position != index {
			t.Fatalf("expected position %d for %s, got %d", index, block.ID, block.Position)
		}
	}
}

func equalStrings(left, right []string) bool {
	if len(left) != len(right) {
		return false
	}
	for index := range left {
		if left[index] != right[index] {
			return false
		}
	}
	return true
}
