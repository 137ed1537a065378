package analytics

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type sequentialIDs struct {
	next int
}

func (s *sequentialIDs) NewID() (string, error) {
	s.next++
	return fmt.Sprintf("click-%d", s.next), nil
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "analytics.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&ClickEvent{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	service, err := NewService(ServiceConfig{Database: db, IDProvider: &sequentialIDs{}})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return service, db
}

func TestCountsByBlock(t *testing.T) {
	service, _ := newTestService(t)
	for _, blockID := range []string{"blk_a", "blk_b", "blk_a", "blk_a", "blk_b", "blk_c"} {
		if err := service.Track(t.Context(), Click{ProfileID: "owner", BlockID: blockID}); err != nil {
			t.Fatalf("track failed: %v", err)
		}
	}
	if err := service.Track(t.Context(), Click{ProfileID: "someone-else", BlockID: "blk_a"}); err != nil {
		t.Fatalf("track failed: %v", err)
	}

	counts, err := service.CountsByBlock(t.Context(), "owner")
	if err != nil {
		t.Fatalf("counts failed: %v", err)
	}
	want := []BlockCount{{BlockID: "blk_a", Clicks: 3}, {BlockID: "blk_b", Clicks: 2}, {BlockID: "blk_c", Clicks: 1}}
	if len(counts) != len(want) {
		t.Fatalf("unexpected counts %+v", counts)
	}
	for index := range want {
		if counts[index] != want[index] {
			t.Fatalf("unexpected counts %+v", counts)
		}
	}
}

func TestTrackTruncatesHeaders(t *testing.T) {
	service, db := newTestService(t)
	longAgent := strings.Repeat("a", maxUserAgentLength+40)
	if err := service.Track(t.Context(), Click{ProfileID: "owner", BlockID: "blk_a", UserAgent: longAgent}); err != nil {
		t.Fatalf("track failed: %v", err)
	}
	var stored ClickEvent
	if err := db.Take(&stored).Error; err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if stored.Referrer != nil {
		t.Fatalf("empty referrer should be null")
	}
	if stored.UserAgent == nil || len(*stored.UserAgent) != maxUserAgentLength {
		t.Fatalf("expected truncated user agent")
	}
}

func TestTrackRequiresIdentifiers(t *testing.T) {
	service, _ := newTestService(t)
	if err := service.Track(t.Context(), Click{ProfileID: "owner"}); !errors.Is(err, ErrInvalidClick) {
		t.Fatalf("expected invalid click, got %v", err)
	}
}
