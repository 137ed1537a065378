package blocks

import (
	"fmt"
	"sort"
)

// Move relocates the dragged block to the index currently held by the target
// block. The second return value is false when the move is a no-op: the ids
// are equal or either is absent. The input slice is never modified.
func Move(list []Block, draggedID, targetID string) ([]Block, bool) {
	if draggedID == targetID {
		return list, false
	}
	from := indexOf(list, draggedID)
	to := indexOf(list, targetID)
	if from < 0 || to < 0 {
		return list, false
	}

	remaining := make([]Block, 0, len(list))
	remaining = append(remaining, list[:from]...)
	remaining = append(remaining, list[from+1:]...)

	out := make([]Block, 0, len(list))
	out = append(out, remaining[:to]...)
	out = append(out, list[from])
	out = append(out, remaining[to:]...)
	return out, true
}

// Positions rewrites every position from its array index.
func Positions(list []Block) []PositionUpdate {
	updates := make([]PositionUpdate, 0, len(list))
	for index, block := range list {
		updates = append(updates, PositionUpdate{ID: block.ID, Position: index})
	}
	return updates
}

// SortByPosition orders blocks by position, breaking ties by creation time then id.
func SortByPosition(list []Block) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Position != list[j].Position {
			return list[i].Position < list[j].Position
		}
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}

// validatePermutation checks that updates cover every existing id exactly
// once with positions 0..N-1.
func validatePermutation(existingIDs []string, updates []PositionUpdate) error {
	if len(updates) != len(existingIDs) {
		return fmt.Errorf("%w: expected %d entries, got %d", ErrInvalidReorder, len(existingIDs), len(updates))
	}
	known := make(map[string]struct{}, len(existingIDs))
	for _, id := range existingIDs {
		known[id] = struct{}{}
	}
	seenIDs := make(map[string]struct{}, len(updates))
	seenPositions := make(map[int]struct{}, len(updates))
	for _, update := range updates {
		if _, ok := known[update.ID]; !ok {
			return fmt.Errorf("%w: unknown block %q", ErrInvalidReorder, update.ID)
		}
		if _, dup := seenIDs[update.ID]; dup {
			return fmt.Errorf("%w: duplicate block %q", ErrInvalidReorder, update.ID)
		}
		if update.Position < 0 || update.Position >= len(updates) {
			return fmt.Errorf("%w: position %d out of range", ErrInvalidReorder, update.Position)
		}
		if _, dup := seenPositions[update.Position]; dup {
			return fmt.Errorf("%w: duplicate position %d", ErrInvalidReorder, update.Position)
		}
		seenIDs[update.ID] = struct{}{}
		seenPositions[update.Position] = struct{}{}
	}
	return nil
}

func indexOf(list []Block, id string) int {
	for index, block := range list {
		if block.ID == id {
			return index
		}
	}
	return -1
}
