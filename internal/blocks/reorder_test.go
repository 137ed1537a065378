package blocks

import "testing"

func lettered(ids ...string) []Block {
	list := make([]Block, 0, len(ids))
	for index, id := range ids {
		list = append(list, Block{ID: id, Position: index * 10})
	}
	return list
}

func TestMoveDraggedOntoLaterTarget(t *testing.T) {
	moved, changed := Move(lettered("A", "B", "C", "D"), "B", "D")
	if !changed {
		t.Fatalf("expected move to change order")
	}
	if got := blockIDs(moved); !equalStrings(got, []string{"A", "C", "D", "B"}) {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestMoveDraggedOntoEarlierTarget(t *testing.T) {
	moved, changed := Move(lettered("A", "B", "C", "D"), "D", "B")
	if !changed {
		t.Fatalf("expected move to change order")
	}
	if got := blockIDs(moved); !equalStrings(got, []string{"A", "D", "B", "C"}) {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestMoveNoOps(t *testing.T) {
	original := lettered("A", "B", "C")
	testCases := []struct {
		name    string
		dragged string
		target  string
	}{
		{name: "self", dragged: "B", target: "B"},
		{name: "missing-dragged", dragged: "Z", target: "B"},
		{name: "missing-target", dragged: "A", target: "Z"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			moved, changed := Move(original, testCase.dragged, testCase.target)
			if changed {
				t.Fatalf("expected no-op")
			}
			if got := blockIDs(moved); !equalStrings(got, []string{"A", "B", "C"}) {
				t.Fatalf("order changed on no-op: %v", got)
			}
		})
	}
}

func TestMoveDoesNotMutateInput(t *testing.T) {
	original := lettered("A", "B", "C", "D")
	_, _ = Move(original, "A", "D")
	if got := blockIDs(original); !equalStrings(got, []string{"A", "B", "C", "D"}) {
		t.Fatalf("input mutated: %v", got)
	}
}

func TestPositionsAreContiguousAfterAnyMove(t *testing.T) {
	ids := []string{"A", "B", "C", "D", "E"}
	for _, dragged := range ids {
		for _, target := range ids {
			moved, _ := Move(lettered(ids...), dragged, target)
			updates := Positions(moved)
			seen := make(map[int]bool, len(updates))
			for _, update := range updates {
				if update.Position < 0 || update.Position >= len(ids) || seen[update.Position] {
					t.Fatalf("dragging %s onto %s produced invalid positions %v", dragged, target, updates)
				}
				seen[update.Position] = true
			}
			if len(seen) != len(ids) {
				t.Fatalf("dragging %s onto %s lost positions %v", dragged, target, updates)
			}
		}
	}
}

func TestValidatePermutation(t *testing.T) {
	existing := []string{"A", "B", "C"}
	testCases := []struct {
		name    string
		updates []PositionUpdate
		wantErr bool
	}{
		{name: "valid", updates: []PositionUpdate{{ID: "C", Position: 0}, {ID: "A", Position: 1}, {ID: "B", Position: 2}}},
		{name: "missing-entry", updates: []PositionUpdate{{ID: "A", Position: 0}, {ID: "B", Position: 1}}, wantErr: true},
		{name: "unknown-id", updates: []PositionUpdate{{ID: "A", Position: 0}, {ID: "B", Position: 1}, {ID: "X", Position: 2}}, wantErr: true},
		{name: "duplicate-position", updates: []PositionUpdate{{ID: "A", Position: 0}, {ID: "B", Position: 0}, {ID: "C", Position: 2}}, wantErr: true},
		{name: "gap", updates: []PositionUpdate{{ID: "A", Position: 0}, {ID: "B", Position: 1}, {ID: "C", Position: 3}}, wantErr: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			err := validatePermutation(existing, testCase.updates)
			if testCase.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !testCase.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
