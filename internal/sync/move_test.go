package sync

import (
	"context"
	"testing"

	"github.com/ecodispensa/dispensa/internal/model"
)

func moveFixture(t *testing.T, remote *fakeRemote) (*Engine, []string) {
	t.Helper()
	e := newTestEngine(t, remote)
	e.AddShoppingItem(context.Background(), "Latte", model.CategoryDairy)
	e.AddShoppingItem(context.Background(), "Pane", model.CategoryPantry)

	var ids []string
	for _, it := range e.ShoppingItems() {
		ids = append(ids, it.ID)
	}
	return e, ids
}

func moveDrafts() []model.PantryItemDraft {
	return []model.PantryItemDraft{
		{Name: "Latte", Quantity: 1, Unit: model.UnitLiter, Category: model.CategoryDairy},
		{Name: "Pane", Quantity: 1, Unit: model.UnitPiece, Category: model.CategoryPantry},
	}
}

func TestMoveToPantrySuccess(t *testing.T) {
	remote := &fakeRemote{}
	e, ids := moveFixture(t, remote)

	if !e.MoveToPantry(context.Background(), moveDrafts(), ids) {
		t.Fatal("move reported failure")
	}

	if got := len(e.PantryItems()); got != 2 {
		t.Errorf("pantry has %d items, want 2", got)
	}
	if got := len(e.ShoppingItems()); got != 0 {
		t.Errorf("shopping has %d items, want 0", got)
	}
}

func TestMoveToPantryInsertFailureMovesNothing(t *testing.T) {
	remote := &fakeRemote{}
	e, ids := moveFixture(t, remote)
	remote.failPantryInsert = true

	if e.MoveToPantry(context.Background(), moveDrafts(), ids) {
		t.Fatal("move reported success despite insert failure")
	}

	if got := len(e.PantryItems()); got != 0 {
		t.Errorf("pantry has %d items, want 0 (nothing moved)", got)
	}
	if got := len(e.ShoppingItems()); got != 2 {
		t.Errorf("shopping has %d items, want 2 (nothing moved)", got)
	}
}

// When the shopping delete fails after a successful pantry insert, the
// move is left half-done: the new pantry rows stay and the shopping rows
// survive. Both collections must reflect that remote reality after the
// reconciling reload: no silent duplication, no silent loss.
func TestMoveToPantryDeleteFailureReconciles(t *testing.T) {
	remote := &fakeRemote{}
	e, ids := moveFixture(t, remote)
	remote.failShoppingDelete = true

	if e.MoveToPantry(context.Background(), moveDrafts(), ids) {
		t.Fatal("move reported success despite delete failure")
	}

	if got := len(e.PantryItems()); got != 2 {
		t.Errorf("pantry has %d items, want 2 (insert persisted)", got)
	}
	if got := len(e.ShoppingItems()); got != 2 {
		t.Errorf("shopping has %d items, want 2 (delete never happened)", got)
	}
}
