package sync

import (
	"context"

	"github.com/google/uuid"

	"github.com/ecodispensa/dispensa/internal/model"
)

// AddShoppingItem adds an unchecked entry locally under a temporary id,
// then inserts it remotely. Success triggers a full reload to pick up
// the server-assigned id; failure rolls the temporary entry back.
func (e *Engine) AddShoppingItem(ctx context.Context, name string, category model.Category) {
	tempID := uuid.NewString()
	item := model.ShoppingItem{
		ID:        tempID,
		Name:      name,
		Category:  category,
		IsChecked: false,
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.shopping = append([]model.ShoppingItem{item}, e.shopping...)
	e.mu.Unlock()
	e.notify(EntityShopping)

	if err := e.remote.InsertShoppingItem(ctx, name, category); err != nil {
		e.logger.Error("shopping insert failed, rolling back", "name", name, "error", err)
		e.mu.Lock()
		if !e.closed {
			e.shopping = removeShoppingByID(e.shopping, tempID)
		}
		e.mu.Unlock()
		e.notify(EntityShopping)
		return
	}

	e.ReloadShopping(ctx)
}

// ToggleShoppingItem flips the entry's checked state. The target value
// is computed from the local state before mutation, so a single toggle
// strictly inverts the prior boolean. On remote failure the collection
// is reloaded.
func (e *Engine) ToggleShoppingItem(ctx context.Context, id string) {
	release := e.locks.acquire("shopping:" + id)
	defer release()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	var next bool
	found := false
	for i := range e.shopping {
		if e.shopping[i].ID == id {
			next = !e.shopping[i].IsChecked
			e.shopping[i].IsChecked = next
			found = true
			break
		}
	}
	e.mu.Unlock()

	if !found {
		return
	}
	e.notify(EntityShopping)

	if err := e.remote.UpdateShoppingChecked(ctx, id, next); err != nil {
		e.logger.Error("shopping toggle failed, reloading", "id", id, "error", err)
		e.ReloadShopping(ctx)
	}
}

// ClearCompletedShopping removes all checked entries locally and issues
// one filtered remote delete. On remote failure the collection is
// reloaded.
func (e *Engine) ClearCompletedShopping(ctx context.Context) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	kept := e.shopping[:0]
	for _, it := range e.shopping {
		if !it.IsChecked {
			kept = append(kept, it)
		}
	}
	e.shopping = kept
	e.mu.Unlock()
	e.notify(EntityShopping)

	if err := e.remote.DeleteCheckedShopping(ctx); err != nil {
		e.logger.Error("shopping clear failed, reloading", "error", err)
		e.ReloadShopping(ctx)
	}
}

func removeShoppingByID(items []model.ShoppingItem, id string) []model.ShoppingItem {
	out := items[:0]
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}
