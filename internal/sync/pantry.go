package sync

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ecodispensa/dispensa/internal/model"
	"github.com/ecodispensa/dispensa/internal/pantry"
)

// AddPantryItem materializes the draft locally under a temporary id,
// then inserts it remotely. On success the collection is reloaded so the
// server-assigned id and canonical ordering replace the temporary entry;
// on failure the temporary entry is removed.
func (e *Engine) AddPantryItem(ctx context.Context, draft model.PantryItemDraft) {
	tempID := uuid.NewString()
	item := model.PantryItem{
		ID:         tempID,
		Name:       draft.Name,
		Quantity:   draft.Quantity,
		Unit:       draft.Unit,
		ExpiryDate: draft.ExpiryDate,
		Category:   draft.Category,
		AddedAt:    time.Now().UnixMilli(),
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.pantry = append([]model.PantryItem{item}, e.pantry...)
	e.mu.Unlock()
	e.notify(EntityPantry)

	if err := e.remote.InsertPantryItems(ctx, []model.PantryItemDraft{draft}); err != nil {
		e.logger.Error("pantry insert failed, rolling back", "name", draft.Name, "error", err)
		e.mu.Lock()
		if !e.closed {
			e.pantry = removePantryByID(e.pantry, tempID)
		}
		e.mu.Unlock()
		e.notify(EntityPantry)
		return
	}

	e.ReloadPantry(ctx)
}

// PantryPatch is a partial update. Nil fields are left untouched both
// locally and remotely. A non-nil empty ExpiryDate clears the expiry.
type PantryPatch struct {
	Name       *string
	Quantity   *float64
	Unit       *model.Unit
	Category   *model.Category
	ExpiryDate *string
}

func (p PantryPatch) payload() map[string]any {
	payload := map[string]any{}
	if p.Name != nil {
		payload["name"] = *p.Name
	}
	if p.Quantity != nil {
		payload["quantity"] = *p.Quantity
	}
	if p.Unit != nil {
		payload["unit"] = string(*p.Unit)
	}
	if p.Category != nil {
		payload["category"] = string(*p.Category)
	}
	if p.ExpiryDate != nil {
		if *p.ExpiryDate == "" {
			payload["expiry_date"] = nil
		} else {
			payload["expiry_date"] = *p.ExpiryDate
		}
	}
	return payload
}

// UpdatePantryItem merges the patch into the local entry and writes only
// the present fields remotely. An empty patch is a no-op and issues no
// remote call. On remote failure the collection is reloaded.
func (e *Engine) UpdatePantryItem(ctx context.Context, id string, patch PantryPatch) {
	payload := patch.payload()
	if len(payload) == 0 {
		return
	}

	release := e.locks.acquire("pantry:" + id)
	defer release()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	for i := range e.pantry {
		if e.pantry[i].ID != id {
			continue
		}
		if patch.Name != nil {
			e.pantry[i].Name = *patch.Name
		}
		if patch.Quantity != nil {
			e.pantry[i].Quantity = *patch.Quantity
		}
		if patch.Unit != nil {
			e.pantry[i].Unit = *patch.Unit
		}
		if patch.Category != nil {
			e.pantry[i].Category = *patch.Category
		}
		if patch.ExpiryDate != nil {
			e.pantry[i].ExpiryDate = *patch.ExpiryDate
		}
		break
	}
	e.mu.Unlock()
	e.notify(EntityPantry)

	if err := e.remote.UpdatePantryItem(ctx, id, payload); err != nil {
		e.logger.Error("pantry update failed, reloading", "id", id, "error", err)
		e.ReloadPantry(ctx)
	}
}

// RemovePantryItem removes the entry locally then remotely. On remote
// failure the collection is reloaded, since the local removal may not
// have happened on the server.
func (e *Engine) RemovePantryItem(ctx context.Context, id string) {
	release := e.locks.acquire("pantry:" + id)
	defer release()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.pantry = removePantryByID(e.pantry, id)
	e.mu.Unlock()
	e.notify(EntityPantry)

	if err := e.remote.DeletePantryItem(ctx, id); err != nil {
		e.logger.Error("pantry delete failed, reloading", "id", id, "error", err)
		e.ReloadPantry(ctx)
	}
}

// ConsumeIngredients applies a recipe's ingredient usages to the local
// pantry collection. The result is local-only: quantities are not
// written back to the remote store.
func (e *Engine) ConsumeIngredients(usages []model.IngredientUsage) []model.PantryItem {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.pantry = pantry.Consume(e.pantry, usages)
	out := make([]model.PantryItem, len(e.pantry))
	copy(out, e.pantry)
	e.mu.Unlock()

	e.notify(EntityPantry)
	return out
}

func removePantryByID(items []model.PantryItem, id string) []model.PantryItem {
	out := items[:0]
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}
