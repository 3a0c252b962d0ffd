package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ecodispensa/dispensa/internal/model"
)

var errRemote = errors.New("remote store unavailable")

// fakeRemote is an in-memory stand-in for the remote row store. Rows are
// kept in insertion order; selects return them newest-first, matching
// the server-side ordering contract.
type fakeRemote struct {
	mu sync.Mutex

	pantryRows   []model.PantryItem
	shoppingRows []model.ShoppingItem
	nextID       int

	failPantryInsert   bool
	failPantryUpdate   bool
	failPantryDelete   bool
	failShoppingInsert bool
	failShoppingUpdate bool
	failShoppingDelete bool

	pantryPatches []map[string]any
	calls         []string
}

func (f *fakeRemote) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeRemote) assignID() string {
	f.nextID++
	return fmt.Sprintf("srv-%d", f.nextID)
}

func (f *fakeRemote) InsertPantryItems(ctx context.Context, drafts []model.PantryItemDraft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("pantry.insert")
	if f.failPantryInsert {
		return errRemote
	}
	for _, d := range drafts {
		f.pantryRows = append(f.pantryRows, model.PantryItem{
			ID:         f.assignID(),
			Name:       d.Name,
			Quantity:   d.Quantity,
			Unit:       d.Unit,
			ExpiryDate: d.ExpiryDate,
			Category:   d.Category,
			AddedAt:    int64(1000 + f.nextID),
		})
	}
	return nil
}

func (f *fakeRemote) UpdatePantryItem(ctx context.Context, id string, patch map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("pantry.update")
	f.pantryPatches = append(f.pantryPatches, patch)
	if f.failPantryUpdate {
		return errRemote
	}
	for i := range f.pantryRows {
		if f.pantryRows[i].ID != id {
			continue
		}
		if v, ok := patch["name"]; ok {
			f.pantryRows[i].Name = v.(string)
		}
		if v, ok := patch["quantity"]; ok {
			f.pantryRows[i].Quantity = v.(float64)
		}
		if v, ok := patch["unit"]; ok {
			f.pantryRows[i].Unit = model.Unit(v.(string))
		}
		if v, ok := patch["category"]; ok {
			f.pantryRows[i].Category = model.Category(v.(string))
		}
		if v, ok := patch["expiry_date"]; ok {
			if v == nil {
				f.pantryRows[i].ExpiryDate = ""
			} else {
				f.pantryRows[i].ExpiryDate = v.(string)
			}
		}
	}
	return nil
}

func (f *fakeRemote) DeletePantryItem(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("pantry.delete")
	if f.failPantryDelete {
		return errRemote
	}
	kept := f.pantryRows[:0]
	for _, r := range f.pantryRows {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	f.pantryRows = kept
	return nil
}

func (f *fakeRemote) SelectPantryItems(ctx context.Context) ([]model.PantryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("pantry.select")
	out := make([]model.PantryItem, len(f.pantryRows))
	for i, r := range f.pantryRows {
		out[len(f.pantryRows)-1-i] = r
	}
	return out, nil
}

func (f *fakeRemote) InsertShoppingItem(ctx context.Context, name string, category model.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("shopping.insert")
	if f.failShoppingInsert {
		return errRemote
	}
	f.shoppingRows = append(f.shoppingRows, model.ShoppingItem{
		ID:       f.assignID(),
		Name:     name,
		Category: category,
	})
	return nil
}

func (f *fakeRemote) UpdateShoppingChecked(ctx context.Context, id string, checked bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("shopping.update")
	if f.failShoppingUpdate {
		return errRemote
	}
	for i := range f.shoppingRows {
		if f.shoppingRows[i].ID == id {
			f.shoppingRows[i].IsChecked = checked
		}
	}
	return nil
}

func (f *fakeRemote) DeleteShoppingItems(ctx context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("shopping.delete")
	if f.failShoppingDelete {
		return errRemote
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := f.shoppingRows[:0]
	for _, r := range f.shoppingRows {
		if !drop[r.ID] {
			kept = append(kept, r)
		}
	}
	f.shoppingRows = kept
	return nil
}

func (f *fakeRemote) DeleteCheckedShopping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("shopping.clear")
	if f.failShoppingDelete {
		return errRemote
	}
	kept := f.shoppingRows[:0]
	for _, r := range f.shoppingRows {
		if !r.IsChecked {
			kept = append(kept, r)
		}
	}
	f.shoppingRows = kept
	return nil
}

func (f *fakeRemote) SelectShoppingItems(ctx context.Context) ([]model.ShoppingItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("shopping.select")
	out := make([]model.ShoppingItem, len(f.shoppingRows))
	for i, r := range f.shoppingRows {
		out[len(f.shoppingRows)-1-i] = r
	}
	return out, nil
}

func (f *fakeRemote) callCount(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}
