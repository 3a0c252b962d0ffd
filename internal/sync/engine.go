// Package sync keeps optimistic local copies of the pantry and shopping
// collections consistent with the remote row store. Every mutating
// operation applies locally first, then issues the remote write; on
// failure it rolls back or reloads from the remote store, which is the
// single source of truth. Remote failures are logged and never
// propagated to callers.
package sync

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ecodispensa/dispensa/internal/model"
)

// Entity names used in change notifications.
const (
	EntityPantry   = "pantry"
	EntityShopping = "shopping"
)

// PantryRemote is the remote store contract for the pantry collection.
type PantryRemote interface {
	InsertPantryItems(ctx context.Context, drafts []model.PantryItemDraft) error
	UpdatePantryItem(ctx context.Context, id string, patch map[string]any) error
	DeletePantryItem(ctx context.Context, id string) error
	SelectPantryItems(ctx context.Context) ([]model.PantryItem, error)
}

// ShoppingRemote is the remote store contract for the shopping collection.
type ShoppingRemote interface {
	InsertShoppingItem(ctx context.Context, name string, category model.Category) error
	UpdateShoppingChecked(ctx context.Context, id string, checked bool) error
	DeleteShoppingItems(ctx context.Context, ids []string) error
	DeleteCheckedShopping(ctx context.Context) error
	SelectShoppingItems(ctx context.Context) ([]model.ShoppingItem, error)
}

// Remote is the full remote store contract the engine depends on.
type Remote interface {
	PantryRemote
	ShoppingRemote
}

// ChangeFunc is invoked after a collection's local state changes, so
// other devices can be told to refresh.
type ChangeFunc func(entity string)

// Engine owns the two local collections.
type Engine struct {
	remote   Remote
	logger   *slog.Logger
	onChange ChangeFunc

	mu       sync.Mutex
	closed   bool
	pantry   []model.PantryItem
	shopping []model.ShoppingItem

	locks keyedLocks
}

// New creates a sync engine over the given remote store. onChange may be
// nil.
func New(remote Remote, logger *slog.Logger, onChange ChangeFunc) *Engine {
	return &Engine{
		remote:   remote,
		logger:   logger,
		onChange: onChange,
	}
}

// Close marks the engine as torn down. In-flight operations complete
// their remote calls but no longer touch local state.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
}

// PantryItems returns a snapshot of the local pantry collection.
func (e *Engine) PantryItems() []model.PantryItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.PantryItem, len(e.pantry))
	copy(out, e.pantry)
	return out
}

// ShoppingItems returns a snapshot of the local shopping collection.
func (e *Engine) ShoppingItems() []model.ShoppingItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.ShoppingItem, len(e.shopping))
	copy(out, e.shopping)
	return out
}

// ReloadPantry replaces the local pantry collection with the remote
// state. On failure the local state is kept as-is.
func (e *Engine) ReloadPantry(ctx context.Context) {
	items, err := e.remote.SelectPantryItems(ctx)
	if err != nil {
		e.logger.Error("pantry reload failed", "error", err)
		return
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.pantry = items
	e.mu.Unlock()

	e.notify(EntityPantry)
}

// ReloadShopping replaces the local shopping collection with the remote
// state. On failure the local state is kept as-is.
func (e *Engine) ReloadShopping(ctx context.Context) {
	items, err := e.remote.SelectShoppingItems(ctx)
	if err != nil {
		e.logger.Error("shopping reload failed", "error", err)
		return
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.shopping = items
	e.mu.Unlock()

	e.notify(EntityShopping)
}

func (e *Engine) notify(entity string) {
	if e.onChange != nil {
		e.onChange(entity)
	}
}
