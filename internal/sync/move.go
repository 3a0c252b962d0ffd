package sync

import (
	"context"

	"github.com/ecodispensa/dispensa/internal/model"
)

// MoveToPantry migrates shopping entries into pantry entries as a
// two-step pseudo-transaction: batch-insert the drafts into the remote
// pantry store, then delete the shopping rows. It is not atomic. If the
// insert fails nothing moved; if the delete fails the pantry rows are
// already persisted and the move is left half-done. Either way both
// collections are reloaded so local state reflects the actual remote
// state; the engine reconciles instead of compensating. It reports
// whether the full move succeeded.
func (e *Engine) MoveToPantry(ctx context.Context, drafts []model.PantryItemDraft, shoppingIDs []string) bool {
	if err := e.remote.InsertPantryItems(ctx, drafts); err != nil {
		e.logger.Error("move: pantry insert failed, nothing moved", "error", err)
		e.ReloadPantry(ctx)
		e.ReloadShopping(ctx)
		return false
	}

	if err := e.remote.DeleteShoppingItems(ctx, shoppingIDs); err != nil {
		e.logger.Error("move: shopping delete failed after pantry insert, reconciling", "error", err)
		e.ReloadPantry(ctx)
		e.ReloadShopping(ctx)
		return false
	}

	e.ReloadPantry(ctx)
	e.ReloadShopping(ctx)
	return true
}
