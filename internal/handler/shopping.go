package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/ecodispensa/dispensa/internal/model"
	"github.com/ecodispensa/dispensa/internal/sync"
)

type ShoppingHandler struct {
	engine *sync.Engine
}

func NewShoppingHandler(engine *sync.Engine) *ShoppingHandler {
	return &ShoppingHandler{engine: engine}
}

type shoppingItemRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

func (h *ShoppingHandler) List(w http.ResponseWriter, r *http.Request) {
	items := h.engine.ShoppingItems()
	if items == nil {
		items = []model.ShoppingItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ShoppingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req shoppingItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	category := model.Category(req.Category)
	if req.Category == "" {
		category = model.CategoryOther
	} else if !category.Valid() {
		writeError(w, http.StatusBadRequest, "invalid category")
		return
	}

	h.engine.AddShoppingItem(r.Context(), name, category)
	writeJSON(w, http.StatusAccepted, h.engine.ShoppingItems())
}

func (h *ShoppingHandler) ToggleChecked(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	h.engine.ToggleShoppingItem(r.Context(), id)
	writeJSON(w, http.StatusAccepted, h.engine.ShoppingItems())
}

func (h *ShoppingHandler) ClearChecked(w http.ResponseWriter, r *http.Request) {
	h.engine.ClearCompletedShopping(r.Context())
	writeJSON(w, http.StatusAccepted, h.engine.ShoppingItems())
}

// moveRequest carries the checked entries to migrate, each enriched
// with the quantity and expiry the user filled in before confirming.
type moveRequest struct {
	Items []moveItem `json:"items"`
}

type moveItem struct {
	ShoppingID string  `json:"shopping_id"`
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
	ExpiryDate string  `json:"expiry_date"`
	Category   string  `json:"category"`
}

type moveResponse struct {
	Moved bool                 `json:"moved"`
	View  string               `json:"view"`
	Items []model.ShoppingItem `json:"items"`
}

func (h *ShoppingHandler) MoveToPantry(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "no items to move")
		return
	}

	drafts := make([]model.PantryItemDraft, 0, len(req.Items))
	ids := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		name := strings.TrimSpace(item.Name)
		if name == "" || item.ShoppingID == "" {
			writeError(w, http.StatusBadRequest, "every item needs a name and shopping_id")
			return
		}

		unit := model.Unit(item.Unit)
		if item.Unit == "" {
			unit = model.UnitPiece
		} else if !unit.Valid() {
			writeError(w, http.StatusBadRequest, "invalid unit")
			return
		}

		category := model.Category(item.Category)
		if item.Category == "" {
			category = model.CategoryOther
		} else if !category.Valid() {
			writeError(w, http.StatusBadRequest, "invalid category")
			return
		}

		if item.ExpiryDate != "" {
			if _, err := time.Parse("2006-01-02", item.ExpiryDate); err != nil {
				writeError(w, http.StatusBadRequest, "invalid expiry_date, want YYYY-MM-DD")
				return
			}
		}

		quantity := item.Quantity
		if quantity <= 0 {
			quantity = 1
		}

		drafts = append(drafts, model.PantryItemDraft{
			Name:       name,
			Quantity:   quantity,
			Unit:       unit,
			ExpiryDate: item.ExpiryDate,
			Category:   category,
		})
		ids = append(ids, item.ShoppingID)
	}

	moved := h.engine.MoveToPantry(r.Context(), drafts, ids)

	resp := moveResponse{Moved: moved, Items: h.engine.ShoppingItems()}
	if moved {
		// The client switches to the pantry view after a successful move.
		resp.View = "pantry"
	}
	writeJSON(w, http.StatusOK, resp)
}
