package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/ecodispensa/dispensa/internal/model"
	"github.com/ecodispensa/dispensa/internal/sync"
)

type PantryHandler struct {
	engine *sync.Engine
}

func NewPantryHandler(engine *sync.Engine) *PantryHandler {
	return &PantryHandler{engine: engine}
}

type pantryItemRequest struct {
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
	ExpiryDate string  `json:"expiry_date"`
	Category   string  `json:"category"`
}

// draft validates the request and converts it to a draft. Missing unit
// and category fall back to piece and Altro, matching manual entry
// defaults.
func (req pantryItemRequest) draft() (model.PantryItemDraft, string) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.PantryItemDraft{}, "name is required"
	}
	if req.Quantity < 0 {
		return model.PantryItemDraft{}, "quantity must not be negative"
	}

	unit := model.Unit(req.Unit)
	if req.Unit == "" {
		unit = model.UnitPiece
	} else if !unit.Valid() {
		return model.PantryItemDraft{}, "invalid unit"
	}

	category := model.Category(req.Category)
	if req.Category == "" {
		category = model.CategoryOther
	} else if !category.Valid() {
		return model.PantryItemDraft{}, "invalid category"
	}

	if req.ExpiryDate != "" {
		if _, err := time.Parse("2006-01-02", req.ExpiryDate); err != nil {
			return model.PantryItemDraft{}, "invalid expiry_date, want YYYY-MM-DD"
		}
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	return model.PantryItemDraft{
		Name:       name,
		Quantity:   quantity,
		Unit:       unit,
		ExpiryDate: req.ExpiryDate,
		Category:   category,
	}, ""
}

func (h *PantryHandler) List(w http.ResponseWriter, r *http.Request) {
	items := h.engine.PantryItems()
	if items == nil {
		items = []model.PantryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *PantryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req pantryItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	draft, msg := req.draft()
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	h.engine.AddPantryItem(r.Context(), draft)
	writeJSON(w, http.StatusAccepted, h.engine.PantryItems())
}

type pantryPatchRequest struct {
	Name       *string  `json:"name"`
	Quantity   *float64 `json:"quantity"`
	Unit       *string  `json:"unit"`
	ExpiryDate *string  `json:"expiry_date"`
	Category   *string  `json:"category"`
}

func (h *PantryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req pantryPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	patch := sync.PantryPatch{
		Quantity:   req.Quantity,
		ExpiryDate: req.ExpiryDate,
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			writeError(w, http.StatusBadRequest, "name must not be empty")
			return
		}
		patch.Name = &name
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		writeError(w, http.StatusBadRequest, "quantity must not be negative")
		return
	}
	if req.Unit != nil {
		unit := model.Unit(*req.Unit)
		if !unit.Valid() {
			writeError(w, http.StatusBadRequest, "invalid unit")
			return
		}
		patch.Unit = &unit
	}
	if req.Category != nil {
		category := model.Category(*req.Category)
		if !category.Valid() {
			writeError(w, http.StatusBadRequest, "invalid category")
			return
		}
		patch.Category = &category
	}
	if req.ExpiryDate != nil && *req.ExpiryDate != "" {
		if _, err := time.Parse("2006-01-02", *req.ExpiryDate); err != nil {
			writeError(w, http.StatusBadRequest, "invalid expiry_date, want YYYY-MM-DD")
			return
		}
	}

	h.engine.UpdatePantryItem(r.Context(), id, patch)
	writeJSON(w, http.StatusAccepted, h.engine.PantryItems())
}

func (h *PantryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	h.engine.RemovePantryItem(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}
