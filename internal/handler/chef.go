package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ecodispensa/dispensa/internal/ai"
	"github.com/ecodispensa/dispensa/internal/model"
	"github.com/ecodispensa/dispensa/internal/sync"
)

type ChefHandler struct {
	chef   *ai.Chef
	engine *sync.Engine
}

func NewChefHandler(chef *ai.Chef, engine *sync.Engine) *ChefHandler {
	return &ChefHandler{chef: chef, engine: engine}
}

type recipesResponse struct {
	Recipes []model.Recipe `json:"recipes"`
	Message string         `json:"message,omitempty"`
}

func (h *ChefHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.chef.Suggest(r.Context(), h.engine.PantryItems())
	if err != nil {
		h.writeChefError(w, err, "Impossibile connettersi allo Chef AI. Riprova più tardi.")
		return
	}

	resp := recipesResponse{Recipes: recipes}
	if len(recipes) == 0 {
		resp.Recipes = []model.Recipe{}
		resp.Message = "Nessuna ricetta generata. Se hai appena provato più volte, aspetta 30 secondi e riprova."
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ChefHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Idea string `json:"idea"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	idea := strings.TrimSpace(req.Idea)
	if idea == "" {
		writeError(w, http.StatusBadRequest, "idea is required")
		return
	}

	recipes, err := h.chef.Search(r.Context(), idea, h.engine.PantryItems())
	if err != nil {
		h.writeChefError(w, err, "Impossibile cercare la ricetta. Riprova.")
		return
	}

	resp := recipesResponse{Recipes: recipes}
	if len(recipes) == 0 {
		resp.Recipes = []model.Recipe{}
		resp.Message = "Nessuna ricetta trovata. Riprova con una richiesta diversa."
	}
	writeJSON(w, http.StatusOK, resp)
}

// Cook subtracts a recipe's declared ingredient usages from the pantry.
// The adjustment is local only.
func (h *ChefHandler) Cook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IngredientsUsed []model.IngredientUsage `json:"ingredientsUsed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.IngredientsUsed) == 0 {
		writeError(w, http.StatusBadRequest, "ingredientsUsed is required")
		return
	}

	items := h.engine.ConsumeIngredients(req.IngredientsUsed)
	if items == nil {
		items = []model.PantryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ChefHandler) writeChefError(w http.ResponseWriter, err error, fallback string) {
	var cooldown *ai.CooldownError
	if errors.As(err, &cooldown) {
		writeError(w, http.StatusTooManyRequests,
			fmt.Sprintf("Troppi tentativi. Riprova tra %d secondi.", cooldown.RemainingSeconds()))
		return
	}
	if ai.IsThrottled(err) {
		writeError(w, http.StatusTooManyRequests, "Troppi tentativi. Riprova tra 30 secondi.")
		return
	}
	writeError(w, http.StatusBadGateway, fallback)
}
