package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ecodispensa/dispensa/internal/ai"
	"github.com/ecodispensa/dispensa/internal/model"
)

type VisionHandler struct {
	client *ai.Client
}

func NewVisionHandler(client *ai.Client) *VisionHandler {
	return &VisionHandler{client: client}
}

type identifyResponse struct {
	Item    *model.PantryItemDraft `json:"item"`
	Message string                 `json:"message,omitempty"`
}

// Identify recognizes a product from a base64-encoded photo and returns
// a prefilled draft, or a null item when nothing was recognized.
func (h *VisionHandler) Identify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Image string `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Image == "" {
		writeError(w, http.StatusBadRequest, "image is required")
		return
	}

	draft, err := h.client.IdentifyItem(r.Context(), req.Image)
	if err != nil {
		if ai.IsThrottled(err) {
			writeError(w, http.StatusTooManyRequests, "Troppi tentativi. Riprova tra 30 secondi.")
			return
		}
		writeError(w, http.StatusBadGateway, "Non sono riuscito a riconoscere il prodotto. Riprova o inserisci manualmente.")
		return
	}

	resp := identifyResponse{Item: draft}
	if draft == nil {
		resp.Message = "Non sono riuscito a riconoscere il prodotto. Riprova o inserisci manualmente."
	}
	writeJSON(w, http.StatusOK, resp)
}
