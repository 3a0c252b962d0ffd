package ai

import (
	"fmt"
	"strings"
	"time"

	"github.com/ecodispensa/dispensa/internal/model"
)

const recipeSchema = `[
  {
    "title": "...",
    "difficulty": "Facile|Media|Difficile",
    "time": "es. 30 min",
    "description": "...",
    "ingredientsUsed": [{"name":"...", "quantity": 1, "unit":"g|kg|l|ml|pz"}],
    "missingIngredients": ["..."],
    "steps": ["..."]
  }
]`

func inventoryLine(i model.PantryItem) string {
	expiry := i.ExpiryDate
	if expiry == "" {
		expiry = "N/A"
	}
	return fmt.Sprintf("%g %s di %s (scade il: %s)", i.Quantity, i.Unit, i.Name, expiry)
}

func suggestPrompt(items []model.PantryItem) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = inventoryLine(it)
	}

	return fmt.Sprintf(`Agisci come uno chef esperto di cucina sostenibile e anti-spreco.
Ho questi ingredienti nella mia dispensa: %s.

Suggerisci 3 ricette gustose che posso preparare principalmente con questi ingredienti per evitare che scadano.

IMPORTANTE:
- In "ingredientsUsed", devi indicare ESATTAMENTE il nome del prodotto presente in dispensa e la quantità necessaria per la ricetta.
- È accettabile suggerire di comprare 1-2 ingredienti freschi extra se necessario.

Rispondi SOLO con un JSON array con questa struttura:
%s`, strings.Join(lines, ", "), recipeSchema)
}

func searchPrompt(idea string, items []model.PantryItem) string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}

	return fmt.Sprintf(`L'utente vuole cucinare: "%s".

La sua dispensa contiene: %s.

1. Genera una ricetta dettagliata per "%s".
2. Confronta gli ingredienti necessari per la ricetta con quelli in dispensa.
3. Metti in "ingredientsUsed" SOLO quelli presenti in dispensa che servono per la ricetta. Usa quantità numeriche precise.
4. Metti in "missingIngredients" TUTTO ciò che manca e che l'utente deve comprare.

Rispondi SOLO con un JSON array contenente questa singola ricetta, con questa struttura:
%s`, idea, strings.Join(names, ", "), idea, recipeSchema)
}

func identifyPrompt() string {
	categories := make([]string, len(model.Categories))
	for i, c := range model.Categories {
		categories[i] = string(c)
	}

	return fmt.Sprintf(`Analizza questa immagine di un prodotto alimentare.
Identifica il prodotto e restituisci un oggetto JSON con:
- name: Nome breve e descrittivo in Italiano (es. "Latte Parzialmente Scremato", "Mele Golden").
- category: Una delle seguenti categorie esatte: %s.
- quantity: Stima numerica della quantità (di default 1 se non chiaro).
- unit: Unità di misura stimata (pz, kg, l, g).
- expiry_date: Una stima della data di scadenza (YYYY-MM-DD) basata sul tipo di prodotto fresco assumendo che sia stato comprato oggi (%s). Se è un prodotto a lunga conservazione, lascia vuoto o stima una data lontana.

Se non è un prodotto alimentare, restituisci null.`,
		strings.Join(categories, ", "), time.Now().Format("2006-01-02"))
}
