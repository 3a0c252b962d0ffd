package model

// IngredientUsage is a recipe's declared consumption of a named
// ingredient. The name is free text and may not exactly match any pantry
// entry.
type IngredientUsage struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     Unit    `json:"unit"`
}

// Recipe difficulty levels as produced by the recipe service.
const (
	DifficultyEasy   = "Facile"
	DifficultyMedium = "Media"
	DifficultyHard   = "Difficile"
)

// Recipe is a suggestion returned by the recipe-generation service.
// Field names follow the service's JSON schema.
type Recipe struct {
	Title              string            `json:"title"`
	Difficulty         string            `json:"difficulty"`
	Time               string            `json:"time"`
	Description        string            `json:"description"`
	IngredientsUsed    []IngredientUsage `json:"ingredientsUsed"`
	MissingIngredients []string          `json:"missingIngredients"`
	Steps              []string          `json:"steps"`
}
