package model

// ShoppingItem is a to-buy entry. Checked items are ready to be moved
// into the pantry.
type ShoppingItem struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Category  Category `json:"category"`
	IsChecked bool     `json:"is_checked"`
}
