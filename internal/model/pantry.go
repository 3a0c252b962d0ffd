package model

// Unit is a measurement unit for pantry quantities.
type Unit string

const (
	UnitPiece      Unit = "pz"
	UnitKilogram   Unit = "kg"
	UnitGram       Unit = "g"
	UnitLiter      Unit = "l"
	UnitMilliliter Unit = "ml"
)

// Units lists every valid unit.
var Units = []Unit{UnitPiece, UnitKilogram, UnitGram, UnitLiter, UnitMilliliter}

func (u Unit) Valid() bool {
	for _, v := range Units {
		if u == v {
			return true
		}
	}
	return false
}

// Category is a product category. Values are the display strings the
// remote store and the AI services exchange.
type Category string

const (
	CategoryFruitVeg  Category = "Ortofrutta"
	CategoryDairy     Category = "Latticini"
	CategoryMeatFish  Category = "Carne & Pesce"
	CategoryPantry    Category = "Dispensa"
	CategoryFrozen    Category = "Surgelati"
	CategoryHousehold Category = "Casa"
	CategoryOther     Category = "Altro"
)

// Categories lists every valid category.
var Categories = []Category{
	CategoryFruitVeg,
	CategoryDairy,
	CategoryMeatFish,
	CategoryPantry,
	CategoryFrozen,
	CategoryHousehold,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// PantryItem is a tracked household product.
type PantryItem struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Quantity   float64  `json:"quantity"`
	Unit       Unit     `json:"unit"`
	ExpiryDate string   `json:"expiry_date,omitempty"` // YYYY-MM-DD, empty means no known expiry
	Category   Category `json:"category"`
	AddedAt    int64    `json:"added_at"` // epoch milliseconds
}

// PantryItemDraft is a pantry item before the remote store has assigned
// an id and insertion timestamp.
type PantryItemDraft struct {
	Name       string   `json:"name"`
	Quantity   float64  `json:"quantity"`
	Unit       Unit     `json:"unit"`
	ExpiryDate string   `json:"expiry_date,omitempty"`
	Category   Category `json:"category"`
}
