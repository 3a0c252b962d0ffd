package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ecodispensa/dispensa/internal/model"
)

const pantryTable = "pantry_items"

// pantryInsert is the write shape of a pantry_items row.
type pantryInsert struct {
	UserID     string  `json:"user_id"`
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
	ExpiryDate *string `json:"expiry_date"`
	Category   string  `json:"category"`
}

// pantryRow is the read shape of a pantry_items row. Nullable columns
// are pointers so that missing values can be defaulted on mapping.
type pantryRow struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Quantity   *float64   `json:"quantity"`
	Unit       string     `json:"unit"`
	ExpiryDate *string    `json:"expiry_date"`
	Category   string     `json:"category"`
	AddedAt    *time.Time `json:"added_at"`
}

func (r pantryRow) toModel() model.PantryItem {
	item := model.PantryItem{
		ID:       r.ID,
		Name:     r.Name,
		Unit:     model.Unit(r.Unit),
		Category: model.Category(r.Category),
		AddedAt:  time.Now().UnixMilli(),
	}
	if r.Quantity != nil {
		item.Quantity = *r.Quantity
	}
	if r.ExpiryDate != nil {
		item.ExpiryDate = *r.ExpiryDate
	}
	if r.AddedAt != nil {
		item.AddedAt = r.AddedAt.UnixMilli()
	}
	return item
}

func toPantryInsert(userID string, d model.PantryItemDraft) pantryInsert {
	row := pantryInsert{
		UserID:   userID,
		Name:     d.Name,
		Quantity: d.Quantity,
		Unit:     string(d.Unit),
		Category: string(d.Category),
	}
	if d.ExpiryDate != "" {
		expiry := d.ExpiryDate
		row.ExpiryDate = &expiry
	}
	return row
}

// InsertPantryItems inserts one or more pantry rows as a single batched
// write for the current user.
func (c *Client) InsertPantryItems(ctx context.Context, drafts []model.PantryItemDraft) error {
	sess := c.Session()
	if sess == nil {
		return ErrNoSession
	}

	rows := make([]pantryInsert, len(drafts))
	for i, d := range drafts {
		rows[i] = toPantryInsert(sess.UserID, d)
	}

	if _, err := c.doTable(ctx, http.MethodPost, c.restURL(pantryTable, nil), rows); err != nil {
		return fmt.Errorf("insert pantry items: %w", err)
	}
	return nil
}

// UpdatePantryItem applies a partial patch to a pantry row owned by the
// current user. Only the fields present in patch are written.
func (c *Client) UpdatePantryItem(ctx context.Context, id string, patch map[string]any) error {
	sess := c.Session()
	if sess == nil {
		return ErrNoSession
	}

	query := url.Values{}
	query.Set("id", "eq."+id)
	query.Set("user_id", "eq."+sess.UserID)

	if _, err := c.doTable(ctx, http.MethodPatch, c.restURL(pantryTable, query), patch); err != nil {
		return fmt.Errorf("update pantry item: %w", err)
	}
	return nil
}

// DeletePantryItem removes a pantry row owned by the current user.
func (c *Client) DeletePantryItem(ctx context.Context, id string) error {
	sess := c.Session()
	if sess == nil {
		return ErrNoSession
	}

	query := url.Values{}
	query.Set("id", "eq."+id)
	query.Set("user_id", "eq."+sess.UserID)

	if _, err := c.doTable(ctx, http.MethodDelete, c.restURL(pantryTable, query), nil); err != nil {
		return fmt.Errorf("delete pantry item: %w", err)
	}
	return nil
}

// SelectPantryItems returns all of the current user's pantry rows,
// ordered by insertion time descending.
func (c *Client) SelectPantryItems(ctx context.Context) ([]model.PantryItem, error) {
	sess := c.Session()
	if sess == nil {
		return nil, ErrNoSession
	}

	query := url.Values{}
	query.Set("select", "id,name,quantity,unit,expiry_date,category,added_at")
	query.Set("user_id", "eq."+sess.UserID)
	query.Set("order", "added_at.desc")

	data, err := c.doTable(ctx, http.MethodGet, c.restURL(pantryTable, query), nil)
	if err != nil {
		return nil, fmt.Errorf("select pantry items: %w", err)
	}

	var rows []pantryRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode pantry rows: %w", err)
	}

	items := make([]model.PantryItem, len(rows))
	for i, r := range rows {
		items[i] = r.toModel()
	}
	return items, nil
}
