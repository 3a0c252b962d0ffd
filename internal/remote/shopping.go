package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ecodispensa/dispensa/internal/model"
)

const shoppingTable = "shopping_items"

type shoppingInsert struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	IsChecked bool   `json:"is_checked"`
}

type shoppingRow struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	IsChecked bool   `json:"is_checked"`
}

// InsertShoppingItem inserts a shopping row for the current user. New
// items are always unchecked.
func (c *Client) InsertShoppingItem(ctx context.Context, name string, category model.Category) error {
	sess := c.Session()
	if sess == nil {
		return ErrNoSession
	}

	row := shoppingInsert{
		UserID:    sess.UserID,
		Name:      name,
		Category:  string(category),
		IsChecked: false,
	}

	if _, err := c.doTable(ctx, http.MethodPost, c.restURL(shoppingTable, nil), row); err != nil {
		return fmt.Errorf("insert shopping item: %w", err)
	}
	return nil
}

// UpdateShoppingChecked sets the checked state of a shopping row owned
// by the current user.
func (c *Client) UpdateShoppingChecked(ctx context.Context, id string, checked bool) error {
	sess := c.Session()
	if sess == nil {
		return ErrNoSession
	}

	query := url.Values{}
	query.Set("id", "eq."+id)
	query.Set("user_id", "eq."+sess.UserID)

	patch := map[string]any{"is_checked": checked}
	if _, err := c.doTable(ctx, http.MethodPatch, c.restURL(shoppingTable, query), patch); err != nil {
		return fmt.Errorf("update shopping item: %w", err)
	}
	return nil
}

// DeleteShoppingItems removes the given shopping rows owned by the
// current user in one filtered delete.
func (c *Client) DeleteShoppingItems(ctx context.Context, ids []string) error {
	sess := c.Session()
	if sess == nil {
		return ErrNoSession
	}
	if len(ids) == 0 {
		return nil
	}

	query := url.Values{}
	query.Set("id", "in.("+strings.Join(ids, ",")+")")
	query.Set("user_id", "eq."+sess.UserID)

	if _, err := c.doTable(ctx, http.MethodDelete, c.restURL(shoppingTable, query), nil); err != nil {
		return fmt.Errorf("delete shopping items: %w", err)
	}
	return nil
}

// DeleteCheckedShopping removes all checked shopping rows for the
// current user as a single filtered delete.
func (c *Client) DeleteCheckedShopping(ctx context.Context) error {
	sess := c.Session()
	if sess == nil {
		return ErrNoSession
	}

	query := url.Values{}
	query.Set("user_id", "eq."+sess.UserID)
	query.Set("is_checked", "eq.true")

	if _, err := c.doTable(ctx, http.MethodDelete, c.restURL(shoppingTable, query), nil); err != nil {
		return fmt.Errorf("delete checked shopping items: %w", err)
	}
	return nil
}

// SelectShoppingItems returns all of the current user's shopping rows,
// ordered by creation time descending.
func (c *Client) SelectShoppingItems(ctx context.Context) ([]model.ShoppingItem, error) {
	sess := c.Session()
	if sess == nil {
		return nil, ErrNoSession
	}

	query := url.Values{}
	query.Set("select", "id,name,category,is_checked")
	query.Set("user_id", "eq."+sess.UserID)
	query.Set("order", "created_at.desc")

	data, err := c.doTable(ctx, http.MethodGet, c.restURL(shoppingTable, query), nil)
	if err != nil {
		return nil, fmt.Errorf("select shopping items: %w", err)
	}

	var rows []shoppingRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode shopping rows: %w", err)
	}

	items := make([]model.ShoppingItem, len(rows))
	for i, r := range rows {
		items[i] = model.ShoppingItem{
			ID:        r.ID,
			Name:      r.Name,
			Category:  model.Category(r.Category),
			IsChecked: r.IsChecked,
		}
	}
	return items, nil
}
