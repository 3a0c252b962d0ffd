package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ecodispensa/dispensa/internal/model"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, APIKey: "test-anon-key"})
}

func signIn(t *testing.T, c *Client) {
	t.Helper()
	c.setSession(EventSignedIn, &Session{
		AccessToken:  "token",
		RefreshToken: "refresh",
		UserID:       "user-1",
	})
}

func TestTableOpsRequireSession(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should reach the server without a session")
	}))

	if _, err := c.SelectPantryItems(context.Background()); err != ErrNoSession {
		t.Errorf("SelectPantryItems error = %v, want ErrNoSession", err)
	}
	if err := c.InsertShoppingItem(context.Background(), "Mele", model.CategoryFruitVeg); err != ErrNoSession {
		t.Errorf("InsertShoppingItem error = %v, want ErrNoSession", err)
	}
}

func TestSelectPantryItemsMapsRowsWithDefaults(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("user_id"); got != "eq.user-1" {
			t.Errorf("user_id filter = %q, want %q", got, "eq.user-1")
		}
		if got := q.Get("order"); got != "added_at.desc" {
			t.Errorf("order = %q, want %q", got, "added_at.desc")
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"a","name":"Latte","quantity":1,"unit":"l","expiry_date":"2026-09-01","category":"Latticini","added_at":"2026-08-20T10:00:00Z"},
			{"id":"b","name":"Pane","unit":"pz","category":"Dispensa","expiry_date":null,"added_at":null}
		]`))
	}))
	signIn(t, c)

	items, err := c.SelectPantryItems(context.Background())
	if err != nil {
		t.Fatalf("select pantry items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}

	if items[0].ExpiryDate != "2026-09-01" {
		t.Errorf("expiry = %q, want 2026-09-01", items[0].ExpiryDate)
	}
	if items[0].AddedAt == 0 {
		t.Error("added_at not mapped")
	}

	// Missing quantity defaults to 0, missing expiry to none, missing
	// timestamp to now.
	if items[1].Quantity != 0 {
		t.Errorf("missing quantity mapped to %v, want 0", items[1].Quantity)
	}
	if items[1].ExpiryDate != "" {
		t.Errorf("null expiry mapped to %q, want empty", items[1].ExpiryDate)
	}
	if items[1].AddedAt == 0 {
		t.Error("null added_at should default to now, got 0")
	}
}

func TestInsertPantryItemsBatchesRows(t *testing.T) {
	var rows []map[string]any
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	signIn(t, c)

	drafts := []model.PantryItemDraft{
		{Name: "Mele", Quantity: 1, Unit: model.UnitKilogram, Category: model.CategoryFruitVeg},
		{Name: "Latte", Quantity: 1, Unit: model.UnitLiter, Category: model.CategoryDairy, ExpiryDate: "2026-09-01"},
	}
	if err := c.InsertPantryItems(context.Background(), drafts); err != nil {
		t.Fatalf("insert pantry items: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("got %d rows in batch, want 2", len(rows))
	}
	if rows[0]["user_id"] != "user-1" {
		t.Errorf("row user_id = %v, want user-1", rows[0]["user_id"])
	}
	if rows[0]["expiry_date"] != nil {
		t.Errorf("row without expiry should carry null, got %v", rows[0]["expiry_date"])
	}
	if rows[1]["expiry_date"] != "2026-09-01" {
		t.Errorf("row expiry_date = %v, want 2026-09-01", rows[1]["expiry_date"])
	}
}

func TestDeleteCheckedShoppingFilter(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusNoContent)
	}))
	signIn(t, c)

	if err := c.DeleteCheckedShopping(context.Background()); err != nil {
		t.Fatalf("delete checked: %v", err)
	}

	req, _ := http.NewRequest(http.MethodDelete, "/?"+gotQuery, nil)
	q := req.URL.Query()
	if q.Get("is_checked") != "eq.true" {
		t.Errorf("is_checked filter = %q, want eq.true", q.Get("is_checked"))
	}
	if q.Get("user_id") != "eq.user-1" {
		t.Errorf("user_id filter = %q, want eq.user-1", q.Get("user_id"))
	}
}

func TestRemoteErrorSurfacesStatus(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "row level security violation", http.StatusForbidden)
	}))
	signIn(t, c)

	if err := c.DeletePantryItem(context.Background(), "a"); err == nil {
		t.Fatal("expected error on 403 response")
	}
}
