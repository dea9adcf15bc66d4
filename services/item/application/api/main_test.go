package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/stockhub/pkg/auth"
	"github.com/ghuser/stockhub/pkg/logger"
	"github.com/ghuser/stockhub/services/item/application/handlers"
	appsvcs "github.com/ghuser/stockhub/services/item/application/services"
	itemdomain "github.com/ghuser/stockhub/services/item/domain"
	"github.com/ghuser/stockhub/services/item/domain/models"
)

// tableRepo keeps rows in a slice and filters by owner like the SQL store.
type tableRepo struct {
	mu   sync.Mutex
	rows []models.Item
	seq  int64
}

func (r *tableRepo) find(ownerID string, id int64) int {
	for i, row := range r.rows {
		if row.ID == id && row.OwnerID == ownerID {
			return i
		}
	}
	return -1
}

func (r *tableRepo) Insert(_ context.Context, ownerID string, in models.ItemInput) (*models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	now := time.Now().UTC()
	row := models.Item{ID: r.seq, OwnerID: ownerID, Name: in.Name, Description: in.Description,
		Quantity: in.Quantity, Price: in.Price, Category: in.Category, CreatedAt: now, UpdatedAt: now}
	r.rows = append(r.rows, row)
	return &row, nil
}

func (r *tableRepo) ListByOwner(_ context.Context, ownerID string) ([]*models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Item{}
	for _, row := range r.rows {
		if row.OwnerID == ownerID {
			out = append(out, &row)
		}
	}
	return out, nil
}

func (r *tableRepo) GetByID(_ context.Context, ownerID string, id int64) (*models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.find(ownerID, id)
	if i < 0 {
		return nil, itemdomain.ErrItemNotFound
	}
	row := r.rows[i]
	return &row, nil
}

func (r *tableRepo) Update(_ context.Context, ownerID string, id int64, p models.ItemPatch) (*models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.find(ownerID, id)
	if i < 0 {
		return nil, itemdomain.ErrItemNotWritten
	}
	row := &r.rows[i]
	if p.Name != nil {
		row.Name = *p.Name
	}
	if p.Quantity != nil {
		row.Quantity = *p.Quantity
	}
	if p.Price != nil {
		row.Price = *p.Price
	}
	if p.Description != nil {
		row.Description = p.Description
	}
	if p.Category != nil {
		row.Category = p.Category
	}
	row.UpdatedAt = time.Now().UTC()
	out := *row
	return &out, nil
}

func (r *tableRepo) Delete(_ context.Context, ownerID string, id int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.find(ownerID, id)
	if i < 0 {
		return 0, nil
	}
	r.rows = append(r.rows[:i], r.rows[i+1:]...)
	return 1, nil
}

var tokens = map[string]auth.Identity{
	"token-a": {ID: "userA", Email: "a@example.com"},
	"token-b": {ID: "userB", Email: "b@example.com"},
}

func newAPI() http.Handler {
	verifier := auth.VerifierFunc(func(_ context.Context, token string) (auth.Identity, error) {
		id, ok := tokens[token]
		if !ok {
			return auth.Identity{}, auth.ErrUnauthenticated
		}
		return id, nil
	})
	svc := appsvcs.NewItemService(&tableRepo{}, logger.Nop())

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		Routes(r, svc, verifier, logger.Nop(), false)
	})
	return r
}

func call(t *testing.T, h http.Handler, token, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestItemRoutes_WidgetScenario(t *testing.T) {
	h := newAPI()

	rr := call(t, h, "token-a", http.MethodPost, "/api/items", `{"name":"Widget","quantity":10,"price":2.5}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rr.Code, rr.Body)
	}
	var created handlers.ItemResponse
	if err := json.NewDecoder(rr.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.ID != 1 || created.OwnerID != "userA" || created.Quantity != 10 || created.Price != 2.5 {
		t.Fatalf("unexpected item: %+v", created)
	}

	foreign := call(t, h, "token-b", http.MethodGet, "/api/items/1", "")
	missing := call(t, h, "token-b", http.MethodGet, "/api/items/999", "")
	if foreign.Code != http.StatusNotFound || missing.Code != http.StatusNotFound {
		t.Fatalf("expected 404s, got %d and %d", foreign.Code, missing.Code)
	}
	if foreign.Body.String() != missing.Body.String() {
		t.Errorf("foreign and missing bodies differ: %q vs %q", foreign.Body, missing.Body)
	}

	rr = call(t, h, "token-a", http.MethodPut, "/api/items/1", `{"quantity":3}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rr.Code, rr.Body)
	}
	var updated handlers.ItemResponse
	if err := json.NewDecoder(rr.Body).Decode(&updated); err != nil {
		t.Fatal(err)
	}
	if updated.ID != 1 || updated.Quantity != 3 || updated.Price != 2.5 {
		t.Fatalf("unexpected update: %+v", updated)
	}

	if rr := call(t, h, "token-b", http.MethodGet, "/api/items", ""); strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Errorf("userB list leaked: %s", rr.Body)
	}

	rr = call(t, h, "token-a", http.MethodDelete, "/api/items/1", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), handlers.ItemDeletedMessage) {
		t.Fatalf("delete: got %d %s", rr.Code, rr.Body)
	}

	if rr := call(t, h, "token-a", http.MethodGet, "/api/items/1", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", rr.Code)
	}
}

func TestItemRoutes_Authentication(t *testing.T) {
	h := newAPI()

	tests := []struct {
		name  string
		token string
	}{
		{"missing header", ""},
		{"unknown token", "token-x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := call(t, h, tt.token, http.MethodGet, "/api/items", "")
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rr.Code)
			}
			if rr.Header().Get("WWW-Authenticate") != "Bearer" {
				t.Error("expected Bearer challenge")
			}
		})
	}
}

func TestItemRoutes_EmptyPatchLeavesRecord(t *testing.T) {
	h := newAPI()
	call(t, h, "token-a", http.MethodPost, "/api/items", `{"name":"Widget","quantity":1,"price":1}`)
	before := call(t, h, "token-a", http.MethodGet, "/api/items/1", "").Body.String()

	if rr := call(t, h, "token-a", http.MethodPut, "/api/items/1", `{}`); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}

	after := call(t, h, "token-a", http.MethodGet, "/api/items/1", "").Body.String()
	if before != after {
		t.Errorf("record changed: %s -> %s", before, after)
	}
}
