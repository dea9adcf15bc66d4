package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/stockhub/pkg/auth"
	"github.com/ghuser/stockhub/pkg/errhttp"
	itemdomain "github.com/ghuser/stockhub/services/item/domain"
	"github.com/ghuser/stockhub/services/item/domain/models"
)

type stubService struct {
	create func(auth.Identity, models.ItemInput) (*models.Item, error)
	list   func(auth.Identity) ([]*models.Item, error)
	get    func(auth.Identity, int64) (*models.Item, error)
	update func(auth.Identity, int64, models.ItemPatch) (*models.Item, error)
	delete func(auth.Identity, int64) error
	called bool
}

func (s *stubService) Create(_ context.Context, c auth.Identity, in models.ItemInput) (*models.Item, error) {
	s.called = true
	return s.create(c, in)
}

func (s *stubService) List(_ context.Context, c auth.Identity) ([]*models.Item, error) {
	s.called = true
	return s.list(c)
}

func (s *stubService) GetByID(_ context.Context, c auth.Identity, id int64) (*models.Item, error) {
	s.called = true
	return s.get(c, id)
}

func (s *stubService) Update(_ context.Context, c auth.Identity, id int64, p models.ItemPatch) (*models.Item, error) {
	s.called = true
	return s.update(c, id, p)
}

func (s *stubService) Delete(_ context.Context, c auth.Identity, id int64) error {
	s.called = true
	return s.delete(c, id)
}

var testCaller = auth.Identity{ID: "userA", Email: "a@example.com"}

func sampleItem(id int64) *models.Item {
	ts := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	return &models.Item{ID: id, OwnerID: testCaller.ID, Name: "Widget", Quantity: 10, Price: 2.5, CreatedAt: ts, UpdatedAt: ts}
}

// newRouter mounts the handlers without the auth middleware and injects
// testCaller directly.
func newRouter(svc ItemService, isProduction bool) http.Handler {
	errs := errhttp.New(isProduction)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), testCaller)))
		})
	})
	r.Post("/items", NewCreateItemHandler(svc, errs).Execute)
	r.Get("/items", NewListItemsHandler(svc, errs).Execute)
	r.Get("/items/{id}", NewGetItemHandler(svc, errs).Execute)
	r.Put("/items/{id}", NewUpdateItemHandler(svc, errs).Execute)
	r.Delete("/items/{id}", NewDeleteItemHandler(svc, errs).Execute)
	return r
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return v
}

func TestCreateItem(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		var got models.ItemInput
		svc := &stubService{create: func(c auth.Identity, in models.ItemInput) (*models.Item, error) {
			if c.ID != testCaller.ID {
				t.Errorf("caller: got %q", c.ID)
			}
			got = in
			return sampleItem(1), nil
		}}

		rr := do(newRouter(svc, false), http.MethodPost, "/items",
			`{"name":"Widget","quantity":10,"price":2.5,"owner_id":"userB"}`)

		if rr.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body)
		}
		if got.Name != "Widget" || got.Quantity != 10 || got.Price != 2.5 {
			t.Errorf("unexpected input: %+v", got)
		}
		resp := decode[ItemResponse](t, rr)
		if resp.ID != 1 || resp.OwnerID != testCaller.ID {
			t.Errorf("unexpected response: %+v", resp)
		}
	})

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantField  string
	}{
		{"negative quantity", `{"name":"Widget","quantity":-1,"price":1}`, http.StatusUnprocessableEntity, "quantity"},
		{"quantity beyond int4", `{"name":"Widget","quantity":3000000000,"price":1}`, http.StatusUnprocessableEntity, "quantity"},
		{"empty name", `{"name":"","quantity":1,"price":1}`, http.StatusUnprocessableEntity, "name"},
		{"missing quantity", `{"name":"Widget","price":1}`, http.StatusUnprocessableEntity, "quantity"},
		{"negative price", `{"name":"Widget","quantity":1,"price":-0.5}`, http.StatusUnprocessableEntity, "price"},
		{"long category", `{"name":"Widget","quantity":1,"price":1,"category":"` + strings.Repeat("c", 51) + `"}`, http.StatusUnprocessableEntity, "category"},
		{"wrong type", `{"name":"Widget","quantity":"ten","price":1}`, http.StatusUnprocessableEntity, "quantity"},
		{"malformed json", `{"name":`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{}
			rr := do(newRouter(svc, false), http.MethodPost, "/items", tt.body)
			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body)
			}
			if svc.called {
				t.Error("service called for rejected request")
			}
			if tt.wantField != "" {
				body := decode[map[string]any](t, rr)
				fields, _ := body["fields"].(map[string]any)
				if _, ok := fields[tt.wantField]; !ok {
					t.Errorf("expected field error for %q, got %v", tt.wantField, body)
				}
			}
		})
	}

	t.Run("zero price accepted", func(t *testing.T) {
		svc := &stubService{create: func(auth.Identity, models.ItemInput) (*models.Item, error) {
			return sampleItem(1), nil
		}}
		rr := do(newRouter(svc, false), http.MethodPost, "/items", `{"name":"Free","quantity":0,"price":0}`)
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body)
		}
	})
}

func TestListItems(t *testing.T) {
	t.Run("empty list is an empty array", func(t *testing.T) {
		svc := &stubService{list: func(auth.Identity) ([]*models.Item, error) { return []*models.Item{}, nil }}
		rr := do(newRouter(svc, false), http.MethodGet, "/items", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if got := strings.TrimSpace(rr.Body.String()); got != "[]" {
			t.Errorf("expected [], got %s", got)
		}
	})

	t.Run("items", func(t *testing.T) {
		svc := &stubService{list: func(auth.Identity) ([]*models.Item, error) {
			return []*models.Item{sampleItem(1), sampleItem(2)}, nil
		}}
		rr := do(newRouter(svc, false), http.MethodGet, "/items", "")
		if items := decode[[]ItemResponse](t, rr); len(items) != 2 {
			t.Errorf("expected 2 items, got %d", len(items))
		}
	})
}

func TestGetItem(t *testing.T) {
	notFound := func(auth.Identity, int64) (*models.Item, error) {
		return nil, itemdomain.ErrItemNotFound
	}

	tests := []struct {
		name       string
		path       string
		get        func(auth.Identity, int64) (*models.Item, error)
		wantStatus int
	}{
		{"found", "/items/7", func(_ auth.Identity, id int64) (*models.Item, error) { return sampleItem(id), nil }, http.StatusOK},
		{"not found", "/items/7", notFound, http.StatusNotFound},
		{"non-numeric id", "/items/abc", notFound, http.StatusNotFound},
		{"overflowing id", "/items/99999999999999999999", notFound, http.StatusNotFound},
		{"store failure", "/items/7", func(auth.Identity, int64) (*models.Item, error) {
			return nil, errors.Join(itemdomain.ErrStore, errors.New("connection reset"))
		}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(newRouter(&stubService{get: tt.get}, false), http.MethodGet, tt.path, "")
			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body)
			}
		})
	}

	t.Run("not found bodies are identical", func(t *testing.T) {
		svc := &stubService{get: func(_ auth.Identity, id int64) (*models.Item, error) {
			if id == 1 {
				return nil, errors.Join(errors.New("get item"), itemdomain.ErrItemNotFound)
			}
			return nil, itemdomain.ErrItemNotFound
		}}
		h := newRouter(svc, false)
		a := do(h, http.MethodGet, "/items/1", "").Body.String()
		b := do(h, http.MethodGet, "/items/2", "").Body.String()
		c := do(h, http.MethodGet, "/items/x", "").Body.String()
		if a != b || b != c {
			t.Errorf("bodies differ: %q %q %q", a, b, c)
		}
	})
}

func TestUpdateItem(t *testing.T) {
	t.Run("partial patch", func(t *testing.T) {
		var got models.ItemPatch
		svc := &stubService{update: func(_ auth.Identity, id int64, p models.ItemPatch) (*models.Item, error) {
			got = p
			item := sampleItem(id)
			item.Quantity = *p.Quantity
			return item, nil
		}}
		rr := do(newRouter(svc, false), http.MethodPut, "/items/1", `{"quantity":3}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body)
		}
		if got.Quantity == nil || *got.Quantity != 3 || got.Name != nil || got.Price != nil {
			t.Errorf("unexpected patch: %+v", got)
		}
		if resp := decode[ItemResponse](t, rr); resp.Quantity != 3 {
			t.Errorf("quantity: got %d", resp.Quantity)
		}
	})

	t.Run("empty patch is a validation error", func(t *testing.T) {
		svc := &stubService{update: func(auth.Identity, int64, models.ItemPatch) (*models.Item, error) {
			return nil, itemdomain.ErrNoFieldsToUpdate
		}}
		rr := do(newRouter(svc, false), http.MethodPut, "/items/1", `{}`)
		if rr.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "no valid fields to update") {
			t.Errorf("unexpected body: %s", rr.Body)
		}
	})

	t.Run("invalid field", func(t *testing.T) {
		svc := &stubService{}
		rr := do(newRouter(svc, false), http.MethodPut, "/items/1", `{"quantity":-1}`)
		if rr.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rr.Code)
		}
		if svc.called {
			t.Error("service called for invalid patch")
		}
	})

	t.Run("quantity beyond int4", func(t *testing.T) {
		svc := &stubService{}
		rr := do(newRouter(svc, false), http.MethodPut, "/items/1", `{"quantity":2147483648}`)
		if rr.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d: %s", rr.Code, rr.Body)
		}
		if svc.called {
			t.Error("service called for out-of-range quantity")
		}
	})

	t.Run("non-numeric id", func(t *testing.T) {
		svc := &stubService{}
		rr := do(newRouter(svc, false), http.MethodPut, "/items/abc", `{"quantity":1}`)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
	})

	t.Run("write lost is a server error", func(t *testing.T) {
		svc := &stubService{update: func(auth.Identity, int64, models.ItemPatch) (*models.Item, error) {
			return nil, itemdomain.ErrItemNotWritten
		}}
		rr := do(newRouter(svc, true), http.MethodPut, "/items/1", `{"name":"x"}`)
		if rr.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rr.Code)
		}
		if strings.Contains(rr.Body.String(), "write affected") {
			t.Errorf("production response leaked detail: %s", rr.Body)
		}
	})
}

func TestDeleteItem(t *testing.T) {
	t.Run("acknowledged", func(t *testing.T) {
		svc := &stubService{delete: func(auth.Identity, int64) error { return nil }}
		rr := do(newRouter(svc, false), http.MethodDelete, "/items/1", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		body := decode[map[string]string](t, rr)
		if body["message"] != ItemDeletedMessage {
			t.Errorf("unexpected body: %v", body)
		}
	})

	t.Run("not found", func(t *testing.T) {
		svc := &stubService{delete: func(auth.Identity, int64) error { return itemdomain.ErrItemNotFound }}
		rr := do(newRouter(svc, false), http.MethodDelete, "/items/1", "")
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
	})
}

func TestHandlers_RequireIdentity(t *testing.T) {
	errs := errhttp.New(false)
	svc := &stubService{}
	rr := httptest.NewRecorder()
	NewListItemsHandler(svc, errs).Execute(rr, httptest.NewRequest(http.MethodGet, "/items", http.NoBody))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if rr.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Error("expected Bearer challenge")
	}
	if svc.called {
		t.Error("service called without identity")
	}
}
