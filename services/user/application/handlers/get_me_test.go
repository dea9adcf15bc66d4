package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ghuser/stockhub/pkg/auth"
)

func TestGetMe(t *testing.T) {
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		identity    *auth.Identity
		wantStatus  int
		wantCreated bool
	}{
		{"remote verifier identity", &auth.Identity{ID: "u1", Email: "u1@example.com", CreatedAt: created}, http.StatusOK, true},
		{"local jwt identity", &auth.Identity{ID: "u2", Email: "u2@example.com"}, http.StatusOK, false},
		{"no identity", nil, http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/users/me", http.NoBody)
			if tt.identity != nil {
				req = req.WithContext(auth.WithIdentity(req.Context(), *tt.identity))
			}
			rr := httptest.NewRecorder()
			NewGetMeHandler().Execute(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rr.Code)
			}
			if tt.identity == nil {
				return
			}

			var body map[string]any
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["id"] != tt.identity.ID || body["email"] != tt.identity.Email {
				t.Errorf("unexpected body: %v", body)
			}
			if got := body["created_at"] != nil; got != tt.wantCreated {
				t.Errorf("created_at present=%v, want %v", got, tt.wantCreated)
			}
		})
	}
}
