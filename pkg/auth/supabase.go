package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const supabaseUserPath = "/auth/v1/user"

// SupabaseVerifier asks the Supabase Auth server who a token belongs to.
// Revoked and expired tokens are rejected by the server itself.
type SupabaseVerifier struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewSupabaseVerifier returns a verifier for the project at baseURL. apiKey is
// sent as the apikey header. A nil client uses a client with a 5 s timeout.
func NewSupabaseVerifier(baseURL, apiKey string, client *http.Client) *SupabaseVerifier {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &SupabaseVerifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
	}
}

// Verify implements Verifier.
func (v *SupabaseVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, fmt.Errorf("%w: empty token", ErrUnauthenticated)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+supabaseUserPath, http.NoBody)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: build request: %w", ErrUnauthenticated, err)
	}
	req.Header.Set("apikey", v.apiKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: supabase unreachable: %w", ErrUnauthenticated, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return Identity{}, fmt.Errorf("%w: supabase returned %d", ErrUnauthenticated, resp.StatusCode)
	}

	var id Identity
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&id); err != nil {
		return Identity{}, fmt.Errorf("%w: decode user: %w", ErrUnauthenticated, err)
	}
	if id.ID == "" {
		return Identity{}, fmt.Errorf("%w: user has no id", ErrUnauthenticated)
	}
	return id, nil
}
