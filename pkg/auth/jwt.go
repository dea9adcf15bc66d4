package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// supabaseAudience is the aud claim Supabase puts on signed-in user tokens.
const supabaseAudience = "authenticated"

// JWTVerifier validates Supabase access tokens locally with the project's
// HS256 secret instead of calling the Auth server. Tokens carry no account
// creation time, so Identity.CreatedAt is always zero.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a verifier for tokens signed with secret.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

type supabaseClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Verify implements Verifier.
func (v *JWTVerifier) Verify(_ context.Context, tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, fmt.Errorf("%w: empty token", ErrUnauthenticated)
	}

	token, err := jwt.ParseWithClaims(tokenString, &supabaseClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	},
		jwt.WithAudience(supabaseAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: parse token: %w", ErrUnauthenticated, err)
	}

	claims, ok := token.Claims.(*supabaseClaims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("%w: invalid token claims", ErrUnauthenticated)
	}
	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}

	return Identity{ID: claims.Subject, Email: claims.Email}, nil
}
