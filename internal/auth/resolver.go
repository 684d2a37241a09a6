package auth

import (
	"strings"

	"github.com/yourorg/imnotdurnk/internal/apperror"
)

// Resolver turns request tokens into the acting user.
type Resolver struct {
	tokens *Tokens
	store  *Store
}

func NewResolver(tokens *Tokens, store *Store) *Resolver {
	return &Resolver{tokens: tokens, store: store}
}

// AccessClaims validates an access token, rejecting logged-out ones.
func (r *Resolver) AccessClaims(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperror.Unauthorized("access token is missing")
	}
	if r.store.IsBlacklisted(token) {
		return nil, apperror.Unauthorized("access token has been logged out")
	}
	claims, err := r.tokens.Parse(token, TypeAccess)
	if err != nil {
		return nil, apperror.Unauthorized("access token is invalid")
	}
	return claims, nil
}

// UserID returns the user an access token was issued to.
func (r *Resolver) UserID(token string) (int64, error) {
	claims, err := r.AccessClaims(token)
	if err != nil {
		return 0, err
	}
	id, err := claims.UserID()
	if err != nil {
		return 0, apperror.Unauthorized("access token is invalid")
	}
	return id, nil
}
