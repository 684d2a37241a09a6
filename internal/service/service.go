// Package service holds the business rules between the HTTP handlers and the
// repositories: token checks, input validation and persistence orchestration.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/yourorg/imnotdurnk/internal/apperror"
)

// dbTimeout bounds every repository call.
const dbTimeout = 5 * time.Second

// TokenResolver maps an access token to the acting user.
type TokenResolver interface {
	UserID(token string) (int64, error)
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, dbTimeout)
}

// notFoundOr turns sql.ErrNoRows into NotFound and anything else into an
// internal error.
func notFoundOr(err error, notFoundMsg, internalMsg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NotFound(notFoundMsg)
	}
	return internal(internalMsg, err)
}

func internal(msg string, err error) error {
	log.Printf("❌ %s: %v", msg, err)
	return apperror.Internal(msg, err)
}
