package auth

import (
	"strconv"
	"time"

	"github.com/yourorg/imnotdurnk/internal/cache"
)

// VerificationCodeTTL is how long an e-mailed sign-up code stays valid.
const VerificationCodeTTL = 5 * time.Minute

// Store keeps short-lived auth state in memory: sign-up verification codes,
// the current refresh token of each user and blacklisted access tokens.
type Store struct {
	codes     *cache.Cache[string]
	refresh   *cache.Cache[string]
	blacklist *cache.Cache[bool]
}

func NewStore() *Store {
	return &Store{
		codes:     cache.New[string](VerificationCodeTTL, time.Minute),
		refresh:   cache.New[string](0, 10*time.Minute),
		blacklist: cache.New[bool](0, 10*time.Minute),
	}
}

// SaveVerificationCode replaces any pending code for email.
func (s *Store) SaveVerificationCode(email, code string) {
	s.codes.Set(email, code)
}

// CheckVerificationCode consumes the code for email when it matches.
func (s *Store) CheckVerificationCode(email, code string) bool {
	stored, ok := s.codes.Get(email)
	if !ok || stored != code {
		return false
	}
	s.codes.Delete(email)
	return true
}

// SaveRefreshToken stores the refresh token of a user until ttl elapses.
func (s *Store) SaveRefreshToken(userID int64, token string, ttl time.Duration) {
	s.refresh.SetWithTTL(strconv.FormatInt(userID, 10), token, ttl)
}

// RefreshToken returns the stored refresh token of a user.
func (s *Store) RefreshToken(userID int64) (string, bool) {
	return s.refresh.Get(strconv.FormatInt(userID, 10))
}

// DeleteRefreshToken drops the stored refresh token of a user.
func (s *Store) DeleteRefreshToken(userID int64) {
	s.refresh.Delete(strconv.FormatInt(userID, 10))
}

// Blacklist rejects token until ttl elapses.
func (s *Store) Blacklist(token string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	s.blacklist.SetWithTTL(token, true, ttl)
}

// IsBlacklisted reports whether token was logged out.
func (s *Store) IsBlacklisted(token string) bool {
	return s.blacklist.Has(token)
}

// Stats reports the number of live entries per kind.
func (s *Store) Stats() map[string]cache.Stats {
	return map[string]cache.Stats{
		"verification_codes": s.codes.GetStats(),
		"refresh_tokens":     s.refresh.GetStats(),
		"blacklist":          s.blacklist.GetStats(),
	}
}

// Stop ends the background sweepers.
func (s *Store) Stop() {
	s.codes.Stop()
	s.refresh.Stop()
	s.blacklist.Stop()
}
