package models

// TokenDTO is a signed token with its issue and expiry instants in
// milliseconds since the epoch.
type TokenDTO struct {
	Token          string `json:"token"`
	IssuedAt       int64  `json:"issuedAt"`
	ExpirationTime int64  `json:"expirationTime"`
}

// MaxAgeSeconds is the cookie lifetime matching the token lifetime.
func (t TokenDTO) MaxAgeSeconds() int {
	return int((t.ExpirationTime - t.IssuedAt) / 1000)
}

// AuthDTO is the pair of tokens issued at login.
type AuthDTO struct {
	AccessToken  TokenDTO `json:"accessToken"`
	RefreshToken TokenDTO `json:"refreshToken"`
}
