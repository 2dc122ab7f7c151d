package types

import "time"

// AuthSession is the persisted login state.
type AuthSession struct {
	User         User      `json:"user"`
	Token        string    `json:"token"`
	ExpiresAt    time.Time `json:"expiresAt"`
	RefreshToken string    `json:"refreshToken"`
}

// Valid reports whether the session has not expired at now.
func (s AuthSession) Valid(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}
