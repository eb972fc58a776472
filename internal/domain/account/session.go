package account

import (
	"time"

	"github.com/facturasnap/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Session is a login issued to a user, keyed by the access token's JWT ID.
type Session struct {
	shared.BaseEntity
	UserID    uuid.UUID
	TokenID   string
	ExpiresAt time.Time
	UserAgent string
	ClientIP  string
}

// NewSession records a login.
func NewSession(userID uuid.UUID, tokenID string, expiresAt time.Time, userAgent, clientIP string) *Session {
	return &Session{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		TokenID:    tokenID,
		ExpiresAt:  expiresAt,
		UserAgent:  userAgent,
		ClientIP:   clientIP,
	}
}

// Expired reports whether the session's token has expired at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
