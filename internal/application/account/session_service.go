package account

import (
	"context"
	"time"

	"github.com/facturasnap/backend/internal/domain/account"
	"github.com/facturasnap/backend/internal/domain/shared"
	"github.com/facturasnap/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionService lists and ends a user's login sessions.
type SessionService struct {
	sessions  account.SessionRepository
	blacklist auth.TokenBlacklist
	logger    *zap.Logger
}

// NewSessionService creates a new SessionService
func NewSessionService(sessions account.SessionRepository, blacklist auth.TokenBlacklist, logger *zap.Logger) *SessionService {
	return &SessionService{sessions: sessions, blacklist: blacklist, logger: logger}
}

// List returns a page of the user's sessions.
func (s *SessionService) List(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]account.Session, int64, error) {
	return s.sessions.FindAllForUser(ctx, userID, filter)
}

// Delete ends a session and revokes its access token.
func (s *SessionService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	session, err := s.sessions.FindByIDForUser(ctx, userID, id)
	if err != nil {
		return err
	}
	if ttl := time.Until(session.ExpiresAt); ttl > 0 {
		if err := s.blacklist.Revoke(ctx, session.TokenID, ttl); err != nil {
			return err
		}
	}
	if err := s.sessions.DeleteForUser(ctx, userID, id); err != nil {
		return err
	}
	s.logger.Info("Session revoked", zap.String("session_id", id.String()))
	return nil
}
