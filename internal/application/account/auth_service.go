// Package account implements registration, authentication, payment plans,
// the credit ledger and login sessions.
package account

import (
	"context"
	"errors"
	"time"

	"github.com/facturasnap/backend/internal/domain/account"
	"github.com/facturasnap/backend/internal/domain/shared"
	"github.com/facturasnap/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	errUserNotFound       = shared.NewDomainError("USER_NOT_FOUND", "No account exists for that email")
	errInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	errEmailTaken         = shared.NewDomainError("ALREADY_EXISTS", "Email is already registered")
)

// AuthService handles registration and the token lifecycle.
type AuthService struct {
	users      account.UserRepository
	plans      account.PaymentPlanRepository
	sessions   account.SessionRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users account.UserRepository,
	plans account.PaymentPlanRepository,
	sessions account.SessionRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		plans:      plans,
		sessions:   sessions,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
		now:        time.Now,
	}
}

// Register creates an account.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*account.User, error) {
	exists, err := s.users.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errEmailTaken
	}
	if input.PlanID != nil {
		if _, err := s.plans.FindByID(ctx, *input.PlanID); err != nil {
			return nil, err
		}
	}

	user, err := account.NewUser(account.NewUserParams{
		FirstName:      input.FirstName,
		MiddleName:     input.MiddleName,
		LastName:       input.LastName,
		SecondLastName: input.SecondLastName,
		Email:          input.Email,
		Password:       input.Password,
		PlanID:         input.PlanID,
	})
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

// Login verifies credentials, issues a token pair and records a session.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*TokenResult, *account.User, error) {
	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, errUserNotFound
		}
		return nil, nil, err
	}
	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, nil, errInvalidCredentials
	}

	tokens, err := s.issue(ctx, user, input.UserAgent, input.ClientIP)
	if err != nil {
		return nil, nil, err
	}

	user.RecordLogin(s.now())
	if err := s.users.Save(ctx, user); err != nil {
		s.logger.Error("Failed to record login", zap.Error(err))
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()))
	return tokens, user, nil
}

// Refresh exchanges a refresh token for a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken, userAgent, clientIP string) (*TokenResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
		}
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}
	if revoked, err := s.blacklist.IsRevoked(ctx, claims.ID); err != nil {
		return nil, err
	} else if revoked {
		return nil, shared.NewDomainError("TOKEN_REVOKED", "Refresh token has been revoked")
	}

	userID, err := claims.UserUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, errUserNotFound
	}

	tokens, err := s.issue(ctx, user, userAgent, clientIP)
	if err != nil {
		return nil, err
	}
	// A refresh token is single use.
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		s.logger.Warn("Failed to revoke used refresh token", zap.Error(err))
	}
	return tokens, nil
}

// Logout revokes the access token and removes its session.
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	ttl := input.ExpiresAt.Sub(s.now())
	if ttl > 0 {
		if err := s.blacklist.Revoke(ctx, input.TokenID, ttl); err != nil {
			return err
		}
	}
	if err := s.sessions.DeleteByTokenID(ctx, input.TokenID); err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	s.logger.Info("User logged out", zap.String("user_id", input.UserID.String()))
	return nil
}

// Me returns the user behind a token.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*account.User, error) {
	return s.users.FindByID(ctx, userID)
}

// ChangePassword replaces the user's password.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.ChangePassword(current, next); err != nil {
		return err
	}
	return s.users.Save(ctx, user)
}

// IsRevoked reports whether an access token id was revoked.
func (s *AuthService) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return s.blacklist.IsRevoked(ctx, tokenID)
}

func (s *AuthService) issue(ctx context.Context, user *account.User, userAgent, clientIP string) (*TokenResult, error) {
	pair, err := s.jwtService.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	session := account.NewSession(user.ID, pair.AccessTokenID, pair.AccessTokenExpiresAt, userAgent, clientIP)
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	return &TokenResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}, nil
}
