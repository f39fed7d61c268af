package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/chathub/internal"
	"github.com/frahmantamala/chathub/internal/core/events"
	"golang.org/x/crypto/bcrypt"
)

// RepositoryAPI loads what authentication needs from the user and role tables.
type RepositoryAPI interface {
	GetCredentials(ctx context.Context, email string) (*Credentials, error)
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	TouchLastLogin(ctx context.Context, userID string, at time.Time) error
}

// Service is the main auth service with dependencies
type Service struct {
	repo           RepositoryAPI
	tokenGenerator TokenGenerator
	revoker        Revoker
	publisher      events.Publisher
	logger         *slog.Logger
}

// NewService creates a new auth service. A nil revoker keeps revocations in memory.
func NewService(repo RepositoryAPI, tokenGen TokenGenerator, revoker Revoker, publisher events.Publisher, logger *slog.Logger) *Service {
	if revoker == nil {
		revoker = NewMemoryRevoker()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		revoker:        revoker,
		publisher:      publisher,
		logger:         logger,
	}
}

// Login validates credentials and returns the profile with a fresh token pair.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*LoginResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	creds, err := s.repo.GetCredentials(ctx, dto.Email)
	if err != nil {
		return nil, internal.NewInternalError("failed to load credentials", err)
	}
	if creds == nil {
		return nil, internal.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(dto.Password)); err != nil {
		return nil, internal.ErrInvalidCredentials
	}
	if !creds.IsActive {
		return nil, internal.ErrUserInactive
	}

	profile, err := s.loadProfile(ctx, creds.UserID)
	if err != nil {
		return nil, err
	}

	resp, err := s.issue(profile)
	if err != nil {
		return nil, err
	}

	if err := s.repo.TouchLastLogin(ctx, profile.ID, time.Now()); err != nil {
		s.logger.WarnContext(ctx, "failed to record last login", "user_id", profile.ID, "error", err)
	}
	s.publish(ctx, events.NewUserLoggedInEvent(profile.ID, profile.Email))

	s.logger.InfoContext(ctx, "user logged in", "user_id", profile.ID, "role", profile.Role)
	return resp, nil
}

// Refresh rotates the token pair; the presented refresh token cannot be used again.
func (s *Service) Refresh(ctx context.Context, dto RefreshTokenDTO) (*LoginResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	claims, err := s.tokenGenerator.ValidateRefreshToken(dto.RefreshToken)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNotRevoked(ctx, claims); err != nil {
		return nil, err
	}

	profile, err := s.loadProfile(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !profile.IsActive {
		return nil, internal.ErrUserInactive
	}

	if err := s.revoker.Revoke(ctx, claims.ID, claims.Remaining()); err != nil {
		return nil, internal.NewInternalError("failed to rotate refresh token", err)
	}
	return s.issue(profile)
}

// Logout revokes the access token and, when given, the refresh token.
func (s *Service) Logout(ctx context.Context, accessToken string, dto LogoutDTO) error {
	claims, err := s.tokenGenerator.ValidateAccessToken(accessToken)
	if err != nil {
		return err
	}
	if err := s.revoker.Revoke(ctx, claims.ID, claims.Remaining()); err != nil {
		return internal.NewInternalError("failed to revoke token", err)
	}

	if dto.RefreshToken != "" {
		refresh, err := s.tokenGenerator.ValidateRefreshToken(dto.RefreshToken)
		if err == nil && refresh.UserID == claims.UserID {
			if err := s.revoker.Revoke(ctx, refresh.ID, refresh.Remaining()); err != nil {
				return internal.NewInternalError("failed to revoke token", err)
			}
		}
	}

	s.logger.InfoContext(ctx, "user logged out", "user_id", claims.UserID)
	return nil
}

// Authenticate resolves a bearer access token to the acting principal.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*Profile, error) {
	claims, err := s.tokenGenerator.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNotRevoked(ctx, claims); err != nil {
		return nil, err
	}

	profile, err := s.loadProfile(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !profile.IsActive {
		return nil, internal.ErrUserInactive
	}
	return profile, nil
}

func (s *Service) Me(ctx context.Context, userID string) (*Profile, error) {
	return s.loadProfile(ctx, userID)
}

func (s *Service) loadProfile(ctx context.Context, userID string) (*Profile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if profile == nil {
		return nil, internal.ErrInvalidToken
	}
	return profile, nil
}

func (s *Service) ensureNotRevoked(ctx context.Context, claims *Claims) error {
	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return internal.NewInternalError("failed to check token revocation", err)
	}
	if revoked {
		return internal.ErrTokenRevoked
	}
	return nil
}

func (s *Service) issue(profile *Profile) (*LoginResponse, error) {
	accessToken, expiresAt, err := s.tokenGenerator.GenerateAccessToken(profile.ID, profile.Email)
	if err != nil {
		return nil, internal.NewInternalError("failed to generate access token", err)
	}

	refreshToken, _, err := s.tokenGenerator.GenerateRefreshToken(profile.ID, profile.Email)
	if err != nil {
		return nil, internal.NewInternalError("failed to generate refresh token", err)
	}

	return &LoginResponse{
		User:         profile,
		Token:        accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
