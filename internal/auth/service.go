package auth

import (
	"context"
	stderrors "errors"
	"log/slog"

	errors "github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/core/events"
	"github.com/frahmantamala/expense-tracker/internal/user"
	"github.com/google/uuid"
)

// Service is the main auth service with dependencies
type Service struct {
	users     user.Repository
	tokens    TokenGenerator
	hasher    PasswordHasher
	publisher events.Publisher
	logger    *slog.Logger
}

// NewService creates a new auth service. publisher may be nil.
func NewService(users user.Repository, tokens TokenGenerator, hasher PasswordHasher, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		users:     users,
		tokens:    tokens,
		hasher:    hasher,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*AuthResult, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	existing, err := s.users.FindByEmail(ctx, dto.Email)
	if err != nil {
		s.logger.Error("failed to look up user by email", "error", err)
		return nil, errors.NewInternalError("failed to register user", err)
	}
	if existing != nil {
		return nil, errors.ErrEmailTaken
	}

	hash, err := s.hasher.Hash(dto.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, errors.NewInternalError("failed to register user", err)
	}

	u := &user.User{
		ID:           uuid.NewString(),
		Email:        dto.Email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if stderrors.Is(err, user.ErrEmailExists) {
			return nil, errors.ErrEmailTaken
		}
		s.logger.Error("failed to create user", "error", err)
		return nil, errors.NewInternalError("failed to register user", err)
	}

	pair, err := s.tokens.GenerateTokenPair(ctx, u.ID, u.Email)
	if err != nil {
		s.logger.Error("failed to issue tokens", "user_id", u.ID, "error", err)
		return nil, errors.NewInternalError("failed to issue tokens", err)
	}

	s.publish(ctx, events.NewUserRegistered(u.ID, u.Email))
	s.logger.Info("user registered", "user_id", u.ID)

	return &AuthResult{User: u, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// Login verifies credentials. Unknown email and wrong password return the
// same error so callers cannot tell which one failed.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*AuthResult, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	u, err := s.users.FindByEmail(ctx, dto.Email)
	if err != nil {
		s.logger.Error("failed to look up user by email", "error", err)
		return nil, errors.NewInternalError("failed to log in", err)
	}
	if u == nil {
		return nil, errors.ErrInvalidCredentials
	}

	if err := s.hasher.Compare(u.PasswordHash, dto.Password); err != nil {
		return nil, errors.ErrInvalidCredentials
	}

	pair, err := s.tokens.GenerateTokenPair(ctx, u.ID, u.Email)
	if err != nil {
		s.logger.Error("failed to issue tokens", "user_id", u.ID, "error", err)
		return nil, errors.NewInternalError("failed to issue tokens", err)
	}

	return &AuthResult{User: u, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// RefreshToken mints a new access token from a valid refresh token.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*AccessTokenResult, error) {
	claims, err := s.verifyRefreshToken(ctx, refreshToken)
	if err != nil {
		s.logger.Debug("refresh token rejected", "error", err)
		return nil, errors.ErrInvalidRefreshToken
	}

	accessToken, err := s.tokens.GenerateAccessToken(claims.UserID(), claims.Email)
	if err != nil {
		s.logger.Error("failed to issue access token", "user_id", claims.UserID(), "error", err)
		return nil, errors.NewInternalError("failed to issue tokens", err)
	}

	return &AccessTokenResult{AccessToken: accessToken}, nil
}

func (s *Service) verifyRefreshToken(ctx context.Context, refreshToken string) (*Claims, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, claims.UserID())
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, user.ErrNotFound
	}
	return claims, nil
}

// Authenticate resolves a bearer access token to the caller identity. The
// user must still exist.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (errors.AuthenticatedUser, error) {
	claims, err := s.tokens.ValidateAccessToken(accessToken)
	if err != nil {
		return errors.AuthenticatedUser{}, errors.ErrInvalidToken.WithCause(err)
	}

	u, err := s.users.FindByID(ctx, claims.UserID())
	if err != nil {
		s.logger.Error("failed to load token subject", "user_id", claims.UserID(), "error", err)
		return errors.AuthenticatedUser{}, errors.NewInternalError("failed to authenticate", err)
	}
	if u == nil {
		return errors.AuthenticatedUser{}, errors.ErrInvalidToken.WithCause(user.ErrNotFound)
	}

	return errors.AuthenticatedUser{ID: u.ID, Email: u.Email}, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
