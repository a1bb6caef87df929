package user

import (
	"context"
	"log/slog"

	errors "github.com/frahmantamala/expense-tracker/internal"
)

// Repository is the credential store: the only place user rows are read or written.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, u *User) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// GetProfile returns the user behind an authenticated request.
func (s *Service) GetProfile(ctx context.Context, userID string) (*User, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to load user profile", "user_id", userID, "error", err)
		return nil, errors.NewInternalError("failed to load profile", err)
	}
	if u == nil {
		return nil, errors.ErrUserNotFound
	}
	return u, nil
}
