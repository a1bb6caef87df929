package category

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	errors "github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/core/events"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type RepositoryAPI interface {
	Create(ctx context.Context, c *Category) error
	FindByID(ctx context.Context, id string) (*Category, error)
	FindAllByOwner(ctx context.Context, userID string, categoryType *Type) ([]*Category, error)
	FindByIDsForOwner(ctx context.Context, userID string, ids []string) ([]*Category, error)
	ExistsByOwnerNameType(ctx context.Context, userID, name string, categoryType Type, excludeID string) (bool, error)
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id string) error
	CountExpenses(ctx context.Context, categoryID string) (int64, error)
	CountByOwner(ctx context.Context, userID string, categoryType *Type) (int64, error)
}

type Service struct {
	repo      RepositoryAPI
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) Create(ctx context.Context, userID string, dto CreateCategoryDTO) (*Category, error) {
	dto.Normalize()
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	categoryType := Type(dto.Type)
	exists, err := s.repo.ExistsByOwnerNameType(ctx, userID, dto.Name, categoryType, "")
	if err != nil {
		s.logger.Error("failed to check category uniqueness", "user_id", userID, "error", err)
		return nil, errors.NewInternalError("failed to create category", err)
	}
	if exists {
		return nil, errors.ErrCategoryExists
	}

	c := &Category{
		ID:     uuid.NewString(),
		Name:   dto.Name,
		Type:   categoryType,
		UserID: userID,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		if stderrors.Is(err, ErrDuplicate) {
			return nil, errors.ErrCategoryExists
		}
		s.logger.Error("failed to create category", "user_id", userID, "error", err)
		return nil, errors.NewInternalError("failed to create category", err)
	}

	s.publish(ctx, events.EventTypeCategoryCreated, c)
	s.logger.Info("category created", "user_id", userID, "category_id", c.ID)
	return c, nil
}

// FindAll returns the user's categories ordered by type, then name.
// typeFilter may be empty.
func (s *Service) FindAll(ctx context.Context, userID string, typeFilter string) ([]*Category, error) {
	var filter *Type
	if typeFilter != "" {
		t := Type(typeFilter)
		if !t.Valid() {
			return nil, errors.NewValidationFieldError("type", "type must be one of: EXPENSE, INCOME", errors.ErrCodeValidationFailed)
		}
		filter = &t
	}

	categories, err := s.repo.FindAllByOwner(ctx, userID, filter)
	if err != nil {
		s.logger.Error("failed to list categories", "user_id", userID, "error", err)
		return nil, errors.NewInternalError("failed to list categories", err)
	}
	if categories == nil {
		categories = []*Category{}
	}
	return categories, nil
}

// FindOne tells a missing category (404) apart from someone else's (403).
func (s *Service) FindOne(ctx context.Context, id, userID string) (*Category, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get category", "category_id", id, "error", err)
		return nil, errors.NewInternalError("failed to get category", err)
	}
	if c == nil {
		return nil, errors.ErrCategoryNotFound
	}
	if !c.OwnedBy(userID) {
		return nil, errors.ErrCategoryForbidden
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, id, userID string, dto UpdateCategoryDTO) (*Category, error) {
	dto.Normalize()
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	c, err := s.FindOne(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if !dto.TouchesIdentity() {
		return c, nil
	}

	name, categoryType := c.Name, c.Type
	if dto.Name != nil {
		name = *dto.Name
	}
	if dto.Type != nil {
		categoryType = Type(*dto.Type)
	}

	exists, err := s.repo.ExistsByOwnerNameType(ctx, userID, name, categoryType, c.ID)
	if err != nil {
		s.logger.Error("failed to check category uniqueness", "category_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update category", err)
	}
	if exists {
		return nil, errors.ErrCategoryExists
	}

	c.Name = name
	c.Type = categoryType
	if err := s.repo.Update(ctx, c); err != nil {
		if stderrors.Is(err, ErrDuplicate) {
			return nil, errors.ErrCategoryExists
		}
		s.logger.Error("failed to update category", "category_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update category", err)
	}

	s.publish(ctx, events.EventTypeCategoryUpdated, c)
	return c, nil
}

// Remove deletes a category that no expense references.
func (s *Service) Remove(ctx context.Context, id, userID string) (*DeleteResult, error) {
	c, err := s.FindOne(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.CountExpenses(ctx, c.ID)
	if err != nil {
		s.logger.Error("failed to count category expenses", "category_id", id, "error", err)
		return nil, errors.NewInternalError("failed to delete category", err)
	}
	if count > 0 {
		return nil, errors.ErrCategoryInUse
	}

	if err := s.repo.Delete(ctx, c.ID); err != nil {
		s.logger.Error("failed to delete category", "category_id", id, "error", err)
		return nil, errors.NewInternalError("failed to delete category", err)
	}

	s.publish(ctx, events.EventTypeCategoryDeleted, c)
	return &DeleteResult{Message: "Category deleted successfully"}, nil
}

// GetStats counts the user's categories in total and per type.
func (s *Service) GetStats(ctx context.Context, userID string) (*Stats, error) {
	var stats Stats
	expenseType, incomeType := TypeExpense, TypeIncome

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.Total, err = s.repo.CountByOwner(gctx, userID, nil)
		return err
	})
	g.Go(func() (err error) {
		stats.Expense, err = s.repo.CountByOwner(gctx, userID, &expenseType)
		return err
	})
	g.Go(func() (err error) {
		stats.Income, err = s.repo.CountByOwner(gctx, userID, &incomeType)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("failed to count categories", "user_id", userID, "error", err)
		return nil, errors.NewInternalError("failed to get category stats", err)
	}
	return &stats, nil
}

func (s *Service) publish(ctx context.Context, eventType string, c *Category) {
	event := events.NewCategoryEvent(eventType, c.UserID, c.ID, c.Name, string(c.Type))
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", "event_type", eventType, "error", fmt.Errorf("category %s: %w", c.ID, err))
	}
}
