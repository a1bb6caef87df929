package expense

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/category"
	"github.com/frahmantamala/expense-tracker/internal/core/common/validation"
	"github.com/frahmantamala/expense-tracker/internal/core/events"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type RepositoryAPI interface {
	Create(ctx context.Context, e *Expense) error
	FindByID(ctx context.Context, id string) (*Expense, error)
	FindByOwnerAndFilters(ctx context.Context, filter Filter, sort Sort, page PageRequest) ([]*Expense, error)
	CountByOwnerAndFilters(ctx context.Context, filter Filter) (int64, error)
	AggregateByOwnerAndFilters(ctx context.Context, filter Filter) (Aggregate, error)
	GroupByCategory(ctx context.Context, filter Filter) ([]CategoryTotal, error)
	Update(ctx context.Context, e *Expense) error
	Delete(ctx context.Context, id string) error
}

// CategoryLookup is the part of the category store the expense service needs.
type CategoryLookup interface {
	FindByID(ctx context.Context, id string) (*category.Category, error)
	FindByIDsForOwner(ctx context.Context, userID string, ids []string) ([]*category.Category, error)
}

type Service struct {
	repo       RepositoryAPI
	categories CategoryLookup
	publisher  events.Publisher
	location   *time.Location
	now        func() time.Time
	logger     *slog.Logger
}

// NewService builds the expense service. loc decides where "this month"
// starts and ends for GetStats; nil means UTC.
func NewService(repo RepositoryAPI, categories CategoryLookup, publisher events.Publisher, loc *time.Location, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:       repo,
		categories: categories,
		publisher:  publisher,
		location:   loc,
		now:        time.Now,
		logger:     logger,
	}
}

// WithClock replaces the time source used for the current month.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Create(ctx context.Context, userID string, dto CreateExpenseDTO) (*Expense, error) {
	e, appErr := dto.Validate()
	if appErr != nil {
		return nil, appErr
	}

	c, err := s.ownedCategory(ctx, userID, e.CategoryID)
	if err != nil {
		return nil, err
	}

	e.ID = uuid.NewString()
	e.UserID = userID
	if err := s.repo.Create(ctx, e); err != nil {
		s.logger.Error("failed to create expense", "user_id", userID, "error", err)
		return nil, errors.NewInternalError("failed to create expense", err)
	}
	e.Category = c

	s.publish(ctx, events.EventTypeExpenseCreated, e)
	s.logger.Info("expense created", "user_id", userID, "expense_id", e.ID)
	return e, nil
}

func (s *Service) FindAll(ctx context.Context, userID string, query ListQuery) (*ListResult, error) {
	filter, sort, page, appErr := query.Normalize(userID)
	if appErr != nil {
		return nil, appErr
	}

	var (
		items []*Expense
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		items, err = s.repo.FindByOwnerAndFilters(gctx, filter, sort, page)
		return err
	})
	g.Go(func() (err error) {
		total, err = s.repo.CountByOwnerAndFilters(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to list expenses", "user_id", userID, "error", err)
		return nil, errors.NewInternalError("failed to list expenses", err)
	}

	if items == nil {
		items = []*Expense{}
	}
	return &ListResult{
		Data:       items,
		Pagination: NewPagination(page.Page, page.Limit, total),
	}, nil
}

// FindOne tells a missing expense (404) apart from someone else's (403).
func (s *Service) FindOne(ctx context.Context, id, userID string) (*Expense, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get expense", "expense_id", id, "error", err)
		return nil, errors.NewInternalError("failed to get expense", err)
	}
	if e == nil {
		return nil, errors.ErrExpenseNotFound
	}
	if !e.OwnedBy(userID) {
		return nil, errors.ErrExpenseForbidden
	}
	return e, nil
}

func (s *Service) Update(ctx context.Context, id, userID string, dto UpdateExpenseDTO) (*Expense, error) {
	patch, appErr := dto.Validate()
	if appErr != nil {
		return nil, appErr
	}

	e, err := s.FindOne(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if patch.CategoryID != nil && *patch.CategoryID != e.CategoryID {
		c, err := s.ownedCategory(ctx, userID, *patch.CategoryID)
		if err != nil {
			return nil, err
		}
		e.CategoryID = c.ID
		e.Category = c
	}
	if patch.Amount != nil {
		e.Amount = *patch.Amount
	}
	if patch.Date != nil {
		e.Date = *patch.Date
	}
	if patch.Note != nil || patch.ClearNote {
		e.Note = patch.Note
	}

	if err := s.repo.Update(ctx, e); err != nil {
		s.logger.Error("failed to update expense", "expense_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update expense", err)
	}

	s.publish(ctx, events.EventTypeExpenseUpdated, e)
	return e, nil
}

func (s *Service) Remove(ctx context.Context, id, userID string) (*DeleteResult, error) {
	e, err := s.FindOne(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, e.ID); err != nil {
		s.logger.Error("failed to delete expense", "expense_id", id, "error", err)
		return nil, errors.NewInternalError("failed to delete expense", err)
	}

	s.publish(ctx, events.EventTypeExpenseDeleted, e)
	return &DeleteResult{Message: "Expense deleted successfully"}, nil
}

// GetStats aggregates per category type over the optional date range and
// over the current month. The month figures ignore the range.
func (s *Service) GetStats(ctx context.Context, userID string, startDate, endDate *time.Time) (*Stats, error) {
	if appErr := validation.DateRange(startDate, endDate); appErr != nil {
		return nil, appErr
	}

	base := Filter{UserID: userID, StartDate: dateOnly(startDate), EndDate: dateOnly(endDate)}
	first, last := MonthWindow(s.now(), s.location)
	month := Filter{UserID: userID, StartDate: &first, EndDate: &last}

	var in StatsInput
	g, gctx := errgroup.WithContext(ctx)
	aggregate := func(dst *Aggregate, f Filter, t category.Type) {
		f.CategoryType = &t
		g.Go(func() (err error) {
			*dst, err = s.repo.AggregateByOwnerAndFilters(gctx, f)
			return err
		})
	}
	aggregate(&in.Income, base, category.TypeIncome)
	aggregate(&in.Expense, base, category.TypeExpense)
	aggregate(&in.ThisMonthIncome, month, category.TypeIncome)
	aggregate(&in.ThisMonthExpense, month, category.TypeExpense)

	if err := g.Wait(); err != nil {
		s.logger.Error("failed to aggregate expenses", "user_id", userID, "error", err)
		return nil, errors.NewInternalError("failed to get expense stats", err)
	}

	stats := BuildStats(in)
	return &stats, nil
}

// GetByCategory sums expenses per category, largest total first.
func (s *Service) GetByCategory(ctx context.Context, userID string, startDate, endDate *time.Time) ([]CategoryBreakdown, error) {
	if appErr := validation.DateRange(startDate, endDate); appErr != nil {
		return nil, appErr
	}

	totals, err := s.repo.GroupByCategory(ctx, Filter{
		UserID:    userID,
		StartDate: dateOnly(startDate),
		EndDate:   dateOnly(endDate),
	})
	if err != nil {
		s.logger.Error("failed to group expenses", "user_id", userID, "error", err)
		return nil, errors.NewInternalError("failed to get expenses by category", err)
	}

	ids := make([]string, 0, len(totals))
	for _, t := range totals {
		ids = append(ids, t.CategoryID)
	}
	categories, err := s.categories.FindByIDsForOwner(ctx, userID, ids)
	if err != nil {
		s.logger.Error("failed to resolve categories", "user_id", userID, "error", err)
		return nil, errors.NewInternalError("failed to get expenses by category", err)
	}

	return BuildBreakdown(totals, categories), nil
}

// ownedCategory does not say whether the category is missing or foreign.
func (s *Service) ownedCategory(ctx context.Context, userID, categoryID string) (*category.Category, error) {
	c, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		s.logger.Error("failed to get category", "category_id", categoryID, "error", err)
		return nil, errors.NewInternalError("failed to check category", err)
	}
	if c == nil || !c.OwnedBy(userID) {
		return nil, errors.ErrCategoryNotOwned
	}
	return c, nil
}

func (s *Service) publish(ctx context.Context, eventType string, e *Expense) {
	event := events.NewExpenseEvent(eventType, e.UserID, e.ID, e.CategoryID, e.Amount.StringFixed(2))
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", "event_type", eventType, "error", fmt.Errorf("expense %s: %w", e.ID, err))
	}
}
