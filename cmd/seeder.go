package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/auth"
	"github.com/frahmantamala/expense-tracker/internal/category"
	categoryDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/category"
	expenseDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-tracker/internal/expense"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const (
	demoEmail    = "demo@expense-tracker.local"
	demoPassword = "Demo12345"
)

var clearData bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Create a demo user with categories and a few months of entries, for development.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := initializeDependencies()
		if err != nil {
			return err
		}
		defer deps.close()

		ctx := context.Background()
		app, err := newApplication(ctx, deps.Config, deps.Gorm, deps.DB, deps.Logger)
		if err != nil {
			return err
		}

		if err := seed(ctx, app, deps.Gorm, clearData, time.Now()); err != nil {
			return err
		}
		return app.Bus.Wait(ctx)
	},
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear the demo user's data before seeding")
}

type seedCategory struct {
	Name string
	Type category.Type
}

var demoCategories = []seedCategory{
	{"Salary", category.TypeIncome},
	{"Freelance", category.TypeIncome},
	{"Food", category.TypeExpense},
	{"Transport", category.TypeExpense},
	{"Rent", category.TypeExpense},
	{"Entertainment", category.TypeExpense},
}

type seedEntry struct {
	Category  string
	Amount    string
	Note      string
	MonthsAgo int
	Day       int
}

var demoEntries = []seedEntry{
	{"Salary", "4200.00", "Monthly salary", 0, 1},
	{"Rent", "1350.00", "Apartment", 0, 2},
	{"Food", "82.45", "Groceries", 0, 5},
	{"Transport", "45.00", "Metro card", 0, 6},
	{"Entertainment", "19.99", "Streaming", 0, 8},
	{"Freelance", "650.00", "Logo design", 0, 12},
	{"Salary", "4200.00", "Monthly salary", 1, 1},
	{"Rent", "1350.00", "Apartment", 1, 2},
	{"Food", "64.10", "Groceries", 1, 9},
	{"Food", "27.80", "Dinner out", 1, 15},
	{"Salary", "4200.00", "Monthly salary", 2, 1},
	{"Rent", "1350.00", "Apartment", 2, 2},
	{"Transport", "12.50", "Taxi", 2, 20},
}

// seed creates the demo user unless it exists, then its categories and
// entries through the services.
func seed(ctx context.Context, app *application, db *gorm.DB, clear bool, now time.Time) error {
	userID, err := demoUser(ctx, app)
	if err != nil {
		return err
	}

	if clear {
		if err := clearUserData(ctx, db, userID); err != nil {
			return err
		}
		fmt.Println("Cleared data of", demoEmail)
	}

	existing, err := app.Categories.FindAll(ctx, userID, "")
	if err != nil {
		return err
	}
	ids := make(map[string]string, len(demoCategories))
	for _, c := range existing {
		ids[c.Name] = c.ID
	}

	for _, sc := range demoCategories {
		if _, ok := ids[sc.Name]; ok {
			continue
		}
		c, err := app.Categories.Create(ctx, userID, category.CreateCategoryDTO{Name: sc.Name, Type: string(sc.Type)})
		if err != nil {
			return fmt.Errorf("seed category %s: %w", sc.Name, err)
		}
		ids[sc.Name] = c.ID
	}

	if len(existing) > 0 && !clear {
		fmt.Println("Demo data already present; use --clear to reseed entries")
		return nil
	}

	for _, e := range demoEntries {
		note := e.Note
		date := monthsBefore(now, e.MonthsAgo, e.Day)
		_, err := app.Expenses.Create(ctx, userID, expense.CreateExpenseDTO{
			Amount:     decimal.RequireFromString(e.Amount),
			Note:       &note,
			Date:       date.Format("2006-01-02"),
			CategoryID: ids[e.Category],
		})
		if err != nil {
			return fmt.Errorf("seed entry %q: %w", e.Note, err)
		}
	}

	fmt.Printf("Seeded %d categories and %d entries for %s (password %s)\n",
		len(demoCategories), len(demoEntries), demoEmail, demoPassword)
	return nil
}

func demoUser(ctx context.Context, app *application) (string, error) {
	result, err := app.Auth.Register(ctx, auth.RegisterDTO{
		Email:           demoEmail,
		Password:        demoPassword,
		ConfirmPassword: demoPassword,
	})
	if err == nil {
		fmt.Println("Seeded demo user:", demoEmail)
		return result.User.ID, nil
	}
	if !errors.Is(err, internal.ErrEmailTaken) {
		return "", fmt.Errorf("seed demo user: %w", err)
	}

	result, err = app.Auth.Login(ctx, auth.LoginDTO{Email: demoEmail, Password: demoPassword})
	if err != nil {
		return "", fmt.Errorf("demo user exists with another password: %w", err)
	}
	return result.User.ID, nil
}

func clearUserData(ctx context.Context, db *gorm.DB, userID string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&expenseDatamodel.Expense{}).Error; err != nil {
			return fmt.Errorf("clear expenses: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&categoryDatamodel.Category{}).Error; err != nil {
			return fmt.Errorf("clear categories: %w", err)
		}
		return nil
	})
}

// monthsBefore returns day of the month that lies n months before now,
// clamped so it never runs into the following month.
func monthsBefore(now time.Time, n, day int) time.Time {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -n, 0)
	last := first.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	return first.AddDate(0, 0, day-1)
}
