package expense

import (
	"time"

	categoryDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/category"
)

type Expense struct {
	ID          string                      `gorm:"column:id;primaryKey;type:varchar(36)"`
	AmountCents int64                       `gorm:"column:amount_cents;not null"`
	Note        *string                     `gorm:"column:note;size:500"`
	Date        time.Time                   `gorm:"column:date;type:date;not null;index"`
	CategoryID  string                      `gorm:"column:category_id;type:varchar(36);not null;index"`
	UserID      string                      `gorm:"column:user_id;type:varchar(36);not null;index"`
	Category    *categoryDatamodel.Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
	CreatedAt   time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}

func (Expense) TableName() string {
	return "expenses"
}

// CategoryTotal is one row of a GROUP BY category_id aggregate.
type CategoryTotal struct {
	CategoryID string `gorm:"column:category_id"`
	SumCents   int64  `gorm:"column:sum_cents"`
	Count      int64  `gorm:"column:count"`
}

// Aggregate is the COUNT/SUM pair of an aggregate query.
type Aggregate struct {
	Count    int64 `gorm:"column:count"`
	SumCents int64 `gorm:"column:sum_cents"`
}
