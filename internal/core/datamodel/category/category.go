package category

import "time"

type Category struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(36)"`
	Name      string    `gorm:"column:name;size:50;not null;uniqueIndex:idx_categories_user_name_type,priority:2"`
	Type      string    `gorm:"column:type;size:16;not null;uniqueIndex:idx_categories_user_name_type,priority:3"`
	UserID    string    `gorm:"column:user_id;type:varchar(36);not null;index;uniqueIndex:idx_categories_user_name_type,priority:1"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Category) TableName() string {
	return "categories"
}
