package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeUserRegistered  = "user.registered"
	EventTypeCategoryCreated = "category.created"
	EventTypeCategoryUpdated = "category.updated"
	EventTypeCategoryDeleted = "category.deleted"
	EventTypeExpenseCreated  = "expense.created"
	EventTypeExpenseUpdated  = "expense.updated"
	EventTypeExpenseDeleted  = "expense.deleted"
)

// AllEventTypes lists every domain event the services publish.
var AllEventTypes = []string{
	EventTypeUserRegistered,
	EventTypeCategoryCreated,
	EventTypeCategoryUpdated,
	EventTypeCategoryDeleted,
	EventTypeExpenseCreated,
	EventTypeExpenseUpdated,
	EventTypeExpenseDeleted,
}

func newEvent(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

func NewUserRegistered(userID, email string) BaseEvent {
	return newEvent(EventTypeUserRegistered, map[string]interface{}{
		"user_id": userID,
		"email":   email,
	})
}

// NewCategoryEvent builds one of the category.* events.
func NewCategoryEvent(eventType, userID, categoryID, name, categoryType string) BaseEvent {
	return newEvent(eventType, map[string]interface{}{
		"user_id":     userID,
		"category_id": categoryID,
		"name":        name,
		"type":        categoryType,
	})
}

// NewExpenseEvent builds one of the expense.* events. amount is the decimal
// string form so no precision is lost in transit.
func NewExpenseEvent(eventType, userID, expenseID, categoryID, amount string) BaseEvent {
	return newEvent(eventType, map[string]interface{}{
		"user_id":     userID,
		"expense_id":  expenseID,
		"category_id": categoryID,
		"amount":      amount,
	})
}
