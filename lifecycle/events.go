package lifecycle

import (
	"time"

	"asset_borrow_tracker/models"
)

const (
	EventNewBorrowRequest      = "newBorrowRequest"
	EventBorrowRequestApproved = "borrowRequestApproved"
	EventBorrowRequestRejected = "borrowRequestRejected"
	EventItemReturned          = "itemReturned"
	EventItemMaintenance       = "itemMaintenance"
	EventMaintenanceCompleted  = "maintenanceCompleted"
)

type ItemSummary struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category *string `json:"category"`
}

type ItemRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type UserSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// 发给管理员：有人申请借用
type BorrowRequestEvent struct {
	ID        string      `json:"id"`
	Item      ItemSummary `json:"item"`
	User      UserSummary `json:"user"`
	Timestamp time.Time   `json:"timestamp"`
}

// 发给申请人：批准 / 拒绝
type BorrowDecisionEvent struct {
	ID        string    `json:"id"`
	Item      *ItemRef  `json:"item"`
	Timestamp time.Time `json:"timestamp"`
}

type ItemReturnedEvent struct {
	ID         string       `json:"id"`
	Item       *ItemSummary `json:"item"`
	User       *UserSummary `json:"user"`
	ReturnDate *time.Time   `json:"returnDate"`
	Timestamp  time.Time    `json:"timestamp"`
}

type MaintenanceEvent struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Reason    string    `json:"reason,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func itemSummary(it *models.Item) *ItemSummary {
	if it == nil {
		return nil
	}
	return &ItemSummary{ID: it.ID, Name: it.Name, Category: it.CategoryName()}
}

func itemRef(it *models.Item) *ItemRef {
	if it == nil {
		return nil
	}
	return &ItemRef{ID: it.ID, Name: it.Name}
}

func userSummary(u *models.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name}
}
