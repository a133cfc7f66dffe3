package models

import "time"

const BorrowRequestTable = "borrow_requests"

type BorrowStatus string

const (
	BorrowPending  BorrowStatus = "pending"
	BorrowApproved BorrowStatus = "approved"
	BorrowRejected BorrowStatus = "rejected"
	BorrowReturned BorrowStatus = "returned"
)

// Open 表示该申请仍占用物品
func (s BorrowStatus) Open() bool { return s == BorrowPending || s == BorrowApproved }

type BorrowRequest struct {
	ID         string       `gorm:"type:uuid;primaryKey" json:"id"`
	ItemID     string       `gorm:"type:uuid;index;not null" json:"itemId"`
	Item       *Item        `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	UserID     string       `gorm:"type:uuid;index;not null" json:"userId"`
	User       *User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Status     BorrowStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	BorrowDate time.Time    `gorm:"not null;index" json:"borrowDate"`
	ReturnDate *time.Time   `json:"returnDate,omitempty"` // 仅 returned 时有值
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

func (BorrowRequest) TableName() string { return BorrowRequestTable }
