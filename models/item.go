// models/item.go
package models

import "time"

const (
	ItemTable     = "items"
	CategoryTable = "categories"
)

type ItemStatus string

const (
	ItemAvailable   ItemStatus = "available"
	ItemBorrowed    ItemStatus = "borrowed"
	ItemMaintenance ItemStatus = "maintenance"
	// ItemPending 保留值：没有任何流转会进入该状态
	ItemPending ItemStatus = "pending"
)

type Category struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:120;uniqueIndex;not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Item struct {
	ID           string     `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string     `gorm:"size:200;not null" json:"name"`
	SerialNumber string     `gorm:"size:120;uniqueIndex;not null" json:"serialNumber"` // 唯一编号
	QRCode       string     `gorm:"column:qr_code;size:255;uniqueIndex;not null" json:"qrCode"`
	CategoryID   string     `gorm:"type:uuid;index;not null" json:"categoryId"`
	Category     *Category  `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"category,omitempty"`
	Status       ItemStatus `gorm:"size:20;not null;default:'available';index" json:"status"` // 只由 lifecycle 修改
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (Category) TableName() string { return CategoryTable }
func (Item) TableName() string     { return ItemTable }

// CategoryName 便于通知里带上分类名（可能为空）
func (it *Item) CategoryName() *string {
	if it == nil || it.Category == nil {
		return nil
	}
	n := it.Category.Name
	return &n
}
