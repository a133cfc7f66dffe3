package models

import "time"

const MaintenanceLogTable = "maintenance_logs"

// MaintenanceLog 每件物品同一时间最多一条 end_date 为空的记录
type MaintenanceLog struct {
	ID        string     `gorm:"type:uuid;primaryKey" json:"id"`
	ItemID    string     `gorm:"type:uuid;index;not null" json:"itemId"`
	Item      *Item      `gorm:"foreignKey:ItemID;constraint:OnDelete:RESTRICT" json:"item,omitempty"`
	Reason    string     `gorm:"type:text;not null" json:"reason"`
	Notes     *string    `gorm:"type:text" json:"notes,omitempty"`
	StartDate time.Time  `gorm:"not null" json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (MaintenanceLog) TableName() string { return MaintenanceLogTable }
