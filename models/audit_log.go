package models

import "time"

// AuditLog 记录管理员操作与借还流转
type AuditLog struct {
	ID         string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ActorID    string    `gorm:"type:uuid;index" json:"actorId"`
	Action     string    `gorm:"size:40;not null" json:"action"`
	EntityType string    `gorm:"size:40;not null" json:"entityType"`
	EntityID   string    `gorm:"size:64;not null" json:"entityId"`
	Details    *string   `gorm:"type:text" json:"details,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
}

func (AuditLog) TableName() string { return "audit_logs" }
