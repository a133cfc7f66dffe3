package db

import (
	"context"
	"fmt"

	"asset_borrow_tracker/models"
)

func (r *Repo) LogAudit(ctx context.Context, actorID, action, entityType, entityID string, details *string) (*models.AuditLog, error) {
	log := &models.AuditLog{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	}
	if err := r.DB.WithContext(ctx).Create(log).Error; err != nil {
		return nil, fmt.Errorf("insert audit log: %w", err)
	}
	return log, nil
}

type AuditQuery struct {
	ActorID    string
	EntityType string
	EntityID   string
	Page       int
	Size       int
}

func (r *Repo) ListAuditLogs(ctx context.Context, q AuditQuery) (Paged[models.AuditLog], error) {
	page, size := normPage(q.Page, q.Size, 200)

	tx := r.DB.WithContext(ctx).Model(&models.AuditLog{})
	if q.ActorID != "" {
		tx = tx.Where("actor_id = ?", q.ActorID)
	}
	if q.EntityType != "" {
		tx = tx.Where("entity_type = ?", q.EntityType)
	}
	if q.EntityID != "" {
		tx = tx.Where("entity_id = ?", q.EntityID)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return Paged[models.AuditLog]{}, err
	}
	var logs []models.AuditLog
	if err := tx.Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&logs).Error; err != nil {
		return Paged[models.AuditLog]{}, err
	}
	return Paged[models.AuditLog]{Items: logs, Total: total, Page: page, Size: size}, nil
}
