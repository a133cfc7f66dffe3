package db

import (
	"context"
	"fmt"

	"asset_borrow_tracker/models"
)

// ensureMaintenanceTable 首次使用时建表；失败不记住，下次重试
func (r *Repo) ensureMaintenanceTable(ctx context.Context) error {
	r.maintMu.Lock()
	defer r.maintMu.Unlock()
	if r.maintReady {
		return nil
	}

	m := r.DB.WithContext(ctx).Migrator()
	if !m.HasTable(&models.MaintenanceLog{}) {
		if err := m.CreateTable(&models.MaintenanceLog{}); err != nil {
			return fmt.Errorf("create %s: %w", models.MaintenanceLogTable, err)
		}
	}
	// 同一物品最多一条 end_date 为空
	if err := r.DB.WithContext(ctx).Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_open_per_item
	  ON %s (item_id)
	  WHERE end_date IS NULL;
	`, models.MaintenanceLogTable, models.MaintenanceLogTable)).Error; err != nil {
		return err
	}
	r.maintReady = true
	return nil
}

// ListMaintenanceLogs 某物品的维护历史，最近的在前
func (r *Repo) ListMaintenanceLogs(ctx context.Context, itemID string) ([]models.MaintenanceLog, error) {
	if err := r.ensureMaintenanceTable(ctx); err != nil {
		return nil, err
	}
	var logs []models.MaintenanceLog
	if !validID(itemID) {
		return logs, nil
	}
	err := r.DB.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("start_date DESC").
		Find(&logs).Error
	return logs, err
}
