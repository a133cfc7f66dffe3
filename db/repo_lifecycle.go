package db

import (
	"context"
	"time"

	"asset_borrow_tracker/lifecycle"
	"asset_borrow_tracker/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Tx 实现 lifecycle.Store：fn 返回错误即整体回滚
func (r *Repo) Tx(ctx context.Context, fn func(tx lifecycle.Tx) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(gormTx{tx})
	})
}

// PrepareMaintenance 维护流程开事务前调用；建表放在事务外，避免和行锁互相等待
func (r *Repo) PrepareMaintenance(ctx context.Context) error {
	return r.ensureMaintenanceTable(ctx)
}

type gormTx struct{ tx *gorm.DB }

var _ lifecycle.Tx = gormTx{}

// 行锁：SELECT ... FOR UPDATE，直到事务结束
func (t gormTx) LockItem(id string) (*models.Item, error) {
	if !validID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var it models.Item
	if err := t.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&it, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

func (t gormTx) LockBorrowRequest(id string) (*models.BorrowRequest, error) {
	if !validID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var br models.BorrowRequest
	if err := t.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&br, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &br, nil
}

func (t gormTx) FindUser(id string) (*models.User, error) {
	if !validID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var u models.User
	if err := t.tx.First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (t gormTx) FindCategory(id string) (*models.Category, error) {
	if !validID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var c models.Category
	if err := t.tx.First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// 依赖 borrow_requests_one_open_per_item 部分唯一索引防止并发重复
func (t gormTx) CreateBorrowRequest(br *models.BorrowRequest) error {
	return t.tx.Omit(clause.Associations).Create(br).Error
}

func (t gormTx) SaveBorrowRequest(br *models.BorrowRequest) error {
	return t.tx.Model(&models.BorrowRequest{}).
		Where("id = ?", br.ID).
		Updates(map[string]any{
			"status":      br.Status,
			"return_date": br.ReturnDate,
			"updated_at":  time.Now().UTC(),
		}).Error
}

// CAS：UPDATE items SET status=? WHERE id=? AND status IN (?)
func (t gormTx) SetItemStatus(id string, from []models.ItemStatus, to models.ItemStatus) (bool, error) {
	res := t.tx.Model(&models.Item{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]any{
			"status":     to,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (t gormTx) OpenMaintenance(l *models.MaintenanceLog) error {
	return t.tx.Create(l).Error
}

func (t gormTx) CloseMaintenance(itemID, notes string, at time.Time) (int64, error) {
	res := t.tx.Model(&models.MaintenanceLog{}).
		Where("item_id = ? AND end_date IS NULL", itemID).
		Updates(map[string]any{
			"end_date":   at,
			"notes":      notes,
			"updated_at": at,
		})
	return res.RowsAffected, res.Error
}
