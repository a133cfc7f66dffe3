package db

import (
	"context"
	"time"

	"asset_borrow_tracker/models"

	"gorm.io/gorm"
)

type BorrowQuery struct {
	UserID string
	ItemID string
	Status string
	Page   int
	Size   int
}

func (r *Repo) ListBorrowRequests(ctx context.Context, q BorrowQuery) (Paged[models.BorrowRequest], error) {
	page, size := normPage(q.Page, q.Size, 100)

	tx := r.DB.WithContext(ctx).Model(&models.BorrowRequest{})
	if q.UserID != "" {
		tx = tx.Where("user_id = ?", q.UserID)
	}
	if q.ItemID != "" {
		tx = tx.Where("item_id = ?", q.ItemID)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return Paged[models.BorrowRequest]{}, err
	}

	var rows []models.BorrowRequest
	if err := tx.
		Preload("Item.Category").
		Preload("User").
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&rows).Error; err != nil {
		return Paged[models.BorrowRequest]{}, err
	}
	return Paged[models.BorrowRequest]{Items: rows, Total: total, Page: page, Size: size}, nil
}

// Archive source

// ReturnedBefore 已归还且 updated_at 早于 cutoff 的申请，按时间升序
func (r *Repo) ReturnedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.BorrowRequest, error) {
	var rows []models.BorrowRequest
	err := r.DB.WithContext(ctx).
		Where("status = ? AND updated_at < ?", models.BorrowReturned, cutoff).
		Order("updated_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *Repo) DeleteBorrowRequests(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	// 只删 returned，防止并发下误删仍在使用中的申请
	res := r.DB.WithContext(ctx).
		Where("id IN ? AND status = ?", ids, models.BorrowReturned).
		Delete(&models.BorrowRequest{})
	return res.RowsAffected, res.Error
}

func (r *Repo) FindBorrowRequest(ctx context.Context, id string) (*models.BorrowRequest, error) {
	if !validID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var br models.BorrowRequest
	if err := r.DB.WithContext(ctx).First(&br, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &br, nil
}
