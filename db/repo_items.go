package db

import (
	"context"
	"strings"
	"time"

	"asset_borrow_tracker/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Items

// CreateItem 新物品一律 available，status 之后只由 lifecycle 修改
func (r *Repo) CreateItem(ctx context.Context, it *models.Item) error {
	it.Status = models.ItemAvailable
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(it).Error
}

// CreateItems 批量创建，任意一条失败整体回滚
func (r *Repo) CreateItems(ctx context.Context, items []models.Item) error {
	for i := range items {
		items[i].Status = models.ItemAvailable
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).CreateInBatches(items, 100).Error
	})
}

func (r *Repo) FindItemByID(ctx context.Context, id string) (*models.Item, error) {
	if !validID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var it models.Item
	if err := r.DB.WithContext(ctx).Preload("Category").First(&it, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *Repo) ListItems(ctx context.Context, page, size int) (Paged[models.Item], error) {
	page, size = normPage(page, size, 100)
	tx := r.DB.WithContext(ctx).Model(&models.Item{})

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return Paged[models.Item]{}, err
	}
	var items []models.Item
	if err := tx.Preload("Category").
		Order("updated_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&items).Error; err != nil {
		return Paged[models.Item]{}, err
	}
	return Paged[models.Item]{Items: items, Total: total, Page: page, Size: size}, nil
}

func (r *Repo) ListAvailableItems(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	err := r.DB.WithContext(ctx).Preload("Category").
		Where("status = ?", models.ItemAvailable).
		Order("name ASC").
		Find(&items).Error
	return items, err
}

type ItemSearch struct {
	Query      string
	CategoryID string
	Status     string
	SortBy     string
	Order      string
}

// 排序字段白名单：前端字段名 → 列名
var itemSortColumns = map[string]string{
	"name":         "name",
	"serialNumber": "serial_number",
	"status":       "status",
	"createdAt":    "created_at",
	"updatedAt":    "updated_at",
}

func (r *Repo) SearchItems(ctx context.Context, s ItemSearch) ([]models.Item, error) {
	tx := r.DB.WithContext(ctx).Model(&models.Item{}).Preload("Category")

	if q := strings.TrimSpace(s.Query); q != "" {
		pat := "%" + q + "%"
		tx = tx.Where("name ILIKE ? OR serial_number ILIKE ? OR qr_code ILIKE ?", pat, pat, pat)
	}
	if s.CategoryID != "" {
		tx = tx.Where("category_id = ?", s.CategoryID)
	}
	if s.Status != "" {
		tx = tx.Where("status = ?", s.Status)
	}

	col, ok := itemSortColumns[s.SortBy]
	if !ok {
		col = "updated_at"
		if s.SortBy == "" {
			s.Order = "desc"
		}
	}
	tx = tx.Order(clause.OrderByColumn{
		Column: clause.Column{Name: col},
		Desc:   strings.EqualFold(s.Order, "desc"),
	})

	var items []models.Item
	err := tx.Find(&items).Error
	return items, err
}

// ItemPatch 可修改的字段；status 不在其中
type ItemPatch struct {
	Name         *string `json:"name"`
	SerialNumber *string `json:"serialNumber"`
	QRCode       *string `json:"qrCode"`
	CategoryID   *string `json:"categoryId"`
}

func (p ItemPatch) updates() map[string]any {
	m := map[string]any{}
	if p.Name != nil {
		m["name"] = strings.TrimSpace(*p.Name)
	}
	if p.SerialNumber != nil {
		m["serial_number"] = strings.TrimSpace(*p.SerialNumber)
	}
	if p.QRCode != nil {
		m["qr_code"] = strings.TrimSpace(*p.QRCode)
	}
	if p.CategoryID != nil {
		m["category_id"] = strings.TrimSpace(*p.CategoryID)
	}
	return m
}

func (r *Repo) UpdateItem(ctx context.Context, id string, p ItemPatch) (*models.Item, error) {
	if !validID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	if m := p.updates(); len(m) > 0 {
		m["updated_at"] = time.Now().UTC()
		res := r.DB.WithContext(ctx).Model(&models.Item{}).Where("id = ?", id).Updates(m)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return r.FindItemByID(ctx, id)
}
