package db

import (
	"context"

	"asset_borrow_tracker/models"

	"gorm.io/gorm"
)

func (r *Repo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cs []models.Category
	err := r.DB.WithContext(ctx).Order("name ASC").Find(&cs).Error
	return cs, err
}

// CreateCategory 名称重复时返回 gorm.ErrDuplicatedKey
func (r *Repo) CreateCategory(ctx context.Context, c *models.Category) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *Repo) FindCategoryByID(ctx context.Context, id string) (*models.Category, error) {
	if !validID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var c models.Category
	if err := r.DB.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// CountCategoriesByID 用于批量创建时校验分类是否都存在；非法 id 不计数
func (r *Repo) CountCategoriesByID(ctx context.Context, ids []string) (int64, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return 0, nil
	}
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Category{}).Where("id IN ?", valid).Count(&n).Error
	return n, err
}
