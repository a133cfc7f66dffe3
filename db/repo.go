package db

import (
	"context"
	"strings"
	"sync"

	"asset_borrow_tracker/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repo struct {
	DB *gorm.DB

	maintMu    sync.Mutex
	maintReady bool
}

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

// Paged 通用分页结果
type Paged[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
}

func normPage(page, size, max int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > max {
		size = 20
	}
	return page, size
}

// validID 主键都是 uuid 列；非法 id 直接按不存在处理，避免 Postgres 报 22P02
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Users

func (r *Repo) TouchUserSeen(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_seen_at", gorm.Expr("NOW()")).Error
}

// 按 ID 查
func (r *Repo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// 邮箱统一小写存储
func (r *Repo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return r.DB.WithContext(ctx).Create(u).Error
}

// 列表（分页 + 关键词，关键词匹配姓名/邮箱）
func (r *Repo) ListUsers(ctx context.Context, q string, page, size int) (Paged[models.User], error) {
	page, size = normPage(page, size, 100)

	tx := r.DB.WithContext(ctx).Model(&models.User{})
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return Paged[models.User]{}, err
	}

	var users []models.User
	if err := tx.
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&users).Error; err != nil {
		return Paged[models.User]{}, err
	}
	return Paged[models.User]{Items: users, Total: total, Page: page, Size: size}, nil
}

// UpdateUserRole 返回更新后的用户；用户不存在时返回 gorm.ErrRecordNotFound
func (r *Repo) UpdateUserRole(ctx context.Context, userID string, role models.Role) (*models.User, error) {
	if !validID(userID) {
		return nil, gorm.ErrRecordNotFound
	}
	res := r.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("role", role)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindUserByID(ctx, userID)
}

func (r *Repo) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&n).Error
	return n, err
}
