// db/repo_items_admin.go
package db

import (
	"context"
	"strings"
	"time"

	"asset_borrow_tracker/models"

	"gorm.io/gorm"
)

type AdminItemRow struct {
	// Item fields
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	SerialNumber string    `json:"serialNumber"`
	Status       string    `json:"status"`
	CategoryID   string    `json:"categoryId"`
	CategoryName *string   `json:"categoryName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// 当前未结束的借用申请（可能为空）
	RequestID     *string    `json:"requestId,omitempty"`
	RequestStatus *string    `json:"requestStatus,omitempty"`
	BorrowerID    *string    `json:"borrowerId,omitempty"`
	BorrowerName  *string    `json:"borrowerName,omitempty"`
	BorrowerEmail *string    `json:"borrowerEmail,omitempty"`
	BorrowDate    *time.Time `json:"borrowDate,omitempty"`
}

type AdminItemsQuery struct {
	Q      string // 模糊搜索：serial/name
	Status string // "", available, borrowed, maintenance, awaiting
	Page   int
	Size   int
}

// ListItemsWithCurrentBorrow 物品 + 当前借用人。部分唯一索引保证每件物品最多一条 open 申请，
// 所以直接 LEFT JOIN 不会重复。
func (r *Repo) ListItemsWithCurrentBorrow(ctx context.Context, q AdminItemsQuery) (Paged[AdminItemRow], error) {
	page, size := normPage(q.Page, q.Size, 200)

	base := r.DB.WithContext(ctx).
		Table(models.ItemTable+" i").
		Joins("LEFT JOIN "+models.CategoryTable+" c ON c.id = i.category_id").
		Joins("LEFT JOIN "+models.BorrowRequestTable+" br ON br.item_id = i.id AND br.status IN ?",
			[]models.BorrowStatus{models.BorrowPending, models.BorrowApproved}).
		Joins("LEFT JOIN users u ON u.id = br.user_id")

	// 过滤
	if s := strings.TrimSpace(q.Q); s != "" {
		pat := "%" + strings.ToLower(s) + "%"
		base = base.Where("LOWER(i.serial_number) LIKE ? OR LOWER(i.name) LIKE ?", pat, pat)
	}
	switch q.Status {
	case string(models.ItemAvailable), string(models.ItemBorrowed), string(models.ItemMaintenance):
		base = base.Where("i.status = ?", q.Status)
	case "awaiting":
		base = base.Where("br.status = ?", models.BorrowPending)
	default:
		// all
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return Paged[AdminItemRow]{}, err
	}

	var rows []AdminItemRow
	if err := base.
		Select(`
			i.id, i.name, i.serial_number, i.status, i.category_id, i.created_at, i.updated_at,
			c.name       AS category_name,
			br.id        AS request_id,
			br.status    AS request_status,
			br.borrow_date,
			u.id         AS borrower_id,
			u.name       AS borrower_name,
			u.email      AS borrower_email
		`).
		Order("i.created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Scan(&rows).Error; err != nil {
		return Paged[AdminItemRow]{}, err
	}

	return Paged[AdminItemRow]{Items: rows, Total: total, Page: page, Size: size}, nil
}
