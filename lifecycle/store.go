package lifecycle

import (
	"context"
	"time"

	"asset_borrow_tracker/models"
)

// Store 在一个事务里执行 fn；fn 返回错误即整体回滚
type Store interface {
	Tx(ctx context.Context, fn func(tx Tx) error) error
}

// MaintenancePreparer 可选：维护流程开事务前由存储层做准备（如按需建表）。
// 借还流程不会调用。
type MaintenancePreparer interface {
	PrepareMaintenance(ctx context.Context) error
}

// Tx 一次流转可做的读写；记录不存在时返回 gorm.ErrRecordNotFound
type Tx interface {
	// 读出并锁住该行，直到提交
	LockItem(id string) (*models.Item, error)
	LockBorrowRequest(id string) (*models.BorrowRequest, error)

	FindUser(id string) (*models.User, error)
	FindCategory(id string) (*models.Category, error)

	// 物品已有未结束的申请时返回 gorm.ErrDuplicatedKey
	CreateBorrowRequest(br *models.BorrowRequest) error
	SaveBorrowRequest(br *models.BorrowRequest) error

	// CAS：当前状态在 from 里才改成 to，返回是否改到
	SetItemStatus(id string, from []models.ItemStatus, to models.ItemStatus) (bool, error)

	OpenMaintenance(log *models.MaintenanceLog) error
	// 关闭该物品未结束的维护记录，返回关闭的行数
	CloseMaintenance(itemID, notes string, at time.Time) (int64, error)
}
