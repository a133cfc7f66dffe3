package testutil

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"asset_borrow_tracker/lifecycle"
	"asset_borrow_tracker/models"

	"gorm.io/gorm"
)

// MemStore 内存版 lifecycle.Store：事务串行执行，在副本上改，成功才写回
type MemStore struct {
	mu         sync.Mutex
	items      map[string]models.Item
	borrows    map[string]models.BorrowRequest
	users      map[string]models.User
	categories map[string]models.Category
	logs       []models.MaintenanceLog

	// FailNextTx 下一个事务在 fn 执行后以该错误失败
	FailNextTx error
	// FailPrepare 非空时 PrepareMaintenance 返回它
	FailPrepare error
	Prepared    int
}

func NewMemStore() *MemStore {
	return &MemStore{
		items:      map[string]models.Item{},
		borrows:    map[string]models.BorrowRequest{},
		users:      map[string]models.User{},
		categories: map[string]models.Category{},
	}
}

func (s *MemStore) AddUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *MemStore) AddCategory(c models.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
}

func (s *MemStore) AddItem(it models.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if it.Status == "" {
		it.Status = models.ItemAvailable
	}
	it.Category = nil
	s.items[it.ID] = it
}

func (s *MemStore) Item(id string) (models.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	return it, ok
}

func (s *MemStore) BorrowRequest(id string) (models.BorrowRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	br, ok := s.borrows[id]
	return br, ok
}

// OpenBorrowRequests 该物品没有归还日期的申请
func (s *MemStore) OpenBorrowRequests(itemID string) []models.BorrowRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.BorrowRequest
	for _, br := range s.borrows {
		if br.ItemID == itemID && br.ReturnDate == nil && br.Status.Open() {
			out = append(out, br)
		}
	}
	return out
}

func (s *MemStore) MaintenanceLogs(itemID string) []models.MaintenanceLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.MaintenanceLog
	for _, l := range s.logs {
		if l.ItemID == itemID {
			out = append(out, l)
		}
	}
	return out
}

func (s *MemStore) Tx(_ context.Context, fn func(tx lifecycle.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		items:      maps.Clone(s.items),
		borrows:    maps.Clone(s.borrows),
		users:      s.users,
		categories: s.categories,
		logs:       slices.Clone(s.logs),
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := s.FailNextTx; err != nil {
		s.FailNextTx = nil
		return err
	}
	s.items, s.borrows, s.logs = tx.items, tx.borrows, tx.logs
	return nil
}

type memTx struct {
	items      map[string]models.Item
	borrows    map[string]models.BorrowRequest
	users      map[string]models.User
	categories map[string]models.Category
	logs       []models.MaintenanceLog
}

func (t *memTx) LockItem(id string) (*models.Item, error) {
	it, ok := t.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &it, nil
}

func (t *memTx) LockBorrowRequest(id string) (*models.BorrowRequest, error) {
	br, ok := t.borrows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &br, nil
}

func (t *memTx) FindUser(id string) (*models.User, error) {
	u, ok := t.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (t *memTx) FindCategory(id string) (*models.Category, error) {
	c, ok := t.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (t *memTx) CreateBorrowRequest(br *models.BorrowRequest) error {
	for _, other := range t.borrows {
		if other.ItemID == br.ItemID && other.Status.Open() {
			return gorm.ErrDuplicatedKey
		}
	}
	row := *br
	row.Item, row.User = nil, nil
	row.CreatedAt, row.UpdatedAt = br.BorrowDate, br.BorrowDate
	t.borrows[br.ID] = row
	return nil
}

func (t *memTx) SaveBorrowRequest(br *models.BorrowRequest) error {
	if _, ok := t.borrows[br.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	row := *br
	row.Item, row.User = nil, nil
	row.UpdatedAt = time.Now()
	t.borrows[br.ID] = row
	return nil
}

func (t *memTx) SetItemStatus(id string, from []models.ItemStatus, to models.ItemStatus) (bool, error) {
	it, ok := t.items[id]
	if !ok || !slices.Contains(from, it.Status) {
		return false, nil
	}
	it.Status = to
	t.items[id] = it
	return true, nil
}

func (t *memTx) OpenMaintenance(l *models.MaintenanceLog) error {
	for _, other := range t.logs {
		if other.ItemID == l.ItemID && other.EndDate == nil {
			return gorm.ErrDuplicatedKey
		}
	}
	t.logs = append(t.logs, *l)
	return nil
}

func (t *memTx) CloseMaintenance(itemID, notes string, at time.Time) (int64, error) {
	var n int64
	for i := range t.logs {
		if t.logs[i].ItemID == itemID && t.logs[i].EndDate == nil {
			end := at
			note := notes
			t.logs[i].EndDate = &end
			t.logs[i].Notes = &note
			n++
		}
	}
	return n, nil
}

// FindBorrowRequest 与 db.Repo 同名方法一致
func (s *MemStore) FindBorrowRequest(_ context.Context, id string) (*models.BorrowRequest, error) {
	br, ok := s.BorrowRequest(id)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &br, nil
}

func (s *MemStore) PrepareMaintenance(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Prepared++
	return s.FailPrepare
}
