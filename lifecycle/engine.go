package lifecycle

// 物品：available → borrowed → available（归还或拒绝）
//       available → maintenance → available
// 申请：pending → approved → returned
//       pending → rejected | returned
//
// 每次流转一个事务：先锁行，物品状态用 CAS 改，提交之后才发通知

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"asset_borrow_tracker/models"
	"asset_borrow_tracker/notify"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultMaintenanceReason = "Routine maintenance"

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type Engine struct {
	store Store
	pub   notify.Publisher
	clock Clock
	newID func() string
	log   *slog.Logger
}

type Option func(*Engine)

func WithClock(c Clock) Option { return func(e *Engine) { e.clock = c } }

func WithIDGenerator(f func() string) Option { return func(e *Engine) { e.newID = f } }

func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.log = l } }

func New(store Store, pub notify.Publisher, opts ...Option) *Engine {
	if pub == nil {
		pub = notify.Discard
	}
	e := &Engine{
		store: store,
		pub:   pub,
		clock: realClock{},
		newID: uuid.NewString,
		log:   slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// CreateBorrowRequest 新建 pending 申请，物品置为 borrowed
func (e *Engine) CreateBorrowRequest(ctx context.Context, itemID, userID string) (*models.BorrowRequest, error) {
	itemID, userID = strings.TrimSpace(itemID), strings.TrimSpace(userID)
	if userID == "" {
		return nil, Validation("userId is required")
	}
	if itemID == "" {
		return nil, Validation("itemId is required")
	}

	now := e.clock.Now()
	var (
		br   *models.BorrowRequest
		item *models.Item
		user *models.User
	)
	err := e.store.Tx(ctx, func(tx Tx) error {
		var err error
		if item, err = lockItem(tx, itemID); err != nil {
			return err
		}
		if item.Status != models.ItemAvailable {
			return InvalidState("Item is not available for borrowing")
		}
		if user, err = findUser(tx, userID); err != nil {
			return err
		}
		item.Category = findCategory(tx, item.CategoryID)

		br = &models.BorrowRequest{
			ID:         e.newID(),
			ItemID:     item.ID,
			UserID:     user.ID,
			Status:     models.BorrowPending,
			BorrowDate: now,
		}
		if err := tx.CreateBorrowRequest(br); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return InvalidState("Item is not available for borrowing")
			}
			return unknown("create borrow request", err)
		}
		return setItemStatus(tx, item, models.ItemBorrowed, "Item is not available for borrowing", models.ItemAvailable)
	})
	if err != nil {
		return nil, unknown("create borrow request", err)
	}

	br.Item, br.User = item, user
	e.emit(ctx, notify.TopicAdmins, EventNewBorrowRequest, BorrowRequestEvent{
		ID:        br.ID,
		Item:      *itemSummary(item),
		User:      *userSummary(user),
		Timestamp: now,
	})
	return br, nil
}

// Approve 重复批准不报错，只重新确认物品状态
func (e *Engine) Approve(ctx context.Context, requestID string) (*models.BorrowRequest, error) {
	now := e.clock.Now()
	var (
		br   *models.BorrowRequest
		item *models.Item
	)
	err := e.store.Tx(ctx, func(tx Tx) error {
		var err error
		if br, err = lockRequest(tx, requestID); err != nil {
			return err
		}
		if !br.Status.Open() {
			return InvalidState(fmt.Sprintf("Borrow request is already %s", br.Status))
		}
		if item, err = lockItem(tx, br.ItemID); err != nil {
			return err
		}
		if err := setItemStatus(tx, item, models.ItemBorrowed, "Item is not available for borrowing",
			models.ItemBorrowed, models.ItemAvailable); err != nil {
			return err
		}
		br.Status = models.BorrowApproved
		if err := tx.SaveBorrowRequest(br); err != nil {
			return unknown("save borrow request", err)
		}
		return nil
	})
	if err != nil {
		return nil, unknown("approve borrow request", err)
	}

	br.Item = item
	e.emit(ctx, notify.UserTopic(br.UserID), EventBorrowRequestApproved, BorrowDecisionEvent{
		ID:        br.ID,
		Item:      itemRef(item),
		Timestamp: now,
	})
	return br, nil
}

func (e *Engine) Reject(ctx context.Context, requestID string) (*models.BorrowRequest, error) {
	now := e.clock.Now()
	var (
		br   *models.BorrowRequest
		item *models.Item
	)
	err := e.store.Tx(ctx, func(tx Tx) error {
		var err error
		if br, err = lockRequest(tx, requestID); err != nil {
			return err
		}
		if br.Status != models.BorrowPending {
			return InvalidState("Only pending borrow requests can be rejected")
		}
		if item, err = lockItem(tx, br.ItemID); err != nil {
			return err
		}
		if err := setItemStatus(tx, item, models.ItemAvailable, "Item is not borrowed", models.ItemBorrowed); err != nil {
			return err
		}
		br.Status = models.BorrowRejected
		if err := tx.SaveBorrowRequest(br); err != nil {
			return unknown("save borrow request", err)
		}
		return nil
	})
	if err != nil {
		return nil, unknown("reject borrow request", err)
	}

	br.Item = item
	e.emit(ctx, notify.UserTopic(br.UserID), EventBorrowRequestRejected, BorrowDecisionEvent{
		ID:        br.ID,
		Item:      itemRef(item),
		Timestamp: now,
	})
	return br, nil
}

// Return 每个申请只能归还一次
func (e *Engine) Return(ctx context.Context, requestID string) (*models.BorrowRequest, error) {
	now := e.clock.Now()
	var (
		br   *models.BorrowRequest
		item *models.Item
		user *models.User
	)
	err := e.store.Tx(ctx, func(tx Tx) error {
		var err error
		if br, err = lockRequest(tx, requestID); err != nil {
			return err
		}
		switch br.Status {
		case models.BorrowReturned:
			return InvalidState("Borrow request has already been returned")
		case models.BorrowRejected:
			return InvalidState("Borrow request was rejected")
		}
		if item, err = lockItem(tx, br.ItemID); err != nil {
			return err
		}
		if err := setItemStatus(tx, item, models.ItemAvailable, "Item is not borrowed", models.ItemBorrowed); err != nil {
			return err
		}
		br.Status = models.BorrowReturned
		br.ReturnDate = &now
		if err := tx.SaveBorrowRequest(br); err != nil {
			return unknown("save borrow request", err)
		}
		item.Category = findCategory(tx, item.CategoryID)
		if u, err := tx.FindUser(br.UserID); err == nil {
			user = u
		}
		return nil
	})
	if err != nil {
		return nil, unknown("return item", err)
	}

	br.Item, br.User = item, user
	e.emit(ctx, notify.TopicAdmins, EventItemReturned, ItemReturnedEvent{
		ID:         br.ID,
		Item:       itemSummary(item),
		User:       userSummary(user),
		ReturnDate: br.ReturnDate,
		Timestamp:  now,
	})
	return br, nil
}

func (e *Engine) StartMaintenance(ctx context.Context, itemID, reason string) (*models.Item, error) {
	if reason = strings.TrimSpace(reason); reason == "" {
		reason = DefaultMaintenanceReason
	}
	if err := e.prepareMaintenance(ctx); err != nil {
		return nil, err
	}
	now := e.clock.Now()
	var item *models.Item
	err := e.store.Tx(ctx, func(tx Tx) error {
		var err error
		if item, err = lockItem(tx, itemID); err != nil {
			return err
		}
		if item.Status != models.ItemAvailable {
			return InvalidState("Item is not available for maintenance")
		}
		if err := setItemStatus(tx, item, models.ItemMaintenance, "Item is not available for maintenance", models.ItemAvailable); err != nil {
			return err
		}
		err = tx.OpenMaintenance(&models.MaintenanceLog{
			ID:        e.newID(),
			ItemID:    item.ID,
			Reason:    reason,
			StartDate: now,
		})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return InvalidState("Item is already in maintenance")
		}
		if err != nil {
			return unknown("open maintenance log", err)
		}
		return nil
	})
	if err != nil {
		return nil, unknown("start maintenance", err)
	}

	e.emit(ctx, notify.TopicAdmins, EventItemMaintenance, MaintenanceEvent{
		ID:        item.ID,
		Name:      item.Name,
		Reason:    reason,
		Timestamp: now,
	})
	return item, nil
}

func (e *Engine) CompleteMaintenance(ctx context.Context, itemID, notes string) (*models.Item, error) {
	notes = strings.TrimSpace(notes)
	if err := e.prepareMaintenance(ctx); err != nil {
		return nil, err
	}
	now := e.clock.Now()
	var item *models.Item
	err := e.store.Tx(ctx, func(tx Tx) error {
		var err error
		if item, err = lockItem(tx, itemID); err != nil {
			return err
		}
		if item.Status != models.ItemMaintenance {
			return InvalidState("Item is not in maintenance")
		}
		if err := setItemStatus(tx, item, models.ItemAvailable, "Item is not in maintenance", models.ItemMaintenance); err != nil {
			return err
		}
		n, err := tx.CloseMaintenance(item.ID, notes, now)
		if err != nil {
			return unknown("close maintenance log", err)
		}
		if n == 0 {
			e.log.WarnContext(ctx, "item left maintenance without an open log", "item_id", item.ID)
		}
		return nil
	})
	if err != nil {
		return nil, unknown("complete maintenance", err)
	}

	msg := notes
	if msg == "" {
		msg = "Maintenance completed"
	}
	e.emit(ctx, notify.TopicAdmins, EventMaintenanceCompleted, MaintenanceEvent{
		ID:        item.ID,
		Name:      item.Name,
		Notes:     msg,
		Timestamp: now,
	})
	return item, nil
}

func (e *Engine) prepareMaintenance(ctx context.Context) error {
	p, ok := e.store.(MaintenancePreparer)
	if !ok {
		return nil
	}
	if err := p.PrepareMaintenance(ctx); err != nil {
		return unknown("prepare maintenance", err)
	}
	return nil
}

// emit 已提交，发送失败只记日志
func (e *Engine) emit(ctx context.Context, topic, name string, data any) {
	ev := notify.Event{Name: name, Data: data}
	if err := e.pub.Publish(context.WithoutCancel(ctx), topic, ev); err != nil {
		e.log.WarnContext(ctx, "notification dropped", "topic", topic, "event", name, "err", err)
	}
}

func isNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

func lockItem(tx Tx, id string) (*models.Item, error) {
	it, err := tx.LockItem(id)
	if isNotFound(err) {
		return nil, NotFound("Item not found")
	}
	if err != nil {
		return nil, unknown("load item", err)
	}
	return it, nil
}

func lockRequest(tx Tx, id string) (*models.BorrowRequest, error) {
	br, err := tx.LockBorrowRequest(id)
	if isNotFound(err) {
		return nil, NotFound("Borrow request not found")
	}
	if err != nil {
		return nil, unknown("load borrow request", err)
	}
	return br, nil
}

func findUser(tx Tx, id string) (*models.User, error) {
	u, err := tx.FindUser(id)
	if isNotFound(err) {
		return nil, NotFound("User not found")
	}
	if err != nil {
		return nil, unknown("load user", err)
	}
	return u, nil
}

// 分类只用来丰富通知内容，查不到不算错
func findCategory(tx Tx, id string) *models.Category {
	c, err := tx.FindCategory(id)
	if err != nil {
		return nil
	}
	return c
}

func setItemStatus(tx Tx, item *models.Item, to models.ItemStatus, conflict string, from ...models.ItemStatus) error {
	ok, err := tx.SetItemStatus(item.ID, from, to)
	if err != nil {
		return unknown("update item status", err)
	}
	if !ok {
		return InvalidState(conflict)
	}
	item.Status = to
	return nil
}
