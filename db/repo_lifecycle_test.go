package db

import (
	"context"
	"regexp"
	"testing"
	"time"

	"asset_borrow_tracker/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// dryRunTx 只生成 SQL 不连库，记录每条语句
func dryRunTx(t *testing.T) (gormTx, *[]string) {
	t.Helper()
	gdb, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=127.0.0.1 user=test dbname=test sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		TranslateError:       true,
	})
	require.NoError(t, err)

	var sqls []string
	capture := func(d *gorm.DB) { sqls = append(sqls, d.Statement.SQL.String()) }
	require.NoError(t, gdb.Callback().Query().After("gorm:query").Register("test:capture_query", capture))
	require.NoError(t, gdb.Callback().Update().After("gorm:update").Register("test:capture_update", capture))
	require.NoError(t, gdb.Callback().Create().After("gorm:create").Register("test:capture_create", capture))
	return gormTx{gdb.Session(&gorm.Session{})}, &sqls
}

func TestLockStatementsUseForUpdate(t *testing.T) {
	tx, sqls := dryRunTx(t)

	_, err := tx.LockItem(uuid.NewString())
	require.NoError(t, err)
	_, err = tx.LockBorrowRequest(uuid.NewString())
	require.NoError(t, err)

	require.Len(t, *sqls, 2)
	assert.Contains(t, (*sqls)[0], `FROM "items"`)
	assert.Contains(t, (*sqls)[0], "FOR UPDATE")
	assert.Contains(t, (*sqls)[1], `FROM "borrow_requests"`)
	assert.Contains(t, (*sqls)[1], "FOR UPDATE")
}

func TestSetItemStatusIsGuardedByCurrentStatus(t *testing.T) {
	tx, sqls := dryRunTx(t)

	ok, err := tx.SetItemStatus(uuid.NewString(), []models.ItemStatus{models.ItemBorrowed, models.ItemAvailable}, models.ItemBorrowed)
	require.NoError(t, err)
	assert.False(t, ok) // dry run 不影响任何行

	require.Len(t, *sqls, 1)
	assert.Contains(t, (*sqls)[0], `UPDATE "items" SET`)
	assert.Regexp(t, regexp.MustCompile(`id = \$\d+ AND status IN \(\$\d+,\$\d+\)`), (*sqls)[0])
}

func TestCloseMaintenanceOnlyTouchesOpenRow(t *testing.T) {
	tx, sqls := dryRunTx(t)

	_, err := tx.CloseMaintenance(uuid.NewString(), "done", time.Now())
	require.NoError(t, err)
	require.Len(t, *sqls, 1)
	assert.Contains(t, (*sqls)[0], `UPDATE "maintenance_logs"`)
	assert.Contains(t, (*sqls)[0], "end_date IS NULL")
}

func TestCreateBorrowRequestSkipsAssociations(t *testing.T) {
	tx, sqls := dryRunTx(t)

	br := &models.BorrowRequest{
		ID:         uuid.NewString(),
		ItemID:     uuid.NewString(),
		Item:       &models.Item{ID: uuid.NewString(), Name: "Camera"},
		UserID:     uuid.NewString(),
		Status:     models.BorrowPending,
		BorrowDate: time.Now(),
	}
	require.NoError(t, tx.CreateBorrowRequest(br))
	require.Len(t, *sqls, 1)
	assert.Contains(t, (*sqls)[0], `INSERT INTO "borrow_requests"`)
}

func TestMalformedIDsAreNotFoundWithoutQuery(t *testing.T) {
	tx, sqls := dryRunTx(t)

	_, err := tx.LockItem("abc")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = tx.LockBorrowRequest("abc")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = tx.FindUser("ghost")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = tx.FindCategory("")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Empty(t, *sqls)

	repo := NewRepo(tx.tx)
	ctx := context.Background()
	_, err = repo.FindItemByID(ctx, "abc")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = repo.FindBorrowRequest(ctx, "abc")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = repo.UpdateUserRole(ctx, "abc", models.RoleAdmin)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	n, err := repo.CountCategoriesByID(ctx, []string{"abc", "cat-1"})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, *sqls)

	assert.True(t, validID(uuid.NewString()))
	assert.False(t, validID("item-1"))
}
