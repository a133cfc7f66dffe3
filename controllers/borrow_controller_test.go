package controllers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"asset_borrow_tracker/app"
	"asset_borrow_tracker/lifecycle"
	"asset_borrow_tracker/models"
	"asset_borrow_tracker/testutil"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type auditRecorder struct {
	mu      sync.Mutex
	actions []string
}

func (a *auditRecorder) LogAudit(_ context.Context, actorID, action, entityType, entityID string, _ *string) (*models.AuditLog, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actions = append(a.actions, action+" "+entityType)
	return &models.AuditLog{ActorID: actorID, Action: action, EntityType: entityType, EntityID: entityID}, nil
}

type apiFixture struct {
	store  *testutil.MemStore
	pub    *testutil.Recorder
	audit  *auditRecorder
	router *gin.Engine
}

// newAPI wires the borrow and maintenance handlers behind a fake auth step
// that reads the caller from X-User / X-Admin headers.
func newAPI(t *testing.T) apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := testutil.NewMemStore()
	store.AddCategory(models.Category{ID: "cat-1", Name: "Cameras"})
	store.AddItem(models.Item{ID: "item-1", Name: "Camera", CategoryID: "cat-1"})
	store.AddItem(models.Item{ID: "item-2", Name: "Tripod", CategoryID: "cat-1"})
	store.AddUser(models.User{ID: "alice", Name: "Alice", Role: models.RoleUser})
	store.AddUser(models.User{ID: "bob", Name: "Bob", Role: models.RoleUser})
	store.AddUser(models.User{ID: "root", Name: "Root", Role: models.RoleAdmin})

	pub := &testutil.Recorder{}
	audit := &auditRecorder{}
	s := &Srv{
		Engine:  lifecycle.New(store, pub),
		Borrows: store,
		Audit:   audit,
	}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(app.CtxUserID, c.GetHeader("X-User"))
		c.Set(app.CtxIsAdmin, c.GetHeader("X-Admin") == "1")
	})
	bc := NewBorrowController(s)
	mc := NewMaintenanceController(s)
	r.POST("/api/borrow", bc.Create)
	r.PUT("/api/borrow/:id/approve", app.AdminOnly(), bc.Approve)
	r.PUT("/api/borrow/:id/reject", app.AdminOnly(), bc.Reject)
	r.PUT("/api/borrow/:id/return", bc.Return)
	r.POST("/api/maintenance/:id/start", app.AdminOnly(), mc.Start)
	r.POST("/api/maintenance/:id/complete", app.AdminOnly(), mc.Complete)

	return apiFixture{store: store, pub: pub, audit: audit, router: r}
}

type caller struct {
	id    string
	admin bool
}

var (
	asAdmin = caller{"root", true}
	asAlice = caller{"alice", false}
	asBob   = caller{"bob", false}
)

func (f apiFixture) call(who caller, method, path, body string) (int, map[string]any) {
	var rd *bytes.Reader
	if body != "" {
		rd = bytes.NewReader([]byte(body))
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User", who.id)
	if who.admin {
		req.Header.Set("X-Admin", "1")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var out map[string]any
	_ = jsoniter.Unmarshal(w.Body.Bytes(), &out)
	return w.Code, out
}

func (f apiFixture) borrow(t *testing.T, who caller, itemID, userID string) string {
	t.Helper()
	code, body := f.call(who, http.MethodPost, "/api/borrow", `{"itemId":"`+itemID+`","userId":"`+userID+`"}`)
	require.Equal(t, http.StatusCreated, code, body)
	return body["id"].(string)
}

func TestBorrowFlowOverHTTP(t *testing.T) {
	f := newAPI(t)

	id := f.borrow(t, asAlice, "item-1", "alice")
	it, _ := f.store.Item("item-1")
	assert.Equal(t, models.ItemBorrowed, it.Status)

	code, body := f.call(asAdmin, http.MethodPut, "/api/borrow/"+id+"/approve", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "approved", body["status"])

	code, body = f.call(asAlice, http.MethodPut, "/api/borrow/"+id+"/return", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "returned", body["status"])
	assert.NotNil(t, body["returnDate"])

	code, body = f.call(asAlice, http.MethodPut, "/api/borrow/"+id+"/return", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Borrow request has already been returned", body["message"])
	assert.NotContains(t, body, "error")

	assert.Equal(t, []string{"CREATE BorrowRequest", "APPROVE BorrowRequest", "RETURN BorrowRequest"}, f.audit.actions)
	assert.Len(t, f.pub.All(), 3)
}

func TestCreateBorrowErrors(t *testing.T) {
	f := newAPI(t)

	code, body := f.call(asAdmin, http.MethodPost, "/api/borrow", `{"itemId":"item-1"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "userId is required", body["message"])

	code, body = f.call(asAdmin, http.MethodPost, "/api/borrow", `{"itemId":"nope","userId":"alice"}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Item not found", body["message"])

	code, body = f.call(asAdmin, http.MethodPost, "/api/borrow", `{"itemId":"item-1","userId":"ghost"}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "User not found", body["message"])

	code, _ = f.call(asAlice, http.MethodPost, "/api/borrow", `{"itemId":"item-1","userId":"bob"}`)
	assert.Equal(t, http.StatusForbidden, code)

	f.borrow(t, asAdmin, "item-1", "bob")
	code, body = f.call(asAlice, http.MethodPost, "/api/borrow", `{"itemId":"item-1","userId":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Item is not available for borrowing", body["message"])
}

func TestReturnOwnership(t *testing.T) {
	f := newAPI(t)
	id := f.borrow(t, asAdmin, "item-1", "alice")

	code, _ := f.call(asBob, http.MethodPut, "/api/borrow/"+id+"/return", "")
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = f.call(asBob, http.MethodPut, "/api/borrow/missing/return", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = f.call(asAdmin, http.MethodPut, "/api/borrow/"+id+"/return", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestRejectIsAdminOnly(t *testing.T) {
	f := newAPI(t)
	id := f.borrow(t, asAlice, "item-2", "alice")

	code, _ := f.call(asAlice, http.MethodPut, "/api/borrow/"+id+"/reject", "")
	assert.Equal(t, http.StatusForbidden, code)

	code, body := f.call(asAdmin, http.MethodPut, "/api/borrow/"+id+"/reject", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "rejected", body["status"])
	it, _ := f.store.Item("item-2")
	assert.Equal(t, models.ItemAvailable, it.Status)
}

func TestMaintenanceEndpoints(t *testing.T) {
	f := newAPI(t)

	code, body := f.call(asAdmin, http.MethodPost, "/api/maintenance/item-2/start", `{"reason":"lens cleaning"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "maintenance", body["status"])

	code, body = f.call(asAdmin, http.MethodPost, "/api/maintenance/item-2/start", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Item is not available for maintenance", body["message"])

	code, body = f.call(asAdmin, http.MethodPost, "/api/maintenance/item-2/complete", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "available", body["status"])

	code, _ = f.call(asAdmin, http.MethodPost, "/api/maintenance/ghost/complete", "")
	assert.Equal(t, http.StatusNotFound, code)

	logs := f.store.MaintenanceLogs("item-2")
	require.Len(t, logs, 1)
	assert.Equal(t, "lens cleaning", logs[0].Reason)
	assert.NotNil(t, logs[0].EndDate)
}

func TestStoreFailureIsInternalError(t *testing.T) {
	f := newAPI(t)
	f.store.FailNextTx = errors.New("connection reset")

	code, body := f.call(asAdmin, http.MethodPost, "/api/borrow", `{"itemId":"item-1","userId":"alice"}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Failed to create borrow request", body["message"])
	assert.Contains(t, body["error"], "connection reset")
}

func TestMaintenanceRejectsMalformedBody(t *testing.T) {
	f := newAPI(t)

	code, body := f.call(asAdmin, http.MethodPost, "/api/maintenance/item-2/start", `{"reason":`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid request body", body["message"])
	it, _ := f.store.Item("item-2")
	assert.Equal(t, models.ItemAvailable, it.Status)

	code, _ = f.call(asAdmin, http.MethodPost, "/api/maintenance/item-2/start", "")
	require.Equal(t, http.StatusOK, code)
	code, body = f.call(asAdmin, http.MethodPost, "/api/maintenance/item-2/complete", `notes`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid request body", body["message"])
}
