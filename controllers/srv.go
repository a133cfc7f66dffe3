// controllers/srv.go
package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"asset_borrow_tracker/app"
	"asset_borrow_tracker/archive"
	"asset_borrow_tracker/config"
	"asset_borrow_tracker/db"
	"asset_borrow_tracker/lifecycle"
	"asset_borrow_tracker/models"
	"asset_borrow_tracker/notify"
	"asset_borrow_tracker/session"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type Auditor interface {
	LogAudit(ctx context.Context, actorID, action, entityType, entityID string, details *string) (*models.AuditLog, error)
}

type Subscriber interface {
	Subscribe(ctx context.Context, topics ...string) (*notify.Subscription, error)
}

type BorrowFinder interface {
	FindBorrowRequest(ctx context.Context, id string) (*models.BorrowRequest, error)
}

type Srv struct {
	Repo     *db.Repo
	Engine   *lifecycle.Engine
	Borrows  BorrowFinder
	Audit    Auditor
	AppSess  *session.AppSessionStore
	Tokens   *app.TokenIssuer
	Events   Subscriber
	Archiver *archive.Archiver
	RDB      *redis.Client
	Cfg      config.Config
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Repo:     a.Repo,
		Engine:   a.Engine,
		Borrows:  a.Repo,
		Audit:    a.Repo,
		AppSess:  a.AppSessions(),
		Tokens:   a.Tokens,
		Events:   a.Broker,
		Archiver: archive.New(a.Repo, a.Config.ArchiveDir, a.Config.ArchiveAfter),
		RDB:      a.RDB,
		Cfg:      a.Config,
	}
}

// --- helpers ---

// 统一设置业务会话 Cookie；maxAge<0 表示删除
func (s *Srv) setAppCookie(w http.ResponseWriter, token string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.Cfg.SecureCookies(),
		MaxAge:   int(maxAge / time.Second),
	})
}

// audit 尽力而为：写失败只记日志
func (s *Srv) audit(c *gin.Context, action, entityType, entityID, details string) {
	if s.Audit == nil {
		return
	}
	var d *string
	if details != "" {
		d = &details
	}
	if _, err := s.Audit.LogAudit(c.Request.Context(), c.GetString(app.CtxUserID), action, entityType, entityID, d); err != nil {
		app.Logger(c).Warn("audit log failed", "action", action, "entity", entityType, "entity_id", entityID, "err", err)
	}
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", c.DefaultQuery("limit", "20")))
	return page, size
}
