package app

import (
	"context"
	"net/http"
	"strings"

	"asset_borrow_tracker/config"
	"asset_borrow_tracker/models"
	"asset_borrow_tracker/session"

	"github.com/gin-gonic/gin"
)

const (
	AppSessionCookie = "app_session"

	CtxUserID    = "userID"
	CtxUser      = "user"
	CtxIsAdmin   = "isAdmin"
	CtxSessionID = "sessionID"
)

type UserFinder interface {
	FindUserByID(ctx context.Context, id string) (*models.User, error)
}

type SessionStore interface {
	Get(ctx context.Context, id string) (*session.AppSession, error)
	Delete(ctx context.Context, id string) error
}

// bearerOrCookie 优先 Authorization 头；EventSource 不能带头，只能走 cookie
func bearerOrCookie(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
	}
	if ck, err := c.Cookie(AppSessionCookie); err == nil {
		return ck
	}
	return ""
}

func AuthRequired(tokens *TokenIssuer, sessions SessionStore, users UserFinder, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerOrCookie(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"message": "Authentication required"})
			return
		}
		claims, err := tokens.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"message": "Invalid token"})
			return
		}
		// 会话被登出或角色变更撤销后，token 即失效
		as, err := sessions.Get(c.Request.Context(), claims.ID)
		if err != nil || as.UserID != claims.Subject {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"message": "Session expired"})
			return
		}

		// 确认用户仍存在，并把 isAdmin 放进 Context（只查一次）
		u, err := users.FindUserByID(c.Request.Context(), as.UserID)
		if err != nil {
			_ = sessions.Delete(c.Request.Context(), claims.ID)
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"message": "User not found"})
			return
		}
		c.Set(CtxUserID, u.ID)
		c.Set(CtxUser, u)
		c.Set(CtxSessionID, claims.ID)
		c.Set(CtxIsAdmin, u.IsAdmin() || cfg.IsAdminEmail(u.Email))

		c.Next()
	}
}

// AdminOnly 必须放在 AuthRequired 之后
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"message": "Admin access required"})
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CtxUser); ok {
		u, _ := v.(*models.User)
		return u
	}
	return nil
}

func IsAdmin(c *gin.Context) bool { return c.GetBool(CtxIsAdmin) }
