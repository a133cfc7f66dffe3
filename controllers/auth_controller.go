package controllers

import (
	"net/http"
	"time"

	"asset_borrow_tracker/app"

	"github.com/gin-gonic/gin"
)

type AuthController struct{ *Srv }

func NewAuthController(s *Srv) *AuthController { return &AuthController{Srv: s} }

// POST /api/auth/login {email}
// 只按邮箱登录：签发 JWT，jti 即 Redis 会话 ID
func (ac *AuthController) Login(c *gin.Context) {
	var in struct {
		Email string `json:"email" binding:"required,email"`
	}
	if !bindJSON(c, &in, "Email is required", map[string]string{
		"Email.email": "Invalid email address",
	}) {
		return
	}

	u, err := ac.Repo.FindUserByEmail(c.Request.Context(), in.Email)
	if isNotFound(err) {
		notFound(c, "User not found")
		return
	}
	if err != nil {
		serverError(c, "Login failed", err)
		return
	}

	token, jti, err := ac.Tokens.Issue(u.ID, u.Email, string(u.Role))
	if err != nil {
		serverError(c, "Login failed", err)
		return
	}
	if _, err := ac.AppSess.Create(c.Request.Context(), jti, u.ID, u.Email); err != nil {
		serverError(c, "Login failed", err)
		return
	}
	ac.setAppCookie(c.Writer, token, ac.AppSess.TTL())

	c.JSON(http.StatusOK, app.H{
		"token": token,
		"user": app.H{
			"id":      u.ID,
			"email":   u.Email,
			"name":    u.Name,
			"role":    u.Role,
			"isAdmin": u.IsAdmin() || ac.Cfg.IsAdminEmail(u.Email),
		},
	})
}

// POST /api/auth/logout
func (ac *AuthController) Logout(c *gin.Context) {
	if sid := c.GetString(app.CtxSessionID); sid != "" {
		if err := ac.AppSess.Delete(c.Request.Context(), sid); err != nil {
			app.Logger(c).Warn("delete session failed", "err", err)
		}
	}
	ac.setAppCookie(c.Writer, "", -time.Second)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /api/auth/me
func (ac *AuthController) Me(c *gin.Context) {
	u := app.CurrentUser(c)
	c.JSON(http.StatusOK, app.H{"user": u, "isAdmin": app.IsAdmin(c)})
}
