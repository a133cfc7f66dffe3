package controllers

import (
	"net/http"
	"strings"

	"asset_borrow_tracker/app"
	"asset_borrow_tracker/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserController struct{ *Srv }

func NewUserController(s *Srv) *UserController { return &UserController{Srv: s} }

// GET /api/users?q=alice&page=1&size=20
func (uc *UserController) ListUsers(c *gin.Context) {
	page, size := pageParams(c)
	res, err := uc.Repo.ListUsers(c.Request.Context(), c.Query("q"), page, size)
	if err != nil {
		serverError(c, "Failed to fetch users", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/users {name, email, role?}
func (uc *UserController) CreateUser(c *gin.Context) {
	var in struct {
		Name  string `json:"name" binding:"required"`
		Email string `json:"email" binding:"required,email"`
		Role  string `json:"role" binding:"omitempty,oneof=admin user"`
	}
	if !bindJSON(c, &in, "Name and email are required", map[string]string{
		"Email.email": "Invalid email address",
		"Role":        "Valid role (admin or user) is required",
	}) {
		return
	}
	role := models.RoleUser
	if in.Role != "" {
		role = models.Role(in.Role)
	}

	u := &models.User{ID: uuid.NewString(), Name: strings.TrimSpace(in.Name), Email: in.Email, Role: role}
	if err := uc.Repo.CreateUser(c.Request.Context(), u); err != nil {
		if isDuplicate(err) {
			c.JSON(http.StatusConflict, app.H{"message": "User with this email already exists"})
			return
		}
		serverError(c, "Failed to create user", err)
		return
	}
	uc.audit(c, "CREATE", "User", u.ID, "Created user: "+u.Email)
	c.JSON(http.StatusCreated, u)
}

// PUT /api/users/:id/role {role}
func (uc *UserController) UpdateRole(c *gin.Context) {
	var in struct {
		Role string `json:"role" binding:"required,oneof=admin user"`
	}
	if !bindJSON(c, &in, "Valid role (admin or user) is required", nil) {
		return
	}
	role := models.Role(in.Role)

	id := c.Param("id")
	// 不允许自己降级，避免锁死
	if id == c.GetString(app.CtxUserID) && role != models.RoleAdmin {
		badRequest(c, "You cannot remove your own admin role")
		return
	}

	u, err := uc.Repo.UpdateUserRole(c.Request.Context(), id, role)
	if isNotFound(err) {
		notFound(c, "User not found")
		return
	}
	if err != nil {
		serverError(c, "Failed to update user role", err)
		return
	}
	// 角色变了，旧 token 里的 role 作废：撤销该用户的所有会话
	if err := uc.AppSess.RevokeAllForUser(c.Request.Context(), id); err != nil {
		app.Logger(c).Warn("revoke sessions failed", "user_id", id, "err", err)
	}
	uc.audit(c, "UPDATE_ROLE", "User", u.ID, "Role set to "+string(role))
	c.JSON(http.StatusOK, u)
}
