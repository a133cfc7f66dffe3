package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"asset_borrow_tracker/app"
	"asset_borrow_tracker/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CategoryController struct{ *Srv }

func NewCategoryController(s *Srv) *CategoryController { return &CategoryController{Srv: s} }

// GET /api/categories
func (cc *CategoryController) List(c *gin.Context) {
	cs, err := cc.Repo.ListCategories(c.Request.Context())
	if err != nil {
		serverError(c, "Failed to fetch categories", err)
		return
	}
	c.JSON(http.StatusOK, cs)
}

// POST /api/categories {name, description?}（管理员）
func (cc *CategoryController) Create(c *gin.Context) {
	var in struct {
		Name        string  `json:"name" binding:"required"`
		Description *string `json:"description"`
	}
	if !bindJSON(c, &in, "Category name is required", nil) {
		return
	}
	cat := &models.Category{ID: uuid.NewString(), Name: strings.TrimSpace(in.Name), Description: in.Description}
	if err := cc.Repo.CreateCategory(c.Request.Context(), cat); err != nil {
		if isDuplicate(err) {
			c.JSON(http.StatusConflict, app.H{"message": fmt.Sprintf("Category %q already exists", cat.Name)})
			return
		}
		serverError(c, "Failed to create category", err)
		return
	}
	cc.audit(c, "CREATE", "Category", cat.ID, "Created category: "+cat.Name)
	c.JSON(http.StatusCreated, cat)
}
