// controllers/item_controller.go
package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"asset_borrow_tracker/app"
	"asset_borrow_tracker/db"
	"asset_borrow_tracker/models"
	"asset_borrow_tracker/qr"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ItemController struct{ *Srv }

func NewItemController(s *Srv) *ItemController { return &ItemController{Srv: s} }

type itemInput struct {
	Name         string `json:"name" binding:"required"`
	SerialNumber string `json:"serialNumber" binding:"required"`
	QRCode       string `json:"qrCode" binding:"required"`
	CategoryID   string `json:"categoryId" binding:"required"`
}

func (in itemInput) toItem() models.Item {
	return models.Item{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		SerialNumber: strings.TrimSpace(in.SerialNumber),
		QRCode:       strings.TrimSpace(in.QRCode),
		CategoryID:   strings.TrimSpace(in.CategoryID),
	}
}

// POST /api/items（管理员）
func (ic *ItemController) CreateItem(c *gin.Context) {
	var in itemInput
	if !bindJSON(c, &in, "All fields are required", nil) {
		return
	}
	it := in.toItem()
	if _, err := ic.Repo.FindCategoryByID(c.Request.Context(), it.CategoryID); err != nil {
		if isNotFound(err) {
			notFound(c, "Category not found")
			return
		}
		serverError(c, "Failed to create item", err)
		return
	}
	if err := ic.Repo.CreateItem(c.Request.Context(), &it); err != nil {
		if isDuplicate(err) {
			c.JSON(http.StatusConflict, app.H{"message": "Serial number or QR code already in use"})
			return
		}
		serverError(c, "Failed to create item", err)
		return
	}
	ic.audit(c, "CREATE", "Item", it.ID, "Created item: "+it.Name)
	c.JSON(http.StatusCreated, it)
}

// POST /api/items/bulk {items:[...]}，全部校验通过才写入
func (ic *ItemController) CreateBulkItems(c *gin.Context) {
	var in struct {
		Items []itemInput `json:"items" binding:"required,min=1,dive"`
	}
	if !bindJSON(c, &in, "All fields are required for each item", map[string]string{
		"Items": "Items array is required",
	}) {
		return
	}

	items := make([]models.Item, 0, len(in.Items))
	catIDs := map[string]struct{}{}
	for _, raw := range in.Items {
		it := raw.toItem()
		items = append(items, it)
		catIDs[it.CategoryID] = struct{}{}
	}

	ids := make([]string, 0, len(catIDs))
	for id := range catIDs {
		ids = append(ids, id)
	}
	n, err := ic.Repo.CountCategoriesByID(c.Request.Context(), ids)
	if err != nil {
		serverError(c, "Failed to create items", err)
		return
	}
	if int(n) != len(ids) {
		notFound(c, "Category not found")
		return
	}

	if err := ic.Repo.CreateItems(c.Request.Context(), items); err != nil {
		if isDuplicate(err) {
			c.JSON(http.StatusConflict, app.H{"message": "Serial number or QR code already in use"})
			return
		}
		serverError(c, "Failed to create items", err)
		return
	}
	ic.audit(c, "BULK_CREATE", "Item", items[0].ID, fmt.Sprintf("Created %d items", len(items)))
	c.JSON(http.StatusCreated, app.H{"message": fmt.Sprintf("Successfully created %d items", len(items)), "items": items})
}

// GET /api/items?page=&size=
func (ic *ItemController) ListItems(c *gin.Context) {
	page, size := pageParams(c)
	res, err := ic.Repo.ListItems(c.Request.Context(), page, size)
	if err != nil {
		serverError(c, "Failed to fetch items", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/items/available
func (ic *ItemController) ListAvailable(c *gin.Context) {
	items, err := ic.Repo.ListAvailableItems(c.Request.Context())
	if err != nil {
		serverError(c, "Failed to fetch available items", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GET /api/items/search?query=&category=&status=&sortBy=&order=
func (ic *ItemController) Search(c *gin.Context) {
	items, err := ic.Repo.SearchItems(c.Request.Context(), db.ItemSearch{
		Query:      c.Query("query"),
		CategoryID: c.Query("category"),
		Status:     c.Query("status"),
		SortBy:     c.Query("sortBy"),
		Order:      c.Query("order"),
	})
	if err != nil {
		serverError(c, "Failed to search items", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GET /api/items/overview（管理员）：物品 + 当前借用人
func (ic *ItemController) Overview(c *gin.Context) {
	page, size := pageParams(c)
	res, err := ic.Repo.ListItemsWithCurrentBorrow(c.Request.Context(), db.AdminItemsQuery{
		Q:      c.Query("q"),
		Status: c.Query("status"),
		Page:   page,
		Size:   size,
	})
	if err != nil {
		serverError(c, "Failed to fetch items", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/items/:id
func (ic *ItemController) GetItem(c *gin.Context) {
	it, err := ic.Repo.FindItemByID(c.Request.Context(), c.Param("id"))
	if isNotFound(err) {
		notFound(c, "Item not found")
		return
	}
	if err != nil {
		serverError(c, "Failed to fetch item", err)
		return
	}
	c.JSON(http.StatusOK, it)
}

// GET /api/items/:id/qrcode → {qrCode: "data:image/png;base64,..."}
func (ic *ItemController) QRCode(c *gin.Context) {
	it, err := ic.Repo.FindItemByID(c.Request.Context(), c.Param("id"))
	if isNotFound(err) {
		notFound(c, "Item not found")
		return
	}
	if err != nil {
		serverError(c, "Failed to generate QR code", err)
		return
	}
	url, err := qr.DataURL(qr.Payload{ID: it.ID, SerialNumber: it.SerialNumber, Name: it.Name})
	if err != nil {
		serverError(c, "Failed to generate QR code", err)
		return
	}
	c.JSON(http.StatusOK, app.H{"qrCode": url})
}

// PUT /api/items/:id（管理员）；status 只能通过借还/维护流程修改
func (ic *ItemController) UpdateItem(c *gin.Context) {
	var in struct {
		db.ItemPatch
		Status *string `json:"status"`
	}
	if !bindJSON(c, &in, "Invalid request body", nil) {
		return
	}
	if in.Status != nil {
		badRequest(c, "Item status can only be changed through borrowing or maintenance")
		return
	}
	it, err := ic.Repo.UpdateItem(c.Request.Context(), c.Param("id"), in.ItemPatch)
	switch {
	case isNotFound(err):
		notFound(c, "Item not found")
		return
	case isDuplicate(err):
		c.JSON(http.StatusConflict, app.H{"message": "Serial number or QR code already in use"})
		return
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		notFound(c, "Category not found")
		return
	case err != nil:
		serverError(c, "Failed to update item", err)
		return
	}
	ic.audit(c, "UPDATE", "Item", it.ID, "Updated item: "+it.Name)
	c.JSON(http.StatusOK, it)
}

// GET /api/items/:id/maintenance（管理员）
func (ic *ItemController) MaintenanceHistory(c *gin.Context) {
	logs, err := ic.Repo.ListMaintenanceLogs(c.Request.Context(), c.Param("id"))
	if err != nil {
		serverError(c, "Failed to fetch maintenance history", err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
