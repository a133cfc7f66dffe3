package controllers

import (
	"net/http"

	"asset_borrow_tracker/app"
	"asset_borrow_tracker/db"

	"github.com/gin-gonic/gin"
)

type BorrowController struct{ *Srv }

func NewBorrowController(s *Srv) *BorrowController { return &BorrowController{Srv: s} }

// POST /api/borrow {itemId, userId}
// 普通用户只能替自己借；管理员可以替任何人登记
func (bc *BorrowController) Create(c *gin.Context) {
	var in struct {
		ItemID string `json:"itemId" binding:"required"`
		UserID string `json:"userId" binding:"required"`
	}
	if !bindJSON(c, &in, "Invalid request body", map[string]string{
		"ItemID": "itemId is required",
		"UserID": "userId is required",
	}) {
		return
	}
	if !app.IsAdmin(c) && in.UserID != c.GetString(app.CtxUserID) {
		c.JSON(http.StatusForbidden, app.H{"message": "You can only borrow items for yourself"})
		return
	}

	br, err := bc.Engine.CreateBorrowRequest(c.Request.Context(), in.ItemID, in.UserID)
	if err != nil {
		respondError(c, err, "Failed to create borrow request")
		return
	}
	bc.audit(c, "CREATE", "BorrowRequest", br.ID, "Requested item: "+br.Item.Name)
	c.JSON(http.StatusCreated, br)
}

// PUT /api/borrow/:id/approve（管理员）
func (bc *BorrowController) Approve(c *gin.Context) {
	br, err := bc.Engine.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to approve borrow request")
		return
	}
	bc.audit(c, "APPROVE", "BorrowRequest", br.ID, "")
	c.JSON(http.StatusOK, br)
}

// PUT /api/borrow/:id/reject（管理员）
func (bc *BorrowController) Reject(c *gin.Context) {
	br, err := bc.Engine.Reject(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to reject borrow request")
		return
	}
	bc.audit(c, "REJECT", "BorrowRequest", br.ID, "")
	c.JSON(http.StatusOK, br)
}

// PUT /api/borrow/:id/return
// 普通用户只能归还自己的申请
func (bc *BorrowController) Return(c *gin.Context) {
	id := c.Param("id")
	if !app.IsAdmin(c) {
		owned, err := bc.Borrows.FindBorrowRequest(c.Request.Context(), id)
		if isNotFound(err) {
			notFound(c, "Borrow request not found")
			return
		}
		if err != nil {
			serverError(c, "Failed to return item", err)
			return
		}
		if owned.UserID != c.GetString(app.CtxUserID) {
			c.JSON(http.StatusForbidden, app.H{"message": "You can only return your own items"})
			return
		}
	}

	br, err := bc.Engine.Return(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to return item")
		return
	}
	bc.audit(c, "RETURN", "BorrowRequest", br.ID, "")
	c.JSON(http.StatusOK, br)
}

// GET /api/borrow?status=&userId=&itemId=&page=&size=（管理员）
func (bc *BorrowController) List(c *gin.Context) {
	page, size := pageParams(c)
	res, err := bc.Repo.ListBorrowRequests(c.Request.Context(), db.BorrowQuery{
		UserID: c.Query("userId"),
		ItemID: c.Query("itemId"),
		Status: c.Query("status"),
		Page:   page,
		Size:   size,
	})
	if err != nil {
		serverError(c, "Failed to fetch borrow requests", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/borrow/mine
func (bc *BorrowController) Mine(c *gin.Context) {
	page, size := pageParams(c)
	res, err := bc.Repo.ListBorrowRequests(c.Request.Context(), db.BorrowQuery{
		UserID: c.GetString(app.CtxUserID),
		Status: c.Query("status"),
		Page:   page,
		Size:   size,
	})
	if err != nil {
		serverError(c, "Failed to fetch borrow requests", err)
		return
	}
	c.JSON(http.StatusOK, res)
}
