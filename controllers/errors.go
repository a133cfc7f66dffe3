package controllers

import (
	"errors"
	"io"
	"net/http"

	"asset_borrow_tracker/app"
	"asset_borrow_tracker/lifecycle"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// respondError 把 lifecycle 错误映射成 HTTP 状态码；内部细节只在 500 时带上
func respondError(c *gin.Context, err error, fallback string) {
	var le *lifecycle.Error
	switch {
	case errors.As(err, &le) && le.Kind == lifecycle.KindNotFound:
		c.JSON(http.StatusNotFound, app.H{"message": le.Message})
	case errors.As(err, &le) && (le.Kind == lifecycle.KindInvalidState || le.Kind == lifecycle.KindValidation):
		c.JSON(http.StatusBadRequest, app.H{"message": le.Message})
	case errors.Is(err, gorm.ErrDuplicatedKey):
		c.JSON(http.StatusConflict, app.H{"message": fallback})
	default:
		serverError(c, fallback, err)
	}
}

func serverError(c *gin.Context, msg string, err error) {
	app.Logger(c).Error(msg, "err", err)
	c.JSON(http.StatusInternalServerError, app.H{"message": msg, "error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, app.H{"message": msg})
}

func notFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, app.H{"message": msg})
}

func isNotFound(err error) bool  { return errors.Is(err, gorm.ErrRecordNotFound) }
func isDuplicate(err error) bool { return errors.Is(err, gorm.ErrDuplicatedKey) }

// bindJSON 交给 binding 标签校验；失败时按 "字段.规则" 或 "字段" 找提示语，找不到用 fallback
func bindJSON(c *gin.Context, dst any, fallback string, msgs map[string]string) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		if m, ok := msgs[fe.Field()+"."+fe.Tag()]; ok {
			badRequest(c, m)
			return false
		}
		if m, ok := msgs[fe.Field()]; ok {
			badRequest(c, m)
			return false
		}
	}
	badRequest(c, fallback)
	return false
}

// bindOptionalJSON body 可以为空；有内容就必须是合法 JSON
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "Invalid request body")
		return false
	}
	return true
}
