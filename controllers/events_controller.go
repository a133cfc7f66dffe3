package controllers

import (
	"io"
	"net/http"
	"time"

	"asset_borrow_tracker/app"
	"asset_borrow_tracker/notify"

	"github.com/gin-gonic/gin"
)

const sseHeartbeat = 25 * time.Second

type EventsController struct{ *Srv }

func NewEventsController(s *Srv) *EventsController { return &EventsController{Srv: s} }

// GET /api/events：当前用户自己的通知
func (ec *EventsController) UserStream(c *gin.Context) {
	ec.stream(c, notify.UserTopic(c.GetString(app.CtxUserID)))
}

// GET /api/events/admin（管理员）
func (ec *EventsController) AdminStream(c *gin.Context) {
	ec.stream(c, notify.TopicAdmins)
}

// stream 只推送订阅之后发生的事件，断线期间的事件不补发
func (ec *EventsController) stream(c *gin.Context, topics ...string) {
	ctx := c.Request.Context()
	sub, err := ec.Events.Subscribe(ctx, topics...)
	if err != nil {
		serverError(c, "Failed to subscribe", err)
		return
	}
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.SSEvent("ready", app.H{"topics": topics})
	c.Writer.Flush()

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case msg, ok := <-sub.C():
			if !ok {
				return false
			}
			// Data 已经是 JSON，按字符串原样写出
			c.SSEvent(msg.Name, string(msg.Data))
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
}
