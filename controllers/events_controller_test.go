package controllers

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"asset_borrow_tracker/app"
	"asset_borrow_tracker/notify"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nextEvent reads SSE lines until an event with the given name and returns its data line.
func nextEvent(t *testing.T, rd *bufio.Reader, name string) string {
	t.Helper()
	found := false
	for {
		line, err := rd.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		if line == "event:"+name {
			found = true
			continue
		}
		if found {
			if data, ok := strings.CutPrefix(line, "data:"); ok {
				return data
			}
		}
	}
}

func TestUserStreamDeliversOwnTopicOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	broker := notify.NewRedisBroker(rdb)

	ec := NewEventsController(&Srv{Events: broker})
	r := gin.New()
	r.GET("/api/events", func(c *gin.Context) { c.Set(app.CtxUserID, "alice") }, ec.UserStream)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	rd := bufio.NewReader(resp.Body)
	nextEvent(t, rd, "ready")

	require.NoError(t, broker.Publish(ctx, notify.UserTopic("bob"), notify.Event{Name: "borrowRequestApproved", Data: map[string]string{"id": "not-mine"}}))
	require.NoError(t, broker.Publish(ctx, notify.UserTopic("alice"), notify.Event{Name: "borrowRequestApproved", Data: map[string]string{"id": "br-1"}}))

	data := nextEvent(t, rd, "borrowRequestApproved")
	assert.JSONEq(t, `{"id":"br-1"}`, data)
}
