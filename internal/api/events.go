package api

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// sseHeartbeat keeps idle connections open through proxies.
const sseHeartbeat = 15 * time.Second

// streamEvents streams bus events as server-sent events. The first event
// is a status snapshot.
func (s *Server) streamEvents(c *gin.Context) {
	id := uuid.NewString()
	sub := s.eventBus.Subscribe(id)
	defer s.eventBus.Unsubscribe(id)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent("status", s.statusPayload())
	c.Writer.Flush()

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case event, ok := <-sub.Events:
			if !ok {
				return false
			}
			c.SSEvent(event.Type, event.Data)
			return true
		case t := <-heartbeat.C:
			c.SSEvent("ping", gin.H{"timestamp": t.Format(time.RFC3339)})
			return true
		}
	})
}
