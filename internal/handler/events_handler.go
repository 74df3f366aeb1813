package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/doctran/doctran/internal/notify"
	"github.com/doctran/doctran/internal/pkg/errcode"
	"github.com/doctran/doctran/internal/pkg/response"
	"github.com/doctran/doctran/internal/repo"
)

const sseHeartbeat = 15 * time.Second

type EventsHandler struct {
	hub  *notify.Hub
	docs *repo.DocumentRepo
}

func NewEventsHandler(hub *notify.Hub, docs *repo.DocumentRepo) *EventsHandler {
	return &EventsHandler{hub: hub, docs: docs}
}

// Stream is the server-sent events endpoint for one document's
// pipeline. Each event is written as an SSE message whose event name is
// the kind and whose data is the JSON payload. A heartbeat comment
// keeps idle connections open through proxies.
func (h *EventsHandler) Stream(c *gin.Context) {
	docID := c.Param("id")
	ctx := c.Request.Context()
	doc, err := h.docs.GetByID(ctx, docID)
	if err != nil {
		handleError(c, err)
		return
	}
	if doc.OwnerID != getOwnerID(c) {
		response.Error(c, errcode.ErrForbidden, "forbidden")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	sub := h.hub.Subscribe(docID)
	defer sub.Close()

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-sub.Events():
			if !ok {
				return false
			}
			c.SSEvent(string(event.Kind), event.Data)
			return true
		case <-heartbeat.C:
			c.SSEvent("heartbeat", gin.H{"ts": time.Now().Unix()})
			return true
		case <-ctx.Done():
			return false
		}
	})
}
