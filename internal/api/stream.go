package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rohankatakam/chaindash/internal/broadcast"
)

func writeEvent(w io.Writer, msg broadcast.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}

// SummaryStream holds a server-sent event stream open. It sends a connected
// event first, then every published summary, until the client goes away.
func (s *Server) SummaryStream(c *gin.Context) {
	id, messages, cancel := s.hub.Subscribe()
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	if err := writeEvent(c.Writer, broadcast.Message{Type: broadcast.TypeConnected}); err != nil {
		return
	}
	c.Writer.Flush()
	s.logger.WithField("subscriber", id).Debug("summary stream opened")

	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case msg, ok := <-messages:
			if !ok {
				return false
			}
			return writeEvent(w, msg) == nil
		case <-heartbeat.C:
			_, err := io.WriteString(w, ": keep-alive\n\n")
			return err == nil
		}
	})
	s.logger.WithField("subscriber", id).Debug("summary stream closed")
}
