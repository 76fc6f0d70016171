package search

import (
	"context"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
)

const eventWriteTimeout = 5 * time.Second

// Events godoc
// @Summary Stream session state
// @Description Upgrade to a websocket that receives the session snapshot now and after every change. Browsers may pass the token in the token query parameter.
// @Tags sessions
// @Security BearerAuth
// @Param token query string false "Session token"
// @Success 101
// @Failure 401 {object} api.Response{error=api.ErrorInfo}
// @Failure 410 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/sessions/current/events [get]
func (h *Handler) Events(c *gin.Context) {
	session := sessionFrom(c)

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		// Accept has already written the failure response
		h.logger.Debug("websocket upgrade failed", map[string]interface{}{"error": err.Error()})
		return
	}
	defer conn.CloseNow()

	// clients only listen; CloseRead handles control frames and reports disconnects
	ctx := conn.CloseRead(c.Request.Context())

	updates, cancel := session.Coordinator.Subscribe()
	defer cancel()

	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "session closed")
				return
			}
			if err := writeSnapshot(ctx, conn, snap); err != nil {
				h.logger.Debug("websocket write failed", map[string]interface{}{
					"session_id": session.ID.String(),
					"error":      err.Error(),
				})
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func writeSnapshot(ctx context.Context, conn *websocket.Conn, snap Snapshot) error {
	ctx, cancel := context.WithTimeout(ctx, eventWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, ToSnapshotResponse(snap))
}
