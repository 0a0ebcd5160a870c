package server

import (
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Same-host editor clients only; tighten when exposed
	},
}

// viewStateFrame is the control frame the client sends when the panel
// gains or loses focus.
type viewStateFrame struct {
	Method  string `json:"method"`
	Visible *bool  `json:"visible"`
}

// handleStream attaches a websocket client to a view surface and pumps
// its messages. The single read loop is the per-view serialization
// point: requests from one view are dispatched in arrival order.
func (s *Server) handleStream(c *gin.Context) {
	id := c.Param("id")
	surface, ok := s.surfaces.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown view"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.String("view", id), zap.Error(err))
		return
	}

	gen := surface.attach(conn)
	surface.fireViewState(true)
	s.metrics.WSConnections.Inc()
	defer s.metrics.WSConnections.Dec()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var frame viewStateFrame
		if err := sonic.Unmarshal(raw, &frame); err == nil && frame.Method == "__viewState" {
			surface.fireViewState(frame.Visible != nil && *frame.Visible)
			continue
		}

		surface.fireMessage(raw)
	}

	// Socket close means the user closed the panel, unless a newer
	// client has already taken over the surface (page refresh).
	surface.release(gen)
}
