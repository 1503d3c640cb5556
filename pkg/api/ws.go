package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	ws "github.com/gorilla/websocket"

	"github.com/aria-assistant/aria/pkg/assistant"
	"github.com/aria-assistant/aria/pkg/intent"
	"github.com/aria-assistant/aria/pkg/types"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API key middleware already gates the upgrade; browser clients
	// connect from arbitrary origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWebSocket runs the persistent command channel: each text frame is one
// raw utterance, each reply one CommandResponse. This transport carries no
// structured conversation context. A failing command answers with an error
// frame and the connection stays open; only transport errors end the session.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	connID := types.GenerateConnID()
	log := s.log.With("conn_id", connID)
	log.Info("websocket connected", "remote", conn.RemoteAddr().String())

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if wsIsClosed(err) {
				log.Info("websocket closed")
			} else {
				log.Error("websocket read failed", "error", err)
			}
			return
		}

		resp := s.serveFrame(c, log, payload)
		if err := conn.WriteJSON(resp); err != nil {
			log.Error("websocket write failed", "error", err)
			return
		}
	}
}

// serveFrame processes one inbound utterance with a panic boundary so a
// single bad command cannot take the whole connection down.
func (s *Server) serveFrame(c *gin.Context, log *slog.Logger, payload []byte) (resp *assistant.CommandResponse) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("command panicked", "panic", r)
			resp = errorFrame("internal error while processing command")
		}
	}()

	text := string(payload)
	log.Info("command received", "text", text)
	return s.processor.Process(c.Request.Context(), text, nil)
}

func errorFrame(msg string) *assistant.CommandResponse {
	return &assistant.CommandResponse{
		Type:  string(intent.TypeError),
		Error: msg,
	}
}

func wsIsClosed(err error) bool {
	return ws.IsCloseError(err,
		ws.CloseNormalClosure,
		ws.CloseGoingAway,
		ws.CloseAbnormalClosure)
}
