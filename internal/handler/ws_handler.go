package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/learnforge/learnforge-backend/internal/model"
	"github.com/learnforge/learnforge-backend/internal/service"
	ws "github.com/learnforge/learnforge-backend/internal/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams execution status over WebSocket.
type WSHandler struct {
	executionService *service.ExecutionService
	log              zerolog.Logger
	upgrader         websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(executionService *service.ExecutionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		executionService: executionService,
		log:              log.With().Str("component", "ws_handler").Logger(),
		upgrader:         buildUpgrader(allowedOrigins),
	}
}

// ExecuteStream godoc
// WS /ws/v1/execute/stream
// Upgrades to WebSocket; each "run" message is submitted to Judge0 and
// status transitions are pushed back until the terminal result.
func (h *WSHandler) ExecuteStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("remote", conn.RemoteAddr().String()).Logger()
	wsLog.Info().Msg("Client connected")

	for {
		var msg ws.RunRequest
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}

		switch msg.Action {
		case ws.ActionRun:
			h.handleRun(c, conn, wsLog, &msg)
		case ws.ActionPing:
			ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			ws.WriteError(conn, "unknown action: "+string(msg.Action))
		}
	}
}

// handleRun submits one run and streams its status transitions.
func (h *WSHandler) handleRun(c *gin.Context, conn *websocket.Conn, wsLog zerolog.Logger, msg *ws.RunRequest) {
	req := &model.RunCodeRequest{
		Language:             msg.Language,
		SourceCode:           msg.SourceCode,
		Stdin:                msg.Stdin,
		CommandLineArguments: msg.CommandLineArguments,
	}

	outcome, err := h.executionService.Watch(c.Request.Context(), req, func(status model.StatusInfo) {
		ws.WriteTyped(conn, ws.StatusResponse{Event: ws.EventStatus, Status: status})
	})
	if err != nil {
		wsLog.Error().Err(err).Str("language", msg.Language).Msg("Streamed run failed")
		ws.WriteError(conn, err.Error())
		return
	}

	wsLog.Info().
		Str("token", outcome.Token).
		Int("status_id", outcome.Status.ID).
		Msg("Streamed run finished")

	ws.WriteTyped(conn, ws.ResultResponse{Event: ws.EventResult, Outcome: outcome})
}
