package relay

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"ytrelay/internal/job"
)

// Gateway terminates websocket connections and hands each session to the hub.
type Gateway struct {
	hub            *Hub
	logger         *slog.Logger
	upgrader       websocket.Upgrader
	allowedOrigins []string
}

// NewGateway constructs the websocket gateway. With an empty allow-list, only
// same-host origins may connect.
func NewGateway(hub *Hub, logger *slog.Logger, allowedOrigins []string) *Gateway {
	g := &Gateway{
		hub:            hub,
		logger:         logger,
		allowedOrigins: allowedOrigins,
	}
	g.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if len(g.allowedOrigins) == 0 {
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			}
			for _, allowed := range g.allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}
	return g
}

// HandleConnection upgrades the request and starts the session pumps. Each
// session gets a server-generated identifier for log correlation.
func (g *Gateway) HandleConnection(c *gin.Context) {
	conn, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		g.logger.Error("upgrade websocket failed", slog.Any("error", err))
		return
	}

	sessionID := uuid.NewString()
	client := &Client{
		id:     sessionID,
		hub:    g.hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		joined: make(map[job.ID]bool),
		logger: g.logger.With(
			slog.String("session_id", sessionID),
			slog.String("client_ip", c.ClientIP()),
		),
	}

	g.hub.Register(client)

	go client.writePump()
	go client.readPump()
}
