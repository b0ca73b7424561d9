package feed

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"astroseva/internal/domain"
	"astroseva/internal/modules/identity"
	"astroseva/internal/pkg/jwt"
	"astroseva/internal/pkg/response"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// WSHandler serves the live booking feed.
//
// Endpoint: GET /ws/bookings?token=JWT_TOKEN
//
// The token travels in the query because browsers cannot set headers on a
// websocket handshake. After connecting, a client may send
// {"type":"auth","token":...} to switch identity, {"type":"refresh"} to
// re-read its role, {"type":"signout"} to stop receiving rows, or
// {"type":"ping"}.
type WSHandler struct {
	hub        *Hub
	jwtService *jwt.Service
	resolver   *identity.Resolver
	upgrader   websocket.Upgrader
}

func NewWSHandler(hub *Hub, jwtService *jwt.Service, resolver *identity.Resolver, allowedOrigins []string) *WSHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &WSHandler{
		hub:        hub,
		jwtService: jwtService,
		resolver:   resolver,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed[origin]
			},
		},
	}
}

func (h *WSHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/ws/bookings", h.HandleWebSocket)
}

func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Token is required. Use ?token=YOUR_JWT_TOKEN")
		return
	}
	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
		return
	}

	tracker := identity.NewTracker(h.resolver)
	res, err := tracker.Track(c.Request.Context(), claims.ActorID())
	if err != nil {
		response.Error(c, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "Could not resolve role")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("feed: websocket upgrade failed: %v", err)
		return
	}

	client := NewClient(tracker)
	h.hub.Register(client)
	client.enqueue(NewHelloEvent(res.Actor))
	log.Printf("feed: connected actor_id=%s role=%s", res.Actor.ID, res.Actor.Role)

	go h.writePump(conn, client)
	h.readPump(conn, client)
}

func (h *WSHandler) writePump(conn *websocket.Conn, client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.Send():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *WSHandler) readPump(conn *websocket.Conn, client *Client) {
	defer func() {
		actor := client.Actor()
		h.hub.Unregister(client)
		_ = conn.Close()
		log.Printf("feed: disconnected actor_id=%s", actor.ID)
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("feed: read error actor_id=%s: %v", client.Actor().ID, err)
			}
			return
		}

		var msg WSClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			client.enqueue(NewErrorEvent("INVALID_JSON", "Failed to parse message"))
			continue
		}
		h.handle(client, msg)
	}
}

func (h *WSHandler) handle(client *Client, msg WSClientMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	switch msg.Type {
	case "ping":
		client.enqueue(NewPongEvent())
	case "auth":
		claims, err := h.jwtService.ValidateToken(msg.Token)
		if err != nil {
			client.enqueue(NewErrorEvent("INVALID_TOKEN", "Invalid or expired token"))
			return
		}
		res, err := client.tracker.Track(ctx, claims.ActorID())
		if err != nil {
			client.enqueue(NewErrorEvent("UPSTREAM_UNAVAILABLE", "Could not resolve role"))
			return
		}
		client.enqueue(NewHelloEvent(res.Actor))
	case "refresh":
		res, err := client.tracker.Refresh(ctx)
		if err != nil {
			client.enqueue(NewErrorEvent("UPSTREAM_UNAVAILABLE", "Could not resolve role"))
			return
		}
		client.enqueue(NewHelloEvent(res.Actor))
	case "signout":
		client.tracker.SignOut(ctx)
		client.enqueue(NewHelloEvent(domain.Actor{}))
	default:
		client.enqueue(NewErrorEvent("UNKNOWN_TYPE", "Unknown message type: "+msg.Type))
	}
}
