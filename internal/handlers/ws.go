package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/quarry-dev/quarry/internal/service"
	"github.com/quarry-dev/quarry/internal/utils"
	"go.uber.org/zap"
)

var (
	ticketFeedClients   = make(map[uint]map[*websocket.Conn]bool)
	ticketFeedClientsMu sync.RWMutex
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// BroadcastTicketRefresh tells every feed subscriber of the project to
// re-fetch its ticket list.
func BroadcastTicketRefresh(projectID uint) {
	ticketFeedClientsMu.RLock()
	clients, exists := ticketFeedClients[projectID]
	if !exists || len(clients) == 0 {
		ticketFeedClientsMu.RUnlock()
		return
	}

	clientsCopy := make([]*websocket.Conn, 0, len(clients))
	for conn := range clients {
		clientsCopy = append(clientsCopy, conn)
	}
	ticketFeedClientsMu.RUnlock()

	for _, conn := range clientsCopy {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			zap.L().Warn("failed to set write deadline for broadcast", zap.Error(err))
			continue
		}

		err := conn.WriteJSON(map[string]interface{}{
			"type":       "refresh",
			"message":    "Ticket data updated",
			"project_id": projectID,
		})

		if err != nil {
			zap.L().Warn("failed to broadcast ticket refresh", zap.Error(err))
			removeTicketFeedClient(projectID, conn)
			conn.Close()
		}
	}
}

func removeTicketFeedClient(projectID uint, conn *websocket.Conn) {
	ticketFeedClientsMu.Lock()
	if clients, exists := ticketFeedClients[projectID]; exists {
		delete(clients, conn)
		if len(clients) == 0 {
			delete(ticketFeedClients, projectID)
		}
	}
	ticketFeedClientsMu.Unlock()
}

type WsHandler struct {
	projects       *service.ProjectService
	allowedOrigins []string
}

func NewWsHandler(projects *service.ProjectService, allowedOrigins []string) *WsHandler {
	return &WsHandler{projects: projects, allowedOrigins: allowedOrigins}
}

// TicketFeed subscribes the caller to refresh events for one project. The
// subscription is gated by the same membership lookup as reading the project.
func (h *WsHandler) TicketFeed(c *gin.Context) {
	userID, err := utils.GetCurrentUserID(c)

	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, err := utils.GetProjectID(c)

	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.projects.Get(userID, projectID); err != nil {
		respondServiceError(c, err)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range h.allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		zap.L().Warn("failed to set initial read deadline", zap.Error(err))
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	ticketFeedClientsMu.Lock()
	if ticketFeedClients[projectID] == nil {
		ticketFeedClients[projectID] = make(map[*websocket.Conn]bool)
	}
	ticketFeedClients[projectID][conn] = true
	ticketFeedClientsMu.Unlock()

	defer func() {
		removeTicketFeedClient(projectID, conn)
		conn.Close()
	}()

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		zap.L().Warn("failed to set write deadline for welcome message", zap.Error(err))
		return
	}

	err = conn.WriteJSON(map[string]interface{}{
		"type":       "connected",
		"message":    "Ticket feed connection established",
		"project_id": projectID,
	})

	if err != nil {
		zap.L().Warn("failed to send welcome message", zap.Error(err))
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	go func() {
		for range ticker.C {
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			break
		}

		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.L().Warn("ticket feed connection error",
					zap.Uint("project_id", projectID),
					zap.Error(err))
			}
			break
		}
	}
}
