package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/models"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *DashboardServer) handleWebsockets() {
	for {
		select {
		case <-s.done:
			for client := range s.clients {
				delete(s.clients, client)
				close(client.send)
			}
			return

		case client := <-s.register:
			s.clients[client] = struct{}{}
			// Send current state on connect
			s.stateMutex.RLock()
			if s.latestState != nil {
				client.send <- s.latestState
			}
			s.stateMutex.RUnlock()

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
			}

		case message := <-s.broadcast:
			s.stateMutex.Lock()
			s.latestState = message
			s.stateMutex.Unlock()

			for client := range s.clients {
				select {
				case client.send <- message:
				default:
					// Client too slow, disconnect to prevent Hub blocking
					delete(s.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// Broadcast queues a tick state for the hub. The alert log is attached here
// so the Hub loop itself stays free of data shaping.
func (s *DashboardServer) Broadcast(state *models.MLatestData) {
	state.Type = "UPDATE"

	s.stateMutex.RLock()
	state.Logs = s.recentAlertLines()
	s.stateMutex.RUnlock()

	s.broadcast <- state
}

// -----------------------------------------------------------------------------

// RecordAlert appends to the bounded alert log.
func (s *DashboardServer) RecordAlert(alert models.MAlert, analysis string) {
	s.stateMutex.Lock()
	defer s.stateMutex.Unlock()

	s.alerts = append(s.alerts, alertRecord{Alert: alert, Analysis: analysis})
	if len(s.alerts) > maxRetainedAlerts {
		s.alerts = s.alerts[len(s.alerts)-maxRetainedAlerts:]
	}
}

// -----------------------------------------------------------------------------

// recentAlertLines renders the newest alerts as display lines, newest first.
// Caller must hold at least a read lock.
func (s *DashboardServer) recentAlertLines() []string {
	const maxLines = 20

	n := len(s.alerts)
	count := n
	if count > maxLines {
		count = maxLines
	}

	lines := make([]string, 0, count)
	for i := n - 1; i >= n-count; i-- {
		r := s.alerts[i]
		lines = append(lines, fmt.Sprintf("%s %s %s(%s) %s",
			r.Alert.TriggeredAt.Format("15:04:05"),
			r.Alert.Title(), r.Alert.Name, r.Alert.Code,
			r.Alert.Indicators.LogicDesc))
	}
	return lines
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan interface{}, 256),
	}

	s.register <- client

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------

// touchClientDeadline refreshes a connection's read deadline.
func touchClientDeadline(conn *websocket.Conn) {
	conn.SetReadDeadline(time.Now().Add(pongWait))
}
