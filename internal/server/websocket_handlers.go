package server

import (
	"context"
	"encoding/json"
	"log"

	"inkwell/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketHandler handles GET /api/ws: the realtime event stream. The
// AuthRequired middleware runs before the upgrade, so locals carry the user.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		observability.WebSocketConnectionsTotal.Inc()
		defer observability.WebSocketConnectionsTotal.Dec()

		userIDVal := conn.Locals("userID")
		if userIDVal == nil {
			if cerr := conn.Close(); cerr != nil {
				log.Printf("websocket close error: %v", cerr)
			}
			return
		}
		uid, ok := userIDVal.(uint)
		if !ok {
			if cerr := conn.Close(); cerr != nil {
				log.Printf("websocket close error: %v", cerr)
			}
			return
		}

		if s.hub == nil {
			_ = conn.Close()
			return
		}

		// Register connection with scaling guardrails
		client, err := s.hub.Register(uid, conn)
		if err != nil {
			log.Printf("WebSocket: Failed to register user %d: %v", uid, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}
		defer s.hub.UnregisterClient(client)

		// Welcome event so the client knows the stream is live
		user, uerr := s.userRepo.GetByID(context.Background(), uid)
		if uerr != nil {
			log.Printf("WebSocket: Failed to load user %d: %v", uid, uerr)
		}
		welcome := map[string]interface{}{
			"type": EventConnected,
			"payload": map[string]interface{}{
				"user": userSummary(user),
			},
		}
		if welcomeJSON, merr := json.Marshal(welcome); merr == nil {
			client.TrySend(welcomeJSON)
		}

		// Start pumps
		go client.WritePump()
		client.ReadPump()
	})
}
