package server

import (
	"context"
	"encoding/json"
	"log"

	"inkwell/internal/models"
	"inkwell/internal/observability"
)

// Event type constants prevent typos in event names.
const (
	EventConnected        = "realtime:connected"
	EventPostCreated      = "post:created"
	EventPostUpdated      = "post:updated"
	EventPostDeleted      = "post:deleted"
	EventPostLikeToggled  = "post:likeToggled"
	EventCommentCreated   = "comment:created"
	EventCommentUpdated   = "comment:updated"
	EventCommentDeleted   = "comment:deleted"
	EventCommentModerated = "comment:moderated"
)

func (s *Server) publishBroadcastEvent(eventType string, payload map[string]interface{}) {
	event := map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal %s event: %v", eventType, err)
		return
	}
	message := string(eventJSON)
	if s.hub != nil {
		s.hub.BroadcastAll(message)
	}
	if s.notifier != nil {
		if err := s.notifier.PublishBroadcast(context.Background(), message); err != nil {
			log.Printf("failed to publish %s broadcast event: %v", eventType, err)
		}
	}
	observability.RecordRealtimeEvent(eventType)
}

func (s *Server) publishUserEvent(userID uint, eventType string, payload map[string]interface{}) {
	event := map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal %s event: %v", eventType, err)
		return
	}
	message := string(eventJSON)
	if s.hub != nil {
		s.hub.Broadcast(userID, message)
	}
	if s.notifier != nil {
		if err := s.notifier.PublishUser(context.Background(), userID, message); err != nil {
			log.Printf("failed to publish %s event to user %d: %v", eventType, userID, err)
		}
	}
	observability.RecordRealtimeEvent(eventType)
}

func userSummary(user *models.User) map[string]interface{} {
	if user == nil {
		return nil
	}
	return map[string]interface{}{
		"id":       user.ID,
		"username": user.Username,
		"avatar":   user.Avatar,
	}
}
