package service

import "mediafeed-server/internal/websocket"

// Notifier pushes realtime events to connected users. Satisfied by
// websocket.Manager; services treat a nil notifier as "nobody listening".
type Notifier interface {
	NotifyUser(userID string, eventType websocket.EventType, payload interface{})
	NotifyUsers(userIDs []string, eventType websocket.EventType, payload interface{})
}
