package websocket

import (
	"encoding/json"
	"time"
)

type EventType string

const (
	EventPostCreated   EventType = "post_created"
	EventPostLiked     EventType = "post_liked"
	EventPostCommented EventType = "post_commented"
	EventUserFollowed  EventType = "user_followed"
	EventPing          EventType = "ping"
	EventPong          EventType = "pong"
)

type Message struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type PostCreatedPayload struct {
	PostID string `json:"post_id"`
	UserID string `json:"user_id"`
}

type PostLikedPayload struct {
	PostID string `json:"post_id"`
	UserID string `json:"user_id"`
}

type PostCommentedPayload struct {
	PostID    string `json:"post_id"`
	CommentID string `json:"comment_id"`
	UserID    string `json:"user_id"`
}

type UserFollowedPayload struct {
	UserID string `json:"user_id"`
}

func NewMessage(eventType EventType, payload interface{}) (*Message, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		bytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		payloadBytes = bytes
	}

	return &Message{
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payloadBytes,
	}, nil
}

func (m *Message) UnmarshalPayload(v interface{}) error {
	if m.Payload == nil {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}
