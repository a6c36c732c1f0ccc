package websocket

import (
	"encoding/json"
	"time"
)

// Inbound event kinds accepted over the socket.
const (
	EventJoin        = "join"
	EventLeave       = "leave"
	EventMessage     = "message"
	EventMessageSeen = "message_seen"
	EventTyping      = "typing"
	EventStopTyping  = "stop_typing"
)

// Outbound event kinds.
const (
	EventDeleteMessage   = "delete_message"
	EventEditMessage     = "editmessage"
	EventMessageRead     = "message_read"
	EventOnlineUsers     = "online_users"
	EventStatus          = "status"
	EventMessageRejected = "message_rejected"
	EventReaction        = "reaction"
)

type IncomingEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type OutgoingMessage struct {
	Event     string `json:"event"`
	Room      string `json:"room,omitempty"`
	Data      any    `json:"data"`
	Timestamp int64  `json:"timestamp"`
}

func NewEvent(event, room string, data any) OutgoingMessage {
	return OutgoingMessage{
		Event:     event,
		Room:      room,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
}
