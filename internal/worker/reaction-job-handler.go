package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/xenn00/cipher-chat/internal/queue"
	message_repo "github.com/xenn00/cipher-chat/internal/repo/message"
	"github.com/xenn00/cipher-chat/internal/websocket"
)

const JobBroadcastReaction = "broadcast_reaction"

type ReactionJobPayload struct {
	MessageID string `json:"message_id"`
	UserID    string `json:"user_id"`
	Emoji     string `json:"emoji"`
}

// Broadcaster is the room fan-out the reaction job needs.
type Broadcaster interface {
	BroadcastToRoom(room string, msg websocket.OutgoingMessage)
}

// ReactionJobHandler resolves a reaction's message to its room and announces
// it there. Decoupled from the HTTP request so a burst of reactions cannot
// stall the API.
type ReactionJobHandler struct {
	Messages  message_repo.MessageRepoContract
	Broadcast Broadcaster
}

func NewReactionJobHandler(messages message_repo.MessageRepoContract, broadcast Broadcaster) *ReactionJobHandler {
	return &ReactionJobHandler{
		Messages:  messages,
		Broadcast: broadcast,
	}
}

func (h *ReactionJobHandler) HandleJob(ctx context.Context, job queue.Job) error {
	switch job.Type {
	case JobBroadcastReaction:
		return h.handleBroadcastReaction(ctx, job.Payload)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

func (h *ReactionJobHandler) handleBroadcastReaction(ctx context.Context, payload json.RawMessage) error {
	var p ReactionJobPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("invalid reaction payload: %w", err)
	}

	msg, appErr := h.Messages.FindByID(ctx, p.MessageID)
	if appErr != nil {
		if appErr.IsNotFound() {
			// Message expired or was deleted between react and broadcast.
			log.Debug().Str("message_id", p.MessageID).Msg("worker: reaction target gone, skipping broadcast")
			return nil
		}
		return appErr
	}

	h.Broadcast.BroadcastToRoom(msg.Room, websocket.NewEvent(websocket.EventReaction, msg.Room, map[string]any{
		"messageId": p.MessageID,
		"user":      p.UserID,
		"emoji":     p.Emoji,
	}))

	return nil
}
