package message_service

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xenn00/cipher-chat/internal/dtos/room_dto"
	"github.com/xenn00/cipher-chat/internal/entity"
	app_error "github.com/xenn00/cipher-chat/internal/errors"
	message_repo "github.com/xenn00/cipher-chat/internal/repo/message"
	roomjoin_repo "github.com/xenn00/cipher-chat/internal/repo/roomjoin"
	"github.com/xenn00/cipher-chat/internal/utils"
	"github.com/xenn00/cipher-chat/internal/websocket"
	"github.com/xenn00/cipher-chat/state"
)

const lockStripes = 64

// MessageService is the message lifecycle engine: it decides how each
// inbound event mutates the store and which clients hear about it. Every
// mutation commits before its broadcast; a storage failure produces no
// broadcast at all.
type MessageService struct {
	Repo      message_repo.MessageRepoContract
	Ledger    roomjoin_repo.RoomJoinLedgerContract
	Roster    RosterProvider
	Broadcast Broadcaster
	Denylist  []string

	// Lifecycle transitions are serialized per message id so concurrent
	// acknowledgments cannot race the delete decision.
	locks [lockStripes]sync.Mutex
}

func NewMessageService(appState *state.AppState, roster RosterProvider, broadcast Broadcaster, denylist []string) *MessageService {
	return &MessageService{
		Repo:      message_repo.NewMessageRepo(appState),
		Ledger:    roomjoin_repo.NewRoomJoinLedger(appState),
		Roster:    roster,
		Broadcast: broadcast,
		Denylist:  denylist,
	}
}

func (s *MessageService) lockFor(id string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(id))
	return &s.locks[h.Sum32()%lockStripes]
}

// Create validates the optional plaintext preview, clamps the expiry so a
// freshly created message is never instantly sweepable, persists and then
// broadcasts. The preview goes out on the live channel only, it is never
// persisted.
func (s *MessageService) Create(ctx context.Context, author string, req room_dto.SendMessagePayload) (*entity.Message, *app_error.AppError) {
	if req.Plaintext != "" && !utils.IsContentSafe(req.Plaintext, s.Denylist) {
		return nil, app_error.UnsafeContent("Message contains unsafe content")
	}

	now := time.Now().UTC()

	var expiresAt *time.Time
	if req.ExpiresAtMs != nil && *req.ExpiresAtMs > 0 {
		t := time.UnixMilli(*req.ExpiresAtMs).UTC()
		if !t.After(now) {
			// Clamp so the message is visible at least momentarily instead
			// of racing the sweeper.
			t = now.Add(time.Second)
		}
		expiresAt = &t
	}

	envelope := req.Envelope
	if envelope == nil {
		envelope = map[string]string{}
	}

	msg := &entity.Message{
		Room:           req.Room,
		Author:         author,
		Envelope:       envelope,
		FileURL:        req.FileURL,
		FileName:       req.FileName,
		CreatedAt:      now,
		ExpiresAt:      expiresAt,
		Delivered:      true,
		Read:           false,
		Readers:        []string{},
		DeleteOnRead:   req.DeleteOnRead,
		RequireAllRead: req.RequireAllRead,
	}

	if err := s.Repo.Insert(ctx, msg); err != nil {
		return nil, err
	}

	payload := map[string]any{
		"id":               msg.ID.Hex(),
		"user":             author,
		"plaintext":        req.Plaintext,
		"encrypted_map":    envelope,
		"fileUrl":          req.FileURL,
		"fileName":         req.FileName,
		"expires_at":       formatExpiry(expiresAt),
		"delivered":        true,
		"read":             false,
		"delete_on_read":   req.DeleteOnRead,
		"require_all_read": req.RequireAllRead,
	}
	s.Broadcast.BroadcastToRoom(req.Room, websocket.NewEvent(websocket.EventMessage, req.Room, payload))

	return msg, nil
}

// Acknowledge records a read receipt and evaluates the ephemeral deletion
// rules. A vanished message is a silent no-op. The require_all_read rule is
// deliberately keyed off the currently online roster, not all-time room
// participants.
func (s *MessageService) Acknowledge(ctx context.Context, id, username string) *app_error.AppError {
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	msg, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if err.IsNotFound() {
			return nil
		}
		return err
	}

	// Readers exclude the author by convention; an author ack mutates
	// nothing and leaves the read flag derived from an empty set.
	if username != msg.Author && !msg.HasReader(username) {
		if err := s.Repo.AddReader(ctx, id, username); err != nil {
			if err.IsNotFound() {
				return nil
			}
			return err
		}
		msg.Readers = append(msg.Readers, username)
	}

	if msg.DeleteOnRead {
		if !msg.RequireAllRead {
			// First non-author read destroys the message.
			if username != msg.Author {
				return s.deleteAndNotify(ctx, msg)
			}
		} else {
			roster := s.Roster.RosterOf(msg.Room)
			if len(roster) > 0 && allAcknowledged(roster, msg.Readers, msg.Author) {
				return s.deleteAndNotify(ctx, msg)
			}
		}
	}

	if !msg.Read && len(msg.Readers) > 0 {
		if err := s.Repo.MarkRead(ctx, id); err != nil {
			if err.IsNotFound() {
				return nil
			}
			return err
		}
		s.Broadcast.BroadcastToRoom(msg.Room, websocket.NewEvent(websocket.EventMessageRead, msg.Room, map[string]any{
			"id":   id,
			"room": msg.Room,
		}))
	}

	return nil
}

// Edit replaces the envelope. No ownership check: any caller that knows the
// id may edit, matching the reference behavior.
func (s *MessageService) Edit(ctx context.Context, id string, envelope map[string]string) *app_error.AppError {
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	msg, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Repo.UpdateEnvelope(ctx, id, envelope); err != nil {
		return err
	}

	s.Broadcast.BroadcastToRoom(msg.Room, websocket.NewEvent(websocket.EventEditMessage, msg.Room, map[string]any{
		"id":           id,
		"encryptedmap": envelope,
	}))

	return nil
}

// Delete removes the message by id. NotFound propagates: explicit deletes
// surface the error, unlike acknowledgments.
func (s *MessageService) Delete(ctx context.Context, id string) *app_error.AppError {
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	msg, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	return s.deleteAndNotify(ctx, msg)
}

// MarkRead flips the read flag by direct request and notifies the room.
func (s *MessageService) MarkRead(ctx context.Context, id string) *app_error.AppError {
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	msg, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Repo.MarkRead(ctx, id); err != nil {
		return err
	}

	s.Broadcast.BroadcastToRoom(msg.Room, websocket.NewEvent(websocket.EventMessageRead, msg.Room, map[string]any{
		"id":   id,
		"room": msg.Room,
	}))

	return nil
}

// History returns the room's messages, truncated below the caller's
// visibility floor. A username with no join record sees nothing; an empty
// username sees everything.
func (s *MessageService) History(ctx context.Context, room, username string) ([]*entity.Message, *app_error.AppError) {
	since, err := s.visibilityFloor(ctx, room, username)
	if err != nil {
		return nil, err
	}
	if username != "" && since == nil {
		return []*entity.Message{}, nil
	}

	return s.Repo.ListRoom(ctx, room, since)
}

// Search filters history by author substring, with the same floor rules.
func (s *MessageService) Search(ctx context.Context, room, query, username string) ([]*entity.Message, *app_error.AppError) {
	since, err := s.visibilityFloor(ctx, room, username)
	if err != nil {
		return nil, err
	}
	if username != "" && since == nil {
		return []*entity.Message{}, nil
	}

	return s.Repo.SearchRoom(ctx, room, query, since)
}

func (s *MessageService) visibilityFloor(ctx context.Context, room, username string) (*time.Time, *app_error.AppError) {
	if username == "" {
		return nil, nil
	}
	return s.Ledger.VisibilityFloor(ctx, room, username)
}

// deleteAndNotify pairs the storage delete with its broadcast in one logical
// operation. A message already gone means a concurrent operation both
// deleted and announced it.
func (s *MessageService) deleteAndNotify(ctx context.Context, msg *entity.Message) *app_error.AppError {
	id := msg.ID.Hex()

	if err := s.Repo.Delete(ctx, id); err != nil {
		if err.IsNotFound() {
			return nil
		}
		return err
	}

	s.Broadcast.BroadcastToRoom(msg.Room, websocket.NewEvent(websocket.EventDeleteMessage, msg.Room, map[string]any{
		"id": id,
	}))

	log.Debug().Str("id", id).Str("room", msg.Room).Msg("engine: message deleted")
	return nil
}

// allAcknowledged reports whether every currently online room member has
// acknowledged or is the author.
func allAcknowledged(roster, readers []string, author string) bool {
	acked := make(map[string]struct{}, len(readers)+1)
	for _, r := range readers {
		acked[r] = struct{}{}
	}
	acked[author] = struct{}{}

	for _, member := range roster {
		if _, ok := acked[member]; !ok {
			return false
		}
	}
	return true
}

func formatExpiry(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}
