package presence_service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	app_error "github.com/xenn00/cipher-chat/internal/errors"
	"github.com/xenn00/cipher-chat/internal/presence"
	roomjoin_repo "github.com/xenn00/cipher-chat/internal/repo/roomjoin"
	user_repo "github.com/xenn00/cipher-chat/internal/repo/user"
	"github.com/xenn00/cipher-chat/internal/websocket"
	"github.com/xenn00/cipher-chat/state"
)

// PresenceService coordinates the live roster, the join ledger and the
// user directory around joins, leaves and disconnects, and announces the
// resulting roster changes to the affected rooms.
type PresenceService struct {
	Registry  *presence.Registry
	Users     user_repo.UserRepoContract
	Ledger    roomjoin_repo.RoomJoinLedgerContract
	Binder    RoomBinder
	Broadcast Broadcaster
}

func NewPresenceService(appState *state.AppState, registry *presence.Registry, binder RoomBinder, broadcast Broadcaster) *PresenceService {
	return &PresenceService{
		Registry:  registry,
		Users:     user_repo.NewUserRepo(appState),
		Ledger:    roomjoin_repo.NewRoomJoinLedger(appState),
		Binder:    binder,
		Broadcast: broadcast,
	}
}

// Join binds the connection into the room. Durable bookkeeping (user upsert,
// join ledger) is log-and-continue: a database hiccup must not keep a client
// out of the live room. The entry notice goes to everyone except the joiner;
// the roster snapshot goes to everyone including the joiner.
func (s *PresenceService) Join(ctx context.Context, connID, room, username, publicKey string) *app_error.AppError {
	if err := s.Users.UpsertOnJoin(ctx, username, publicKey); err != nil {
		log.Error().Err(err).Str("username", username).Msg("presence: failed to upsert user on join")
	}
	if err := s.Ledger.RecordJoin(ctx, room, username, time.Now().UTC()); err != nil {
		log.Error().Err(err).Str("room", room).Str("username", username).Msg("presence: failed to record room join")
	}

	s.Binder.JoinRoom(room, connID)

	if newly := s.Registry.Join(connID, room, username); newly {
		s.Broadcast.BroadcastToRoomExcept(room, websocket.NewEvent(websocket.EventStatus, room, map[string]any{
			"msg": username + " has entered the room.",
		}), connID)
	}

	s.broadcastRoster(room)

	log.Info().Str("room", room).Str("username", username).Str("connID", connID).Msg("presence: join")
	return nil
}

// Leave unbinds the connection from the room. The exit notice and roster
// update only fire when the username was actually present; a stray leave for
// a room never joined stays silent.
func (s *PresenceService) Leave(ctx context.Context, connID, room, username string) {
	present := false
	for _, u := range s.Registry.RosterOf(room) {
		if u == username {
			present = true
			break
		}
	}

	s.Binder.LeaveRoom(room, connID)
	s.Registry.Leave(connID, room, username)

	if !present {
		return
	}

	s.Broadcast.BroadcastToRoom(room, websocket.NewEvent(websocket.EventStatus, room, map[string]any{
		"msg": username + " has left the room.",
	}))
	s.broadcastRoster(room)

	log.Info().Str("room", room).Str("username", username).Msg("presence: leave")
}

// Disconnect cleans up after a dead connection: every room the username was
// in gets a fresh roster. No exit notice, mirroring an abrupt socket drop.
func (s *PresenceService) Disconnect(ctx context.Context, connID string) {
	affected := s.Registry.Disconnect(connID)
	for _, room := range affected {
		s.broadcastRoster(room)
	}
}

// Typing relays a typing indicator to everyone in the room but the typist.
func (s *PresenceService) Typing(connID, room string) {
	s.relayTyping(websocket.EventTyping, connID, room)
}

// StopTyping relays the end of a typing indicator.
func (s *PresenceService) StopTyping(connID, room string) {
	s.relayTyping(websocket.EventStopTyping, connID, room)
}

func (s *PresenceService) relayTyping(event, connID, room string) {
	username, ok := s.Registry.UsernameOf(connID)
	if !ok {
		return
	}
	s.Broadcast.BroadcastToRoomExcept(room, websocket.NewEvent(event, room, map[string]any{
		"user": username,
	}), connID)
}

func (s *PresenceService) broadcastRoster(room string) {
	s.Broadcast.BroadcastToRoom(room, websocket.NewEvent(websocket.EventOnlineUsers, room, map[string]any{
		"users": s.Registry.RosterOf(room),
	}))
}
