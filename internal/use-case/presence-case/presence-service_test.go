package presence_service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xenn00/cipher-chat/internal/entity"
	app_error "github.com/xenn00/cipher-chat/internal/errors"
	"github.com/xenn00/cipher-chat/internal/presence"
	"github.com/xenn00/cipher-chat/internal/websocket"
)

type fakeUsers struct {
	mu      sync.Mutex
	upserts map[string]string
	fail    bool
}

func (f *fakeUsers) FindByUsername(_ context.Context, username string) (*entity.User, *app_error.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key, ok := f.upserts[username]
	if !ok {
		return nil, app_error.NotFound("cannot find user")
	}
	return &entity.User{Username: username, PublicKey: key}, nil
}

func (f *fakeUsers) UpsertOnJoin(_ context.Context, username, publicKey string) *app_error.AppError {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return app_error.StorageFailure("unavailable")
	}
	if f.upserts == nil {
		f.upserts = make(map[string]string)
	}
	f.upserts[username] = publicKey
	return nil
}

type fakeLedger struct {
	mu    sync.Mutex
	joins []string
	fail  bool
}

func (f *fakeLedger) RecordJoin(_ context.Context, room, username string, _ time.Time) *app_error.AppError {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return app_error.StorageFailure("unavailable")
	}
	f.joins = append(f.joins, room+"/"+username)
	return nil
}

func (f *fakeLedger) VisibilityFloor(_ context.Context, _, _ string) (*time.Time, *app_error.AppError) {
	return nil, nil
}

type fakeBinder struct {
	mu     sync.Mutex
	joined []string
	left   []string
}

func (f *fakeBinder) JoinRoom(room, connID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joined = append(f.joined, room+"/"+connID)
}

func (f *fakeBinder) LeaveRoom(room, connID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.left = append(f.left, room+"/"+connID)
}

type recordedEvent struct {
	msg    websocket.OutgoingMessage
	except string
}

type eventRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *eventRecorder) BroadcastToRoom(room string, msg websocket.OutgoingMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.Room = room
	r.events = append(r.events, recordedEvent{msg: msg})
}

func (r *eventRecorder) BroadcastToRoomExcept(room string, msg websocket.OutgoingMessage, exceptConnID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.Room = room
	r.events = append(r.events, recordedEvent{msg: msg, except: exceptConnID})
}

func (r *eventRecorder) byEvent(event string) []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []recordedEvent
	for _, e := range r.events {
		if e.msg.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func newTestService() (*PresenceService, *fakeUsers, *fakeLedger, *fakeBinder, *eventRecorder) {
	users := &fakeUsers{}
	ledger := &fakeLedger{}
	binder := &fakeBinder{}
	rec := &eventRecorder{}
	svc := &PresenceService{
		Registry:  presence.NewRegistry(),
		Users:     users,
		Ledger:    ledger,
		Binder:    binder,
		Broadcast: rec,
	}
	return svc, users, ledger, binder, rec
}

func TestJoin_AnnouncesEntryAndRoster(t *testing.T) {
	svc, users, ledger, binder, rec := newTestService()

	require.Nil(t, svc.Join(context.Background(), "conn1", "lobby", "alice", "pk-alice"))

	assert.Equal(t, "pk-alice", users.upserts["alice"])
	assert.Equal(t, []string{"lobby/alice"}, ledger.joins)
	assert.Equal(t, []string{"lobby/conn1"}, binder.joined)

	statuses := rec.byEvent(websocket.EventStatus)
	require.Len(t, statuses, 1)
	assert.Equal(t, "conn1", statuses[0].except, "the joiner does not hear their own entry notice")

	rosters := rec.byEvent(websocket.EventOnlineUsers)
	require.Len(t, rosters, 1)
	assert.Empty(t, rosters[0].except, "the roster snapshot goes to everyone")
}

func TestJoin_RepeatDoesNotReannounce(t *testing.T) {
	svc, _, _, _, rec := newTestService()

	require.Nil(t, svc.Join(context.Background(), "conn1", "lobby", "alice", ""))
	require.Nil(t, svc.Join(context.Background(), "conn1", "lobby", "alice", ""))

	assert.Len(t, rec.byEvent(websocket.EventStatus), 1, "a repeated join must not re-announce entry")
	assert.Len(t, rec.byEvent(websocket.EventOnlineUsers), 2, "the roster still refreshes on every join")
}

func TestJoin_StorageFailureDoesNotBlockEntry(t *testing.T) {
	svc, users, ledger, _, rec := newTestService()
	users.fail = true
	ledger.fail = true

	require.Nil(t, svc.Join(context.Background(), "conn1", "lobby", "alice", ""))

	assert.Equal(t, []string{"alice"}, svc.Registry.RosterOf("lobby"))
	assert.Len(t, rec.byEvent(websocket.EventStatus), 1)
}

func TestLeave_AnnouncesExitAndRoster(t *testing.T) {
	svc, _, _, binder, rec := newTestService()
	require.Nil(t, svc.Join(context.Background(), "conn1", "lobby", "alice", ""))

	svc.Leave(context.Background(), "conn1", "lobby", "alice")

	assert.Equal(t, []string{"lobby/conn1"}, binder.left)
	statuses := rec.byEvent(websocket.EventStatus)
	require.Len(t, statuses, 2)
	assert.Empty(t, svc.Registry.RosterOf("lobby"))
}

func TestLeave_UnjoinedRoomIsSilent(t *testing.T) {
	svc, _, _, _, rec := newTestService()

	svc.Leave(context.Background(), "conn1", "lobby", "alice")

	assert.Empty(t, rec.events, "leaving a never-joined room emits nothing")
}

func TestDisconnect_RefreshesEveryAffectedRoom(t *testing.T) {
	svc, _, _, _, rec := newTestService()
	require.Nil(t, svc.Join(context.Background(), "conn1", "lobby", "alice", ""))
	require.Nil(t, svc.Join(context.Background(), "conn1", "dev", "alice", ""))

	before := len(rec.byEvent(websocket.EventOnlineUsers))
	svc.Disconnect(context.Background(), "conn1")

	rosters := rec.byEvent(websocket.EventOnlineUsers)
	assert.Len(t, rosters, before+2, "each affected room gets a roster refresh")
	assert.Len(t, rec.byEvent(websocket.EventStatus), 2, "an abrupt drop carries no exit notice, only the two entry notices remain")
	assert.Empty(t, svc.Registry.RosterOf("lobby"))
	assert.Empty(t, svc.Registry.RosterOf("dev"))
}

func TestDisconnect_UnknownConnectionIsNoop(t *testing.T) {
	svc, _, _, _, rec := newTestService()

	svc.Disconnect(context.Background(), "ghost")

	assert.Empty(t, rec.events)
}

func TestTyping_ExcludesTypist(t *testing.T) {
	svc, _, _, _, rec := newTestService()
	require.Nil(t, svc.Join(context.Background(), "conn1", "lobby", "alice", ""))

	svc.Typing("conn1", "lobby")
	svc.StopTyping("conn1", "lobby")

	typing := rec.byEvent(websocket.EventTyping)
	require.Len(t, typing, 1)
	assert.Equal(t, "conn1", typing[0].except)

	stop := rec.byEvent(websocket.EventStopTyping)
	require.Len(t, stop, 1)
	assert.Equal(t, "conn1", stop[0].except)
}

func TestTyping_UnboundConnectionIsNoop(t *testing.T) {
	svc, _, _, _, rec := newTestService()

	svc.Typing("ghost", "lobby")

	assert.Empty(t, rec.byEvent(websocket.EventTyping))
}
