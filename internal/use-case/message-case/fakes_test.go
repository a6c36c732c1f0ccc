package message_service

import (
	"context"
	"sync"
	"time"

	"github.com/xenn00/cipher-chat/internal/entity"
	app_error "github.com/xenn00/cipher-chat/internal/errors"
	"github.com/xenn00/cipher-chat/internal/websocket"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// In-memory stand-ins for the storage and fan-out collaborators, so the
// lifecycle rules can be exercised without Mongo, Postgres or a live socket.

type fakeMessageRepo struct {
	mu   sync.Mutex
	msgs map[string]*entity.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{msgs: make(map[string]*entity.Message)}
}

func (f *fakeMessageRepo) Insert(_ context.Context, msg *entity.Message) *app_error.AppError {
	f.mu.Lock()
	defer f.mu.Unlock()

	if msg.ID.IsZero() {
		msg.ID = bson.NewObjectID()
	}
	if msg.Readers == nil {
		msg.Readers = []string{}
	}
	stored := *msg
	stored.Readers = append([]string{}, msg.Readers...)
	f.msgs[msg.ID.Hex()] = &stored
	return nil
}

func (f *fakeMessageRepo) FindByID(_ context.Context, id string) (*entity.Message, *app_error.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()

	msg, ok := f.msgs[id]
	if !ok {
		return nil, app_error.NotFound("message not found or has been deleted")
	}
	copied := *msg
	copied.Readers = append([]string{}, msg.Readers...)
	return &copied, nil
}

func (f *fakeMessageRepo) AddReader(_ context.Context, id, username string) *app_error.AppError {
	f.mu.Lock()
	defer f.mu.Unlock()

	msg, ok := f.msgs[id]
	if !ok {
		return app_error.NotFound("message not found or has been deleted")
	}
	if !msg.HasReader(username) {
		msg.Readers = append(msg.Readers, username)
	}
	return nil
}

func (f *fakeMessageRepo) MarkRead(_ context.Context, id string) *app_error.AppError {
	f.mu.Lock()
	defer f.mu.Unlock()

	msg, ok := f.msgs[id]
	if !ok {
		return app_error.NotFound("message not found or has been deleted")
	}
	msg.Read = true
	return nil
}

func (f *fakeMessageRepo) UpdateEnvelope(_ context.Context, id string, envelope map[string]string) *app_error.AppError {
	f.mu.Lock()
	defer f.mu.Unlock()

	msg, ok := f.msgs[id]
	if !ok {
		return app_error.NotFound("message not found or has been deleted")
	}
	msg.Envelope = envelope
	return nil
}

func (f *fakeMessageRepo) Delete(_ context.Context, id string) *app_error.AppError {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.msgs[id]; !ok {
		return app_error.NotFound("message not found or has been deleted")
	}
	delete(f.msgs, id)
	return nil
}

func (f *fakeMessageRepo) ListRoom(_ context.Context, room string, since *time.Time) ([]*entity.Message, *app_error.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*entity.Message
	for _, msg := range f.msgs {
		if msg.Room != room {
			continue
		}
		if since != nil && msg.CreatedAt.Before(*since) {
			continue
		}
		copied := *msg
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeMessageRepo) SearchRoom(ctx context.Context, room, authorQuery string, since *time.Time) ([]*entity.Message, *app_error.AppError) {
	msgs, _ := f.ListRoom(ctx, room, since)
	var out []*entity.Message
	for _, msg := range msgs {
		if authorQuery == "" || msg.Author == authorQuery {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) ListExpired(_ context.Context, now time.Time) ([]*entity.Message, *app_error.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*entity.Message
	for _, msg := range f.msgs {
		if msg.ExpiresAt != nil && !msg.ExpiresAt.After(now) {
			copied := *msg
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) get(id string) *entity.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.msgs[id]
}

func (f *fakeMessageRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.msgs)
}

type fakeLedger struct {
	mu     sync.Mutex
	floors map[string]time.Time
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{floors: make(map[string]time.Time)}
}

func (f *fakeLedger) RecordJoin(_ context.Context, room, username string, at time.Time) *app_error.AppError {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.floors[room+"/"+username] = at
	return nil
}

func (f *fakeLedger) VisibilityFloor(_ context.Context, room, username string) (*time.Time, *app_error.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	at, ok := f.floors[room+"/"+username]
	if !ok {
		return nil, nil
	}
	return &at, nil
}

type staticRoster map[string][]string

func (r staticRoster) RosterOf(room string) []string {
	return append([]string{}, r[room]...)
}

type eventRecorder struct {
	mu     sync.Mutex
	events []websocket.OutgoingMessage
	direct []websocket.OutgoingMessage
}

func (r *eventRecorder) BroadcastToRoom(room string, msg websocket.OutgoingMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.Room = room
	r.events = append(r.events, msg)
}

func (r *eventRecorder) SendToClient(_ string, msg websocket.OutgoingMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.direct = append(r.direct, msg)
}

func (r *eventRecorder) byEvent(event string) []websocket.OutgoingMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []websocket.OutgoingMessage
	for _, e := range r.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func (r *eventRecorder) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}
