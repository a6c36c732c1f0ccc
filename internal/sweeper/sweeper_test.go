package sweeper

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xenn00/cipher-chat/internal/entity"
	app_error "github.com/xenn00/cipher-chat/internal/errors"
	"github.com/xenn00/cipher-chat/internal/websocket"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type fakeRepo struct {
	mu   sync.Mutex
	msgs map[string]*entity.Message
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{msgs: make(map[string]*entity.Message)}
}

func (f *fakeRepo) add(room string, expiresAt *time.Time) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg := &entity.Message{
		ID:        bson.NewObjectID(),
		Room:      room,
		Author:    "alice",
		CreatedAt: time.Now().UTC(),
		ExpiresAt: expiresAt,
	}
	f.msgs[msg.ID.Hex()] = msg
	return msg.ID.Hex()
}

func (f *fakeRepo) Insert(_ context.Context, msg *entity.Message) *app_error.AppError {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg.ID.IsZero() {
		msg.ID = bson.NewObjectID()
	}
	f.msgs[msg.ID.Hex()] = msg
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, id string) (*entity.Message, *app_error.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg, ok := f.msgs[id]
	if !ok {
		return nil, app_error.NotFound("message not found or has been deleted")
	}
	return msg, nil
}

func (f *fakeRepo) AddReader(_ context.Context, _, _ string) *app_error.AppError { return nil }
func (f *fakeRepo) MarkRead(_ context.Context, _ string) *app_error.AppError     { return nil }
func (f *fakeRepo) UpdateEnvelope(_ context.Context, _ string, _ map[string]string) *app_error.AppError {
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) *app_error.AppError {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.msgs[id]; !ok {
		return app_error.NotFound("message not found or has been deleted")
	}
	delete(f.msgs, id)
	return nil
}

func (f *fakeRepo) ListRoom(_ context.Context, _ string, _ *time.Time) ([]*entity.Message, *app_error.AppError) {
	return nil, nil
}

func (f *fakeRepo) SearchRoom(_ context.Context, _, _ string, _ *time.Time) ([]*entity.Message, *app_error.AppError) {
	return nil, nil
}

func (f *fakeRepo) ListExpired(_ context.Context, now time.Time) ([]*entity.Message, *app_error.AppError) {
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

func (f *fakeRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.msgs)
}

type recorder struct {
	mu     sync.Mutex
	events []websocket.OutgoingMessage
}

func (r *recorder) BroadcastToRoom(room string, msg websocket.OutgoingMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.Room = room
	r.events = append(r.events, msg)
}

func (r *recorder) all() []websocket.OutgoingMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]websocket.OutgoingMessage{}, r.events...)
}

func TestRunOnce_RemovesOnlyExpired(t *testing.T) {
	repo := newFakeRepo()
	rec := &recorder{}
	s := NewSweeper(repo, rec, time.Minute)

	past := time.Now().UTC().Add(-time.Minute)
	future := time.Now().UTC().Add(time.Hour)
	expiredID := repo.add("lobby", &past)
	repo.add("lobby", &future)
	repo.add("lobby", nil)

	removed := s.RunOnce(context.Background())

	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, repo.count())

	events := rec.all()
	require.Len(t, events, 1)
	assert.Equal(t, websocket.EventDeleteMessage, events[0].Event)
	assert.Equal(t, "lobby", events[0].Room)
	assert.Equal(t, map[string]any{"id": expiredID}, events[0].Data)
}

func TestRunOnce_NothingExpiredIsQuiet(t *testing.T) {
	repo := newFakeRepo()
	rec := &recorder{}
	s := NewSweeper(repo, rec, time.Minute)

	future := time.Now().UTC().Add(time.Hour)
	repo.add("lobby", &future)

	removed := s.RunOnce(context.Background())

	assert.Equal(t, 0, removed)
	assert.Empty(t, rec.all())
}

func TestRunOnce_BoundaryIsSweepable(t *testing.T) {
	repo := newFakeRepo()
	rec := &recorder{}
	s := NewSweeper(repo, rec, time.Minute)

	// expires_at exactly at the pass time counts as expired.
	now := time.Now().UTC().Add(-time.Millisecond)
	repo.add("lobby", &now)

	assert.Equal(t, 1, s.RunOnce(context.Background()))
}

func TestStartStop(t *testing.T) {
	repo := newFakeRepo()
	rec := &recorder{}
	s := NewSweeper(repo, rec, 10*time.Millisecond)

	past := time.Now().UTC().Add(-time.Minute)
	repo.add("lobby", &past)

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return repo.count() == 0 }, time.Second, 5*time.Millisecond)
	s.Stop()
}
