package sweeper

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	message_repo "github.com/xenn00/cipher-chat/internal/repo/message"
	"github.com/xenn00/cipher-chat/internal/websocket"
)

// Broadcaster is the fan-out capability the sweeper needs to announce
// expirations to the rooms that held them.
type Broadcaster interface {
	BroadcastToRoom(room string, msg websocket.OutgoingMessage)
}

// Sweeper periodically removes messages whose expiry has passed and tells
// each affected room the same way a manual delete would. Sweeping is
// best-effort: a failed pass logs and waits for the next tick.
type Sweeper struct {
	Repo      message_repo.MessageRepoContract
	Broadcast Broadcaster
	Interval  time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

func NewSweeper(repo message_repo.MessageRepoContract, broadcast Broadcaster, interval time.Duration) *Sweeper {
	return &Sweeper{
		Repo:      repo,
		Broadcast: broadcast,
		Interval:  interval,
	}
}

// Start launches the background sweep loop.
func (s *Sweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", s.Interval).Msg("sweeper: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("sweeper: stopped")
				return
			case <-ticker.C:
				if n := s.RunOnce(ctx); n > 0 {
					log.Info().Int("removed", n).Msg("sweeper: pass completed")
				}
			}
		}
	}()
}

// Stop cancels the loop and waits for the current pass to finish.
func (s *Sweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

// RunOnce performs a single sweep and returns how many messages were
// removed. A message deleted concurrently mid-pass is skipped without an
// announcement; whoever deleted it already announced it.
func (s *Sweeper) RunOnce(ctx context.Context) int {
	expired, err := s.Repo.ListExpired(ctx, time.Now().UTC())
	if err != nil {
		log.Error().Err(err).Msg("sweeper: failed to list expired messages")
		return 0
	}

	removed := 0
	for _, msg := range expired {
		id := msg.ID.Hex()

		if err := s.Repo.Delete(ctx, id); err != nil {
			if err.IsNotFound() {
				continue
			}
			log.Error().Err(err).Str("id", id).Msg("sweeper: failed to delete expired message")
			continue
		}

		s.Broadcast.BroadcastToRoom(msg.Room, websocket.NewEvent(websocket.EventDeleteMessage, msg.Room, map[string]any{
			"id": id,
		}))
		removed++

		log.Debug().Str("id", id).Str("room", msg.Room).Msg("sweeper: expired message removed")
	}

	return removed
}
