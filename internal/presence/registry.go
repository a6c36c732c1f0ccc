package presence

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Registry is the single source of truth for "online now". It binds live
// connection ids to usernames and keeps the per-room roster of unique
// usernames. Entries live for the process lifetime only; clients re-join on
// reconnect.
type Registry struct {
	mu    sync.Mutex
	conns map[string]string              // connID -> username
	rooms map[string]map[string]struct{} // room -> set of usernames
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]string),
		rooms: make(map[string]map[string]struct{}),
	}
}

// Join binds the connection to the username and adds the username to the
// room roster. It returns true when the username was newly added, so the
// caller knows whether to announce the entry. Repeated joins from the same
// username must not re-announce.
func (r *Registry) Join(connID, room, username string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[connID] = username

	users, ok := r.rooms[room]
	if !ok {
		users = make(map[string]struct{})
		r.rooms[room] = users
	}

	if _, already := users[username]; already {
		return false
	}
	users[username] = struct{}{}

	log.Debug().Str("room", room).Str("username", username).Int("rosterSize", len(users)).Msg("presence: user joined room")
	return true
}

// Leave unbinds the connection and removes the username from the roster.
// Removal is unconditional: the system models one logical username per
// connection slot. Unknown rooms or usernames are ignored.
func (r *Registry) Leave(connID, room, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.conns, connID)

	if users, ok := r.rooms[room]; ok {
		delete(users, username)
		if len(users) == 0 {
			delete(r.rooms, room)
		}
	}
}

// Disconnect removes the connection's username from every room roster it was
// part of and returns the affected rooms so the caller can notify them.
// Disconnecting an unknown connection is a no-op.
func (r *Registry) Disconnect(connID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	username, ok := r.conns[connID]
	if !ok {
		return nil
	}
	delete(r.conns, connID)

	var affected []string
	for room, users := range r.rooms {
		if _, in := users[username]; in {
			delete(users, username)
			affected = append(affected, room)
			if len(users) == 0 {
				delete(r.rooms, room)
			}
		}
	}

	log.Debug().Str("connID", connID).Str("username", username).Int("rooms", len(affected)).Msg("presence: connection removed")
	return affected
}

// RosterOf returns a snapshot copy of the usernames currently in the room.
// A copy, not a live view, so broadcasts can iterate without racing roster
// mutation.
func (r *Registry) RosterOf(room string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, ok := r.rooms[room]
	if !ok {
		return []string{}
	}

	roster := make([]string, 0, len(users))
	for u := range users {
		roster = append(roster, u)
	}
	return roster
}

// UsernameOf returns the username bound to the connection, if any.
func (r *Registry) UsernameOf(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	username, ok := r.conns[connID]
	return username, ok
}
