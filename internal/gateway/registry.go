package gateway

import "sync"

// Registry is the in-process connection bookkeeping: which user is connected
// on which client, and which chat rooms each user has joined. It is owned by
// the gateway run loop and scoped to the process lifetime; a restart drops
// all of it, which is fine for a best-effort presence layer. Constructed at
// server start so tests can run independent instances.
type Registry struct {
	mu        sync.RWMutex
	connected map[string]Client
	userChats map[string]map[string]struct{}
	rooms     map[string]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		connected: make(map[string]Client),
		userChats: make(map[string]map[string]struct{}),
		rooms:     make(map[string]map[string]struct{}),
	}
}

// Bind records the client as the user's current connection and returns the
// displaced previous connection, if any. The caller is responsible for
// closing the displaced client.
func (r *Registry) Bind(c Client) Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.connected[c.GetUserID()]
	r.connected[c.GetUserID()] = c
	if prev == c {
		return nil
	}
	return prev
}

// Unbind removes the client and all its room memberships. It is a no-op when
// the user has already been rebound to a newer connection, so a late
// disconnect of a displaced socket cannot evict its successor. Reports
// whether anything was removed.
func (r *Registry) Unbind(c Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID := c.GetUserID()
	current, ok := r.connected[userID]
	if !ok || current != c {
		return false
	}

	delete(r.connected, userID)
	for chatID := range r.userChats[userID] {
		if members, ok := r.rooms[chatID]; ok {
			delete(members, userID)
			if len(members) == 0 {
				delete(r.rooms, chatID)
			}
		}
	}
	delete(r.userChats, userID)
	return true
}

// JoinRoom records the user as a member of the chat room. Access control
// happens before this call, never inside it.
func (r *Registry) JoinRoom(chatID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.userChats[userID] == nil {
		r.userChats[userID] = make(map[string]struct{})
	}
	r.userChats[userID][chatID] = struct{}{}

	if r.rooms[chatID] == nil {
		r.rooms[chatID] = make(map[string]struct{})
	}
	r.rooms[chatID][userID] = struct{}{}
}

// LeaveRoom drops the room membership; the personal connection is untouched.
func (r *Registry) LeaveRoom(chatID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if chats, ok := r.userChats[userID]; ok {
		delete(chats, chatID)
	}
	if members, ok := r.rooms[chatID]; ok {
		delete(members, userID)
		if len(members) == 0 {
			delete(r.rooms, chatID)
		}
	}
}

// InRoom reports whether the user currently has the chat room joined.
func (r *Registry) InRoom(chatID, userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.rooms[chatID]
	if !ok {
		return false
	}
	_, ok = members[userID]
	return ok
}

// RoomClients returns the connected clients of every room member.
func (r *Registry) RoomClients(chatID string) []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[chatID]
	clients := make([]Client, 0, len(members))
	for userID := range members {
		if c, ok := r.connected[userID]; ok {
			clients = append(clients, c)
		}
	}
	return clients
}

// Lookup returns the user's current connection, if any. This is the
// "personal room": every connected user is addressable here regardless of
// which chat rooms are open.
func (r *Registry) Lookup(userID string) (Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.connected[userID]
	return c, ok
}

// ConnectedIDs lists the users with a live connection.
func (r *Registry) ConnectedIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.connected))
	for id := range r.connected {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connected)
}
