package relay

import (
	"sort"
	"sync"

	"coffeeRelay/internal/errs"
)

// Conn is one live transport session as the relay sees it. Send must not
// block: implementations queue the frame or fail.
type Conn interface {
	ID() string
	Send(frame []byte) error
	Close() error
}

type Set map[string]struct{}

// Registry maps live connections to the rooms they joined and rooms back to
// their members. Both directions are updated under one lock so every
// operation is atomic with respect to the others. A room with no members has
// no key in the rooms map.
type Registry struct {
	mu          sync.RWMutex
	connections map[string]Conn
	memberships map[string]Set // connection id -> room names
	rooms       map[string]Set // room name -> connection ids
}

func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[string]Conn),
		memberships: make(map[string]Set),
		rooms:       make(map[string]Set),
	}
}

// Register adds conn with an empty membership set. If the id is already
// present the old entry is dropped from its rooms and replaced, and
// ErrDuplicateConnection is returned so the caller can log the collision.
func (r *Registry) Register(conn Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := conn.ID()
	_, duplicate := r.connections[id]
	if duplicate {
		r.removeMemberships(id)
	}
	r.connections[id] = conn
	r.memberships[id] = make(Set)

	if duplicate {
		return errs.ErrDuplicateConnection
	}
	return nil
}

// Unregister removes the connection and its memberships. Unknown ids are
// ignored. It returns the removed connection, if any.
func (r *Registry) Unregister(id string) (Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.connections[id]
	if !ok {
		return nil, false
	}
	r.removeMemberships(id)
	delete(r.connections, id)
	return conn, true
}

func (r *Registry) Join(id, room string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms, ok := r.memberships[id]
	if !ok {
		return errs.ErrUnknownConnection
	}
	rooms[room] = struct{}{}
	if _, ok := r.rooms[room]; !ok {
		r.rooms[room] = make(Set)
	}
	r.rooms[room][id] = struct{}{}
	return nil
}

func (r *Registry) Leave(id, room string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms, ok := r.memberships[id]
	if !ok {
		return errs.ErrUnknownConnection
	}
	delete(rooms, room)
	r.dropMember(room, id)
	return nil
}

// MembersOf returns a sorted snapshot of the connection ids in room.
func (r *Registry) MembersOf(room string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedKeys(r.rooms[room])
}

// RoomsOf returns a sorted snapshot of the rooms id has joined.
func (r *Registry) RoomsOf(id string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms, ok := r.memberships[id]
	if !ok {
		return nil, errs.ErrUnknownConnection
	}
	return sortedKeys(rooms), nil
}

func (r *Registry) Connection(id string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.connections[id]
	return conn, ok
}

func (r *Registry) IsRegistered(id string) bool {
	_, ok := r.Connection(id)
	return ok
}

func (r *Registry) HasMembers(room string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms[room]) > 0
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.connections)
}

// CloseAll closes and unregisters every connection. Used at shutdown.
func (r *Registry) CloseAll() []error {
	r.mu.Lock()
	conns := make([]Conn, 0, len(r.connections))
	for _, conn := range r.connections {
		conns = append(conns, conn)
	}
	r.connections = make(map[string]Conn)
	r.memberships = make(map[string]Set)
	r.rooms = make(map[string]Set)
	r.mu.Unlock()

	var errors []error
	for _, conn := range conns {
		if err := conn.Close(); err != nil {
			errors = append(errors, err)
		}
	}
	return errors
}

// connectionsIn resolves the members of room to their connections in one
// critical section.
func (r *Registry) connectionsIn(room string) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.rooms[room]
	if !ok {
		return nil
	}
	conns := make([]Conn, 0, len(members))
	for id := range members {
		if conn, exists := r.connections[id]; exists {
			conns = append(conns, conn)
		}
	}
	return conns
}

// removeMemberships must be called with the write lock held.
func (r *Registry) removeMemberships(id string) {
	for room := range r.memberships[id] {
		r.dropMember(room, id)
	}
	delete(r.memberships, id)
}

// dropMember must be called with the write lock held.
func (r *Registry) dropMember(room, id string) {
	members, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
}

func sortedKeys(set Set) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
