package core

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// DefaultRoom is joined by every participant on registration.
const DefaultRoom = "public"

// Registry is the process-wide index of connected participants, their
// display names and room memberships. Every exported method runs under one
// mutex, so operations are linearizable with respect to each other and the
// three indexes are always mutually consistent.
//
// Delivery never blocks: lines are offered to recipient mailboxes and
// dropped when a mailbox is full.
type Registry struct {
	mu      sync.Mutex
	members map[*Participant]struct{}
	names   map[string]*Participant
	rooms   map[string]*Room
	roomSeq uint64

	dropped atomic.Uint64
	log     *zerolog.Logger
}

// RoomInfo is a point-in-time view of one room.
type RoomInfo struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// Stats summarizes registry state.
type Stats struct {
	Members int    `json:"members"`
	Named   int    `json:"named"`
	Rooms   int    `json:"rooms"`
	Dropped uint64 `json:"dropped"`
}

// NewRegistry creates an empty registry. A nil logger disables diagnostics.
func NewRegistry(logger *zerolog.Logger) *Registry {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "registry").Logger()
	return &Registry{
		members: make(map[*Participant]struct{}),
		names:   make(map[string]*Participant),
		rooms:   make(map[string]*Room),
		log:     &l,
	}
}

// Register adds p to the member set and joins it to DefaultRoom.
// Returns false if p was already registered.
func (r *Registry) Register(p *Participant) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[p]; ok {
		return false
	}
	r.members[p] = struct{}{}
	r.joinLocked(DefaultRoom, p)
	return true
}

// Deregister removes every trace of p: its name entry (if still its own),
// its room memberships (deleting rooms left empty) and its membership.
// Safe to call for a participant that was never registered or is already
// gone. Returns true if p was a member.
func (r *Registry) Deregister(p *Participant) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.name != "" && r.names[p.name] == p {
		delete(r.names, p.name)
	}
	for name, room := range r.rooms {
		room.Remove(p)
		if room.Empty() {
			delete(r.rooms, name)
		}
	}
	if _, ok := r.members[p]; !ok {
		return false
	}
	delete(r.members, p)
	return true
}

// SetName binds name to p, releasing p's previous name. It fails with
// ErrNameTaken if another participant holds name. Room membership is
// unaffected.
func (r *Registry) SetName(p *Participant, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[p]; !ok {
		return ErrNotRegistered
	}
	if holder, ok := r.names[name]; ok && holder != p {
		return ErrNameTaken
	}
	if p.name != "" && r.names[p.name] == p {
		delete(r.names, p.name)
	}
	p.name = name
	r.names[name] = p
	return nil
}

// JoinRoom adds p to room, creating the room if needed. Joining a room
// p is already in is a no-op.
func (r *Registry) JoinRoom(room string, p *Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[p]; !ok {
		return ErrNotRegistered
	}
	r.joinLocked(room, p)
	return nil
}

// LeaveRoom removes p from room and deletes the room if it became empty.
func (r *Registry) LeaveRoom(room string, p *Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[room]
	if !ok || !rm.Remove(p) {
		return ErrNotInRoom
	}
	if rm.Empty() {
		delete(r.rooms, room)
	}
	return nil
}

// RoomsOf returns the rooms containing p in room creation order.
func (r *Registry) RoomsOf(p *Participant) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms := lo.Filter(r.orderedLocked(), func(room *Room, _ int) bool {
		return room.Has(p)
	})
	return lo.Map(rooms, func(room *Room, _ int) string {
		return room.Name
	})
}

// BroadcastAll offers text to every registered participant except sender.
// sender may be nil for server-originated lines. Returns the number of
// mailboxes that accepted the line.
func (r *Registry) BroadcastAll(sender *Participant, text string) int {
	r.mu.Lock()
	recipients := lo.Without(lo.Keys(r.members), sender)
	delivered, dropped := offerAll(recipients, text)
	r.mu.Unlock()

	r.reportDrops(dropped)
	return delivered
}

// BroadcastRooms offers text once to every participant sharing at least one
// room with sender, excluding sender itself.
func (r *Registry) BroadcastRooms(sender *Participant, text string) int {
	r.mu.Lock()
	var pool []*Participant
	for _, room := range r.rooms {
		if room.Has(sender) {
			pool = append(pool, room.Members()...)
		}
	}
	recipients := lo.Without(lo.Uniq(pool), sender)
	delivered, dropped := offerAll(recipients, text)
	r.mu.Unlock()

	r.reportDrops(dropped)
	return delivered
}

// SendPrivate offers text to the participant named target. It fails with
// ErrUserNotFound when no participant holds that name. Sending to oneself
// is allowed. A full recipient mailbox drops the line without failing.
func (r *Registry) SendPrivate(target, text string, sender *Participant) error {
	r.mu.Lock()
	dst, ok := r.names[target]
	if !ok {
		r.mu.Unlock()
		return ErrUserNotFound
	}
	_, dropped := offerAll([]*Participant{dst}, text)
	r.mu.Unlock()

	r.reportDrops(dropped)
	return nil
}

// IsMember reports whether p is registered.
func (r *Registry) IsMember(p *Participant) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.members[p]
	return ok
}

// Lookup returns the participant holding name.
func (r *Registry) Lookup(name string) (*Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.names[name]
	return p, ok
}

// Rooms returns every room in creation order with member labels sorted.
// Unnamed members are listed by connection id.
func (r *Registry) Rooms() []RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	return lo.Map(r.orderedLocked(), func(room *Room, _ int) RoomInfo {
		labels := lo.Map(room.Members(), func(p *Participant, _ int) string {
			return p.label()
		})
		sort.Strings(labels)
		return RoomInfo{Name: room.Name, Members: labels}
	})
}

// Stats returns current counts and the total number of dropped lines.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Stats{
		Members: len(r.members),
		Named:   len(r.names),
		Rooms:   len(r.rooms),
		Dropped: r.dropped.Load(),
	}
}

func (r *Registry) joinLocked(name string, p *Participant) {
	room, ok := r.rooms[name]
	if !ok {
		r.roomSeq++
		room = NewRoom(name, r.roomSeq)
		r.rooms[name] = room
	}
	room.Add(p)
}

func (r *Registry) orderedLocked() []*Room {
	rooms := lo.Values(r.rooms)
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].seq < rooms[j].seq
	})
	return rooms
}

type drop struct {
	id  string
	err error
}

func offerAll(recipients []*Participant, text string) (int, []drop) {
	delivered := 0
	var dropped []drop
	for _, p := range recipients {
		if err := p.mailbox.Offer(text); err != nil {
			dropped = append(dropped, drop{id: p.id, err: err})
			continue
		}
		delivered++
	}
	return delivered, dropped
}

// reportDrops runs outside the lock.
func (r *Registry) reportDrops(dropped []drop) {
	for _, d := range dropped {
		if errors.Is(d.err, ErrMailboxClosed) {
			r.log.Debug().Str("client_id", d.id).Msg("recipient is closing, message discarded")
			continue
		}
		r.dropped.Add(1)
		r.log.Warn().Str("client_id", d.id).Msg("message queue is full, dropping the message")
	}
}
