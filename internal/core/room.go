package core

import "github.com/samber/lo"

// Room groups participants subscribed to the same channel. A room exists
// only while it has members.
type Room struct {
	Name    string
	seq     uint64
	members map[*Participant]struct{}
}

// NewRoom constructs a room with no members. seq orders rooms by creation.
func NewRoom(name string, seq uint64) *Room {
	return &Room{
		Name:    name,
		seq:     seq,
		members: make(map[*Participant]struct{}),
	}
}

// Add inserts a participant into the room. Returns true if newly added.
func (r *Room) Add(p *Participant) bool {
	if _, exists := r.members[p]; exists {
		return false
	}
	r.members[p] = struct{}{}
	return true
}

// Remove deletes a participant from the room. Returns true if removed.
func (r *Room) Remove(p *Participant) bool {
	if _, exists := r.members[p]; !exists {
		return false
	}
	delete(r.members, p)
	return true
}

// Has reports membership.
func (r *Room) Has(p *Participant) bool {
	_, ok := r.members[p]
	return ok
}

// Members returns the current members in no particular order.
func (r *Room) Members() []*Participant {
	return lo.Keys(r.members)
}

// Len returns the member count.
func (r *Room) Len() int {
	return len(r.members)
}

// Empty returns true if no participants are in the room.
func (r *Room) Empty() bool {
	return len(r.members) == 0
}
