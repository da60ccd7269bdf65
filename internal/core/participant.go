package core

// Participant is one connected client as seen by the registry.
// The registry references participants but never owns them.
type Participant struct {
	id      string
	name    string
	mailbox *Mailbox
}

// NewParticipant constructs a participant with a mailbox of the given size.
// id identifies the peer in diagnostics only and is never used for routing.
func NewParticipant(id string, mailboxSize int) *Participant {
	return &Participant{
		id:      id,
		mailbox: NewMailbox(mailboxSize),
	}
}

// ID returns the connection identity.
func (p *Participant) ID() string {
	return p.id
}

// Name returns the display name, or "" while unnamed.
// Only the registry writes it, and only on behalf of the owning connection.
func (p *Participant) Name() string {
	return p.name
}

// Mailbox returns the outbound queue.
func (p *Participant) Mailbox() *Mailbox {
	return p.mailbox
}

// label is the name when set and the connection id otherwise.
func (p *Participant) label() string {
	if p.name != "" {
		return p.name
	}
	return p.id
}
