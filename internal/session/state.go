package session

// State is the lifecycle phase of a connection.
type State int32

const (
	StateUnregistered State = iota
	StateUnnamed
	StateNamed
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnregistered:
		return "unregistered"
	case StateUnnamed:
		return "unnamed"
	case StateNamed:
		return "named"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
