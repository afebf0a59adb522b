package domain

// ConnectionState is the lifecycle state of a chat session.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Authenticated
	Receiving
	Closed
)

func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Authenticated:
		return "authenticated"
	case Receiving:
		return "receiving"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}
