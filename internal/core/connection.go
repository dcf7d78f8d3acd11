package core

// ConnectionState describes how the client is currently receiving
// playback updates from the server.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	PushConnected
	PollingFallback
)

// String returns the connection state name.
func (c ConnectionState) String() string {
	switch c {
	case Connecting:
		return "connecting"
	case PushConnected:
		return "connected"
	case PollingFallback:
		return "polling"
	default:
		return "disconnected"
	}
}

// Connected returns true if updates are flowing over either channel.
func (c ConnectionState) Connected() bool {
	return c == PushConnected || c == PollingFallback
}
