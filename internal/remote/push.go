package remote

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// EventType identifies a push event kind.
type EventType string

const (
	EventInitialState  EventType = "initial_state"
	EventFullUpdate    EventType = "full_update"
	EventTrackChanged  EventType = "track_changed"
	EventStateChanged  EventType = "playback_state_changed"
	EventVolumeChanged EventType = "volume_changed"
)

// PushTrack is the track payload carried by track_changed events.
type PushTrack struct {
	Name     *string `json:"name"`
	Artist   *string `json:"artist"`
	Album    *string `json:"album"`
	Position float64 `json:"position"`
	Duration float64 `json:"duration"`
}

// Event is a single push message from the server.
type Event struct {
	Type   EventType  `json:"type"`
	State  string     `json:"state,omitempty"`
	Volume *int       `json:"volume,omitempty"`
	Track  *PushTrack `json:"track,omitempty"`
}

// SignalKind distinguishes the notifications a push channel can emit.
type SignalKind int

const (
	SignalConnected SignalKind = iota
	SignalDisconnected
	SignalEvent
)

// Signal is a push-channel notification delivered to a single consumer.
type Signal struct {
	Kind  SignalKind
	Event *Event // set when Kind == SignalEvent
}

const (
	pushDialTimeout      = 5 * time.Second
	pushReconnectBackoff = 3 * time.Second
	pushSignalBuffer     = 16
)

// PushChannel maintains a persistent WebSocket connection to the
// server's event stream, reconnecting until its context is cancelled.
type PushChannel struct {
	wsURL   string
	header  http.Header
	signals chan Signal
	log     *zap.Logger
}

// NewPushChannel creates a push channel for the given client.
func NewPushChannel(c *Client) *PushChannel {
	return &PushChannel{
		wsURL:   wsEndpoint(c.baseURL),
		header:  authHeader(c.token),
		signals: make(chan Signal, pushSignalBuffer),
		log:     c.log,
	}
}

// Signals returns the channel of push notifications. It is closed when
// Run returns.
func (p *PushChannel) Signals() <-chan Signal {
	return p.signals
}

// Run connects and reads events until ctx is cancelled. Connection loss
// is reported as a disconnect signal followed by reconnection attempts.
func (p *PushChannel) Run(ctx context.Context) error {
	defer close(p.signals)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		conn, err := p.dial(ctx)
		if err != nil {
			p.log.Debug("push dial failed", zap.Error(err))
			if !p.waitBackoff(ctx) {
				return ctx.Err()
			}
			continue
		}

		p.send(ctx, Signal{Kind: SignalConnected})
		p.readLoop(ctx, conn)
		p.send(ctx, Signal{Kind: SignalDisconnected})

		if !p.waitBackoff(ctx) {
			return ctx.Err()
		}
	}
}

func (p *PushChannel) dial(ctx context.Context) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, pushDialTimeout)
	defer cancel()

	conn, resp, err := websocket.DefaultDialer.DialContext(dialCtx, p.wsURL, p.header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn, err
}

// readLoop consumes frames until the connection breaks or ctx ends.
func (p *PushChannel) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var event Event
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() == nil {
				p.log.Debug("push read failed", zap.Error(err))
			}
			return
		}

		switch event.Type {
		case EventInitialState, EventFullUpdate, EventTrackChanged,
			EventStateChanged, EventVolumeChanged:
			e := event
			p.send(ctx, Signal{Kind: SignalEvent, Event: &e})
		default:
			// Unknown event kinds are ignored, not fatal.
			p.log.Debug("ignoring unknown push event", zap.String("type", string(event.Type)))
		}
	}
}

func (p *PushChannel) send(ctx context.Context, s Signal) {
	select {
	case p.signals <- s:
	case <-ctx.Done():
	}
}

func (p *PushChannel) waitBackoff(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(pushReconnectBackoff):
		return true
	}
}

// wsEndpoint rewrites an http(s) base URL into the ws(s) event stream URL.
func wsEndpoint(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL + "/events"
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/events"
	return u.String()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
