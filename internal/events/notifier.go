package events

import (
	"sync"
	"time"

	"github.com/mirocommunity/submit-service/internal/types"
)

// Listener receives a completed submission. Delivery is synchronous and
// best-effort; a panicking listener takes the request down with it.
type Listener func(video *types.Video)

// Notifier broadcasts submission-finished notifications to an explicit
// list of registered listeners. No ordering or acknowledgment is
// guaranteed among listeners.
type Notifier struct {
	mu        sync.RWMutex
	listeners []Listener
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

// Subscribe registers a listener for future notifications.
func (n *Notifier) Subscribe(listener Listener) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, listener)
}

// SubmitFinished delivers the completed video to every listener.
func (n *Notifier) SubmitFinished(video *types.Video) {
	n.mu.RLock()
	listeners := make([]Listener, len(n.listeners))
	copy(listeners, n.listeners)
	n.mu.RUnlock()

	for _, listener := range listeners {
		listener(video)
	}
}

// HubListener adapts a WebSocket hub into a submission listener so
// connected moderators see new videos as they arrive.
type HubListener interface {
	BroadcastToAdmins(event *types.Event)
}

func NewHubListener(hub HubListener) Listener {
	return func(video *types.Video) {
		eventData := &types.VideoSubmittedEvent{
			Video:       video,
			SubmittedAt: time.Now().UTC().Format(time.RFC3339),
		}
		hub.BroadcastToAdmins(types.NewEvent(types.EventVideoSubmitted, eventData))
	}
}
