package server

import (
	"context"
	"sync"
	"time"
)

const (
	RealtimeEventBlocksChanged   = "blocks-changed"
	RealtimeEventSettingsChanged = "settings-changed"
	realtimeEventHeartbeat       = "heartbeat"
	realtimeSourceBackend        = "linkden"
	defaultHeartbeatInterval     = 25 * time.Second
)

// RealtimeMessage tells open builders of a profile to refetch.
type RealtimeMessage struct {
	ProfileID string
	EventType string
	BlockIDs  []string
	Timestamp time.Time
}

type realtimePayload struct {
	BlockIDs  []string `json:"blockIds"`
	Timestamp string   `json:"timestamp"`
	Source    string   `json:"source"`
}

func newRealtimePayload(message RealtimeMessage) realtimePayload {
	ids := message.BlockIDs
	if ids == nil {
		ids = []string{}
	}
	return realtimePayload{
		BlockIDs:  ids,
		Timestamp: message.Timestamp.UTC().Format(time.RFC3339Nano),
		Source:    realtimeSourceBackend,
	}
}

// RealtimeDispatcher fans messages out to per-profile subscribers. Slow
// subscribers miss messages rather than block publishers.
type RealtimeDispatcher struct {
	mu          sync.RWMutex
	subscribers map[string]map[int64]*realtimeSubscriber
	nextID      int64
	bufferSize  int
}

type realtimeSubscriber struct {
	id     int64
	stream chan RealtimeMessage
}

func NewRealtimeDispatcher() *RealtimeDispatcher {
	return &RealtimeDispatcher{
		subscribers: make(map[string]map[int64]*realtimeSubscriber),
		bufferSize:  16,
	}
}

// Subscribe registers a stream for the profile until ctx ends or cleanup runs.
func (d *RealtimeDispatcher) Subscribe(ctx context.Context, profileID string) (<-chan RealtimeMessage, func()) {
	if profileID == "" {
		ch := make(chan RealtimeMessage)
		close(ch)
		return ch, func() {}
	}
	subscriber := &realtimeSubscriber{
		id:     d.nextSequence(),
		stream: make(chan RealtimeMessage, d.bufferSize),
	}
	d.registerSubscriber(profileID, subscriber)
	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			d.unregisterSubscriber(profileID, subscriber.id)
		})
	}
	go func() {
		<-ctx.Done()
		cleanup()
	}()
	return subscriber.stream, cleanup
}

func (d *RealtimeDispatcher) Publish(message RealtimeMessage) {
	if message.ProfileID == "" || message.EventType == "" {
		return
	}
	d.mu.RLock()
	subscribers := d.subscribers[message.ProfileID]
	if len(subscribers) == 0 {
		d.mu.RUnlock()
		return
	}
	copies := make([]*realtimeSubscriber, 0, len(subscribers))
	for _, subscriber := range subscribers {
		copies = append(copies, subscriber)
	}
	d.mu.RUnlock()
	for _, subscriber := range copies {
		select {
		case subscriber.stream <- message:
		default:
		}
	}
}

// SubscriberCount returns the number of open streams for the profile.
func (d *RealtimeDispatcher) SubscriberCount(profileID string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subscribers[profileID])
}

func (d *RealtimeDispatcher) nextSequence() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	return d.nextID
}

func (d *RealtimeDispatcher) registerSubscriber(profileID string, subscriber *realtimeSubscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.subscribers[profileID]; !ok {
		d.subscribers[profileID] = make(map[int64]*realtimeSubscriber)
	}
	d.subscribers[profileID][subscriber.id] = subscriber
}

func (d *RealtimeDispatcher) unregisterSubscriber(profileID string, subscriberID int64) {
	d.mu.Lock()
	subscribers := d.subscribers[profileID]
	if subscribers != nil {
		delete(subscribers, subscriberID)
		if len(subscribers) == 0 {
			delete(d.subscribers, profileID)
		}
	}
	d.mu.Unlock()
}
