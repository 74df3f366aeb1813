// Package notify fans out pipeline lifecycle events to live
// subscribers, keyed by document id. Delivery is at-most-once with no
// replay; current state is always re-derivable from the unit store.
package notify

import (
	"context"
	"sync"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type EventKind string

const (
	EventSubscribed  EventKind = "subscribed"
	EventProgress    EventKind = "progress"
	EventState       EventKind = "state"
	EventBatchFailed EventKind = "batch_failed"
)

type Event struct {
	Kind       EventKind              `json:"kind"`
	DocumentID string                 `json:"document_id"`
	Data       map[string]interface{} `json:"data"`
}

const subscriberBuffer = 16

type Subscriber struct {
	hub        *Hub
	documentID string
	ch         chan Event
	closeOnce  sync.Once
}

// Events is the stream of events for this subscription. The channel is
// closed when the subscriber is removed.
func (s *Subscriber) Events() <-chan Event {
	return s.ch
}

func (s *Subscriber) Close() {
	s.hub.remove(s.documentID, s)
}

type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*Subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]map[*Subscriber]struct{})}
}

func (h *Hub) Subscribe(documentID string) *Subscriber {
	sub := &Subscriber{
		hub:        h,
		documentID: documentID,
		ch:         make(chan Event, subscriberBuffer),
	}
	h.mu.Lock()
	set, ok := h.subscribers[documentID]
	if !ok {
		set = make(map[*Subscriber]struct{})
		h.subscribers[documentID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	h.Publish(documentID, EventSubscribed, map[string]interface{}{
		"document_id": documentID,
	})
	return sub
}

// Publish delivers an event to every current subscriber of the
// document. Subscribers that cannot accept the event are dropped.
func (h *Hub) Publish(documentID string, kind EventKind, data map[string]interface{}) {
	event := Event{Kind: kind, DocumentID: documentID, Data: data}

	h.mu.RLock()
	set := h.subscribers[documentID]
	targets := make([]*Subscriber, 0, len(set))
	for sub := range set {
		targets = append(targets, sub)
	}
	h.mu.RUnlock()

	for _, sub := range targets {
		select {
		case sub.ch <- event:
		default:
			logutil.GetLogger(context.Background()).Warn("dropping slow event subscriber",
				zap.String("document_id", documentID), zap.String("kind", string(kind)))
			h.remove(documentID, sub)
		}
	}
}

func (h *Hub) PublishProgress(documentID string, translated, total int) {
	h.Publish(documentID, EventProgress, map[string]interface{}{
		"document_id": documentID,
		"translated":  translated,
		"total":       total,
	})
}

func (h *Hub) PublishState(documentID, state, message string) {
	h.Publish(documentID, EventState, map[string]interface{}{
		"document_id": documentID,
		"state":       state,
		"message":     message,
	})
}

func (h *Hub) PublishBatchFailed(documentID string, start, end int, reason string) {
	h.Publish(documentID, EventBatchFailed, map[string]interface{}{
		"document_id": documentID,
		"start":       start,
		"end":         end,
		"reason":      reason,
	})
}

// SubscriberCount reports live subscriptions for a document.
func (h *Hub) SubscriberCount(documentID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[documentID])
}

func (h *Hub) remove(documentID string, sub *Subscriber) {
	h.mu.Lock()
	set := h.subscribers[documentID]
	if set != nil {
		if _, ok := set[sub]; ok {
			delete(set, sub)
			if len(set) == 0 {
				delete(h.subscribers, documentID)
			}
		} else {
			h.mu.Unlock()
			return
		}
	} else {
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()
	sub.closeOnce.Do(func() {
		close(sub.ch)
	})
}
