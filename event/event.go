// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package event

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-vote/metrics"
	"github.com/danielhkuo/quickly-vote/models"
)

const EventQueueSize = 64

type EventType string

const (
	TypeSessionCreated     EventType = "session-created"
	TypePhaseChanged       EventType = "phase-changed"
	TypeVoterRegistered    EventType = "voter-registered"
	TypeProposalRegistered EventType = "proposal-registered"
	TypeVoteCast           EventType = "vote-cast"
	TypeTallyCompleted     EventType = "tally-completed"

	// TypeAll subscribes to every event type
	TypeAll EventType = "*"
)

type EventSubscriberId int

type EventHandlerFunc func(Event)

type Event struct {
	ID        string
	Type      EventType
	SessionID uint64
	Sequence  uint64
	Timestamp time.Time
	Data      any
}

func NewEvent(eventType EventType, sessionID uint64, data any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// Payloads

type SessionCreatedEvent struct {
	SessionID   uint64 `json:"session_id"`
	Admin       string `json:"admin"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Previous is nil for the transition into the first phase
type PhaseChangedEvent struct {
	SessionID uint64        `json:"session_id"`
	Previous  *models.Phase `json:"previous"`
	Current   models.Phase  `json:"current"`
}

type VoterRegisteredEvent struct {
	SessionID uint64 `json:"session_id"`
	Voter     string `json:"voter"`
	Ordinal   uint32 `json:"voter_ordinal"`
}

type ProposalRegisteredEvent struct {
	SessionID   uint64 `json:"session_id"`
	ProposalID  uint8  `json:"proposal_id"`
	Proposer    string `json:"proposer"`
	Description string `json:"description"`
}

type VoteCastEvent struct {
	SessionID  uint64 `json:"session_id"`
	Voter      string `json:"voter"`
	ProposalID uint8  `json:"proposal_id"`
}

type TallyCompletedEvent struct {
	SessionID          uint64                `json:"session_id"`
	VoterCount         uint32                `json:"voter_count"`
	TotalVotes         uint32                `json:"total_votes"`
	BlankVotes         uint32                `json:"blank_votes"`
	Abstention         uint32                `json:"abstention"`
	WinningProposalIDs models.ProposalIDList `json:"winning_proposal_ids"`
}

type subscriber struct {
	ch     chan Event
	mu     sync.RWMutex
	closed bool
}

func newSubscriber(buffer int) *subscriber {
	return &subscriber{ch: make(chan Event, buffer)}
}

// deliver never blocks. It returns false when the queue is full.
func (s *subscriber) deliver(evt Event) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return true
	}
	select {
	case s.ch <- evt:
		return true
	default:
		return false
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// EventBus fans committed notifications out to in-process subscribers
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[EventType]map[EventSubscriberId]*subscriber
	lastSubId   EventSubscriberId
	stopped     bool
	funcWg      sync.WaitGroup
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func NewEventBus(m *metrics.Metrics, logger *slog.Logger) *EventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventBus{
		subscribers: make(map[EventType]map[EventSubscriberId]*subscriber),
		metrics:     m,
		logger:      logger,
	}
}

// Subscribe returns a channel receiving events of eventType. The channel
// is closed by Unsubscribe or Stop.
func (e *EventBus) Subscribe(eventType EventType) (EventSubscriberId, <-chan Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sub := newSubscriber(EventQueueSize)
	if e.stopped {
		sub.close()
		return 0, sub.ch
	}

	e.lastSubId++
	subId := e.lastSubId
	if _, ok := e.subscribers[eventType]; !ok {
		e.subscribers[eventType] = make(map[EventSubscriberId]*subscriber)
	}
	e.subscribers[eventType][subId] = sub
	e.metrics.SubscriberAdded(string(eventType))
	return subId, sub.ch
}

// SubscribeFunc runs handlerFunc on its own goroutine for each event
func (e *EventBus) SubscribeFunc(eventType EventType, handlerFunc EventHandlerFunc) EventSubscriberId {
	subId, ch := e.Subscribe(eventType)
	e.funcWg.Add(1)
	go func() {
		defer e.funcWg.Done()
		for evt := range ch {
			handlerFunc(evt)
		}
	}()
	return subId
}

func (e *EventBus) Unsubscribe(eventType EventType, subId EventSubscriberId) {
	e.mu.Lock()
	defer e.mu.Unlock()
	subs, ok := e.subscribers[eventType]
	if !ok {
		return
	}
	if sub, ok := subs[subId]; ok {
		sub.close()
		delete(subs, subId)
		e.metrics.SubscriberRemoved(string(eventType))
	}
}

// Publish delivers evt to subscribers of its type and to TypeAll
// subscribers. A full subscriber queue drops the event for that
// subscriber only.
func (e *EventBus) Publish(evt Event) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.stopped {
		return
	}

	for _, eventType := range []EventType{evt.Type, TypeAll} {
		for subId, sub := range e.subscribers[eventType] {
			if !sub.deliver(evt) {
				e.metrics.EventDropped(string(evt.Type))
				e.logger.Warn("event subscriber queue full, dropping event",
					"event_type", evt.Type,
					"session_id", evt.SessionID,
					"subscriber_id", subId,
				)
			}
		}
	}
	e.metrics.EventPublished(string(evt.Type))
}

// Stop closes every subscriber and waits for SubscribeFunc goroutines
func (e *EventBus) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	for eventType, subs := range e.subscribers {
		for subId, sub := range subs {
			sub.close()
			delete(subs, subId)
			e.metrics.SubscriberRemoved(string(eventType))
		}
	}
	e.mu.Unlock()
	e.funcWg.Wait()
}
