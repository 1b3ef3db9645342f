package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Event names broadcast by the platform.
const (
	UserStatusChanged   = "user.status.changed"
	MessageSent         = "message.sent"
	NotificationCreated = "notification.created"
)

// Well-known channels. Per-entity channels are built with the helpers below.
const (
	ChannelUserStatus  = "user-status"
	ChannelOnlineUsers = "online-users"
)

// UserChannel is the private channel for one user's notifications.
func UserChannel(userID uint) string {
	return fmt.Sprintf("user.%d", userID)
}

// ConversationChannel carries messages of one conversation.
func ConversationChannel(conversationID uint) string {
	return fmt.Sprintf("conversation.%d", conversationID)
}

// ConversationPresenceChannel tracks who is viewing a conversation.
func ConversationPresenceChannel(conversationID uint) string {
	return fmt.Sprintf("conversation-presence.%d", conversationID)
}

// GroupChannel carries messages of one support group.
func GroupChannel(groupID uint) string {
	return fmt.Sprintf("group.%d", groupID)
}

// Event is a named payload delivered to one channel.
type Event struct {
	ID      string                 `json:"id"`
	Name    string                 `json:"name"`
	Channel string                 `json:"channel"`
	Payload map[string]interface{} `json:"payload"`
}

// New builds an event with a fresh id.
func New(name, channel string, payload map[string]interface{}) Event {
	return Event{
		ID:      uuid.NewString(),
		Name:    name,
		Channel: channel,
		Payload: payload,
	}
}

// Broadcaster delivers events to subscribers of a channel. Delivery is best
// effort; the domain write an event follows must already be committed.
type Broadcaster interface {
	Publish(ctx context.Context, event Event) error
}

// Emit publishes fire-and-forget: a failed broadcast is logged and never
// propagated to the caller.
func Emit(ctx context.Context, b Broadcaster, event Event) {
	if b == nil {
		return
	}
	if err := b.Publish(ctx, event); err != nil {
		log.Warn().Err(err).
			Str("event", event.Name).
			Str("channel", event.Channel).
			Msg("broadcast failed")
	}
}

// LogBroadcaster writes events to the log. Used when no Redis is configured.
type LogBroadcaster struct{}

func (LogBroadcaster) Publish(_ context.Context, event Event) error {
	log.Debug().
		Str("event", event.Name).
		Str("channel", event.Channel).
		Interface("payload", event.Payload).
		Msg("broadcast")
	return nil
}

// Recorder collects published events in memory so tests can assert on them.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
