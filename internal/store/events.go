package store

import (
	"context"
	"encoding/json"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Event types published on the store feed.
const (
	EventConversationCreated = "conversation.created"
	EventConversationDeleted = "conversation.deleted"
	EventConversationRenamed = "conversation.renamed"
	EventMessageAdded        = "message.added"
	EventMessageUpdated      = "message.updated"
	EventCurrentChanged      = "current.changed"
)

const eventsTopic = "store.events"

// Event describes one store mutation. UI clients watch these to stay in sync
// with server-side state, including loading placeholders resolving.
type Event struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversationId,omitempty"`
	MessageID      string `json:"messageId,omitempty"`
}

// Feed fans store events out to subscribers over an in-process pub/sub bus.
type Feed struct {
	bus *gochannel.GoChannel
}

// NewFeed creates the event bus shared by the store and its watchers.
func NewFeed() *Feed {
	return &Feed{
		bus: gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{}),
	}
}

// Publish broadcasts an event to all current subscribers. Failures are logged
// and dropped; the store never blocks on its watchers.
func (f *Feed) Publish(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("[events] failed to marshal event: %v", err)
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := f.bus.Publish(eventsTopic, msg); err != nil {
		log.Printf("[events] failed to publish event: %v", err)
	}
}

// Subscribe returns a channel of raw event messages. The subscription closes
// when ctx is cancelled.
func (f *Feed) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return f.bus.Subscribe(ctx, eventsTopic)
}

// Close shuts the bus down and closes all subscriber channels.
func (f *Feed) Close() error {
	return f.bus.Close()
}
