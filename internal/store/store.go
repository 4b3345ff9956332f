package store

import (
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openscout/scout/internal/model/chat"
	"github.com/openscout/scout/internal/model/search"
)

const titleLimit = 50

// Persister durably saves and restores the conversation list. The current
// pointer is never persisted and always resets on process start.
type Persister interface {
	Save(conversations []chat.Conversation) error
	Load() ([]chat.Conversation, error)
}

// MessageUpdate carries the fields merged into a message by UpdateMessage.
// Nil fields are left untouched.
type MessageUpdate struct {
	Content           *string
	Sources           []search.Source
	FollowupQuestions []string
	IsLoading         *bool
}

// Store owns every conversation and message. All mutations go through its
// operation set; readers only ever see deep copies. Lookup misses are silent
// no-ops, so callers that need to know whether an operation took effect
// re-query state afterward.
type Store struct {
	mu            sync.RWMutex
	conversations []chat.Conversation // most recently created first
	currentID     string

	persister Persister
	feed      *Feed
}

// New builds a Store, loading any previously persisted conversation list.
// Both persister and feed may be nil (in-memory only, no event fan-out).
func New(persister Persister, feed *Feed) (*Store, error) {
	s := &Store{persister: persister, feed: feed}

	if persister != nil {
		conversations, err := persister.Load()
		if err != nil {
			return nil, err
		}
		s.conversations = conversations
	}

	return s, nil
}

// CreateConversation allocates a new conversation titled from the first user
// message, prepends it to the list, and makes it current.
func (s *Store) CreateConversation(firstMessage string) string {
	now := time.Now().UTC()
	conversation := chat.Conversation{
		ID:        uuid.NewString(),
		Title:     truncateTitle(firstMessage),
		Messages:  []chat.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.conversations = append([]chat.Conversation{conversation}, s.conversations...)
	s.currentID = conversation.ID
	s.mu.Unlock()

	s.persist()
	s.publish(Event{Type: EventConversationCreated, ConversationID: conversation.ID})
	return conversation.ID
}

// SetCurrent switches the current pointer. Unknown ids are ignored: UI
// navigation races are expected and not an error.
func (s *Store) SetCurrent(id string) {
	s.mu.Lock()
	changed := false
	if s.indexOf(id) >= 0 && s.currentID != id {
		s.currentID = id
		changed = true
	}
	s.mu.Unlock()

	if changed {
		s.publish(Event{Type: EventCurrentChanged, ConversationID: id})
	}
}

// ClearCurrent resets the current pointer without deleting anything. This is
// how a "new chat" action is modeled.
func (s *Store) ClearCurrent() {
	s.mu.Lock()
	changed := s.currentID != ""
	s.currentID = ""
	s.mu.Unlock()

	if changed {
		s.publish(Event{Type: EventCurrentChanged})
	}
}

// AddMessage allocates an id and timestamp for message and appends it to the
// named conversation. No-op if the conversation does not exist.
func (s *Store) AddMessage(conversationID string, message chat.Message) {
	message.ID = uuid.NewString()
	message.Timestamp = time.Now().UTC()

	s.mu.Lock()
	idx := s.indexOf(conversationID)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.conversations[idx].Messages = append(s.conversations[idx].Messages, message)
	s.conversations[idx].UpdatedAt = message.Timestamp
	s.mu.Unlock()

	s.persist()
	s.publish(Event{Type: EventMessageAdded, ConversationID: conversationID, MessageID: message.ID})
}

// UpdateMessage merges update into the target message in place. Used to
// resolve a loading placeholder into its final content or an error message.
// No-op if either id is unknown.
func (s *Store) UpdateMessage(conversationID, messageID string, update MessageUpdate) {
	s.mu.Lock()
	idx := s.indexOf(conversationID)
	if idx < 0 {
		s.mu.Unlock()
		return
	}

	applied := false
	messages := s.conversations[idx].Messages
	for i := range messages {
		if messages[i].ID != messageID {
			continue
		}
		if update.Content != nil {
			messages[i].Content = *update.Content
		}
		if update.Sources != nil {
			messages[i].Sources = append([]search.Source(nil), update.Sources...)
		}
		if update.FollowupQuestions != nil {
			messages[i].FollowupQuestions = append([]string(nil), update.FollowupQuestions...)
		}
		if update.IsLoading != nil {
			messages[i].IsLoading = *update.IsLoading
		}
		applied = true
		break
	}
	if applied {
		s.conversations[idx].UpdatedAt = time.Now().UTC()
	}
	s.mu.Unlock()

	if !applied {
		return
	}
	s.persist()
	s.publish(Event{Type: EventMessageUpdated, ConversationID: conversationID, MessageID: messageID})
}

// DeleteConversation removes the conversation. If it was current, the current
// pointer is cleared.
func (s *Store) DeleteConversation(id string) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.conversations = append(s.conversations[:idx], s.conversations[idx+1:]...)
	if s.currentID == id {
		s.currentID = ""
	}
	s.mu.Unlock()

	s.persist()
	s.publish(Event{Type: EventConversationDeleted, ConversationID: id})
}

// RenameConversation replaces the title in place. Blank titles are the
// caller's problem; the store does not validate.
func (s *Store) RenameConversation(id, title string) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.conversations[idx].Title = title
	s.conversations[idx].UpdatedAt = time.Now().UTC()
	s.mu.Unlock()

	s.persist()
	s.publish(Event{Type: EventConversationRenamed, ConversationID: id})
}

// Snapshot returns a deep copy of the full conversation list, most recently
// created first.
func (s *Store) Snapshot() []chat.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Conversation returns a deep copy of the named conversation.
func (s *Store) Conversation(id string) (chat.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return chat.Conversation{}, false
	}
	return s.conversations[idx].Clone(), true
}

// Current returns a deep copy of the current conversation, if one is set.
func (s *Store) Current() (chat.Conversation, bool) {
	s.mu.RLock()
	id := s.currentID
	s.mu.RUnlock()

	if id == "" {
		return chat.Conversation{}, false
	}
	return s.Conversation(id)
}

// CurrentID returns the id of the current conversation, or "".
func (s *Store) CurrentID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentID
}

// indexOf must be called with the lock held.
func (s *Store) indexOf(id string) int {
	for i := range s.conversations {
		if s.conversations[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotLocked() []chat.Conversation {
	out := make([]chat.Conversation, len(s.conversations))
	for i, conversation := range s.conversations {
		out[i] = conversation.Clone()
	}
	return out
}

// persist overwrites the durable conversation list. Writes are
// fire-and-forget: in-memory state stays authoritative even when they fail.
func (s *Store) persist() {
	if s.persister == nil {
		return
	}

	s.mu.RLock()
	snapshot := s.snapshotLocked()
	s.mu.RUnlock()

	if err := s.persister.Save(snapshot); err != nil {
		log.Printf("[store] failed to persist conversations: %v", err)
	}
}

func (s *Store) publish(event Event) {
	if s.feed == nil {
		return
	}
	s.feed.Publish(event)
}

func truncateTitle(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= titleLimit {
		return text
	}
	return strings.TrimSpace(string(runes[:titleLimit])) + "..."
}
