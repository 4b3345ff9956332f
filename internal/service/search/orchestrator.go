package search

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/openscout/scout/internal/model/chat"
	searchmodel "github.com/openscout/scout/internal/model/search"
	"github.com/openscout/scout/internal/service/ai"
	"github.com/openscout/scout/internal/service/sources"
	"github.com/openscout/scout/internal/store"
)

// ApologyMessage is the fixed user-facing content a placeholder resolves to
// when the completion call fails.
const ApologyMessage = "I apologize, but I encountered an error while searching. Please try again."

var (
	// ErrEmptyQuery rejects blank submissions before any store mutation.
	ErrEmptyQuery = errors.New("query is required")
	// ErrInFlight rejects a second submission while one is unresolved for the
	// same conversation. The caller drops it; nothing is queued.
	ErrInFlight = errors.New("search already in progress for this conversation")
)

// SourceProvider yields cited references for a query. Implementations never
// fail; "no sources found" is an empty result.
type SourceProvider interface {
	Search(ctx context.Context, query string, maxResults int) searchmodel.SearchResult
}

// CompletionProvider turns a query plus sources into an answer with follow-up
// questions.
type CompletionProvider interface {
	Complete(ctx context.Context, query string, srcs []searchmodel.Source) (*ai.Result, error)
}

// Turn is the resolved outcome of one search submission.
type Turn struct {
	ConversationID    string
	Query             string
	Answer            string
	Sources           []searchmodel.Source
	FollowupQuestions []string
	Timestamp         time.Time
}

// Orchestrator drives one user turn: persist the user message, reserve a
// loading placeholder, fetch sources, complete, resolve the placeholder.
type Orchestrator struct {
	store      *store.Store
	sources    SourceProvider
	completion CompletionProvider
	maxSources int

	mu       sync.Mutex
	inFlight map[string]bool // conversation ids with an unresolved placeholder
}

// New wires the orchestrator to the store and the two providers.
func New(st *store.Store, src SourceProvider, completion CompletionProvider, maxSources int) *Orchestrator {
	if maxSources <= 0 {
		maxSources = sources.DefaultMaxResults
	}
	return &Orchestrator{
		store:      st,
		sources:    src,
		completion: completion,
		maxSources: maxSources,
		inFlight:   make(map[string]bool),
	}
}

// Submit runs one turn against conversationID. An empty id targets the
// current conversation, creating one titled from the query if none is set.
// Submissions against different conversations may run concurrently; a second
// submission against the same conversation is rejected with ErrInFlight.
func (o *Orchestrator) Submit(ctx context.Context, conversationID, query string) (*Turn, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	conversationID = o.targetConversation(conversationID, query)

	if !o.acquire(conversationID) {
		return nil, ErrInFlight
	}
	defer o.release(conversationID)

	o.store.AddMessage(conversationID, chat.Message{Role: chat.RoleUser, Content: query})
	o.store.AddMessage(conversationID, chat.Message{Role: chat.RoleAssistant, IsLoading: true})

	result := o.sources.Search(ctx, query, o.maxSources)

	completion, err := o.completion.Complete(ctx, query, result.Sources)
	if err != nil {
		log.Printf("[search] completion failed for conversation=%s: %v", conversationID, err)
		o.resolvePlaceholder(conversationID, ApologyMessage, result.Sources, nil)
		return nil, err
	}

	o.resolvePlaceholder(conversationID, completion.Answer, result.Sources, completion.Followups.Questions)

	return &Turn{
		ConversationID:    conversationID,
		Query:             query,
		Answer:            completion.Answer,
		Sources:           result.Sources,
		FollowupQuestions: completion.Followups.Questions,
		Timestamp:         time.Now().UTC(),
	}, nil
}

// targetConversation resolves which conversation this turn belongs to. Ids
// that no longer exist fall back to a fresh conversation rather than letting
// every subsequent store call no-op.
func (o *Orchestrator) targetConversation(conversationID, query string) string {
	if conversationID == "" {
		if current, ok := o.store.Current(); ok {
			return current.ID
		}
		return o.store.CreateConversation(query)
	}

	if _, ok := o.store.Conversation(conversationID); !ok {
		return o.store.CreateConversation(query)
	}
	return conversationID
}

// resolvePlaceholder locates the conversation's unique loading message and
// settles it exactly once. Lookup is by the loading flag scoped to this
// conversation id, never by position and never by the current pointer, so a
// stale resolution still lands in its own conversation.
func (o *Orchestrator) resolvePlaceholder(conversationID, content string, srcs []searchmodel.Source, followups []string) {
	conversation, ok := o.store.Conversation(conversationID)
	if !ok {
		return
	}

	for _, msg := range conversation.Messages {
		if !msg.IsLoading {
			continue
		}
		loading := false
		o.store.UpdateMessage(conversationID, msg.ID, store.MessageUpdate{
			Content:           &content,
			Sources:           srcs,
			FollowupQuestions: followups,
			IsLoading:         &loading,
		})
		return
	}

	log.Printf("[search] no loading placeholder found in conversation=%s", conversationID)
}

func (o *Orchestrator) acquire(conversationID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inFlight[conversationID] {
		return false
	}
	o.inFlight[conversationID] = true
	return true
}

func (o *Orchestrator) release(conversationID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inFlight, conversationID)
}
