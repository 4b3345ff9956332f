package search

import (
	"context"
	"errors"
	"testing"
	"time"

	searchmodel "github.com/openscout/scout/internal/model/search"
	"github.com/openscout/scout/internal/service/ai"
	"github.com/openscout/scout/internal/store"
)

type fakeSources struct {
	result searchmodel.SearchResult
}

func (f fakeSources) Search(_ context.Context, _ string, _ int) searchmodel.SearchResult {
	return f.result
}

type fakeCompletion struct {
	result *ai.Result
	err    error
	block  chan struct{} // when non-nil, Complete waits until closed
}

func (f *fakeCompletion) Complete(_ context.Context, _ string, _ []searchmodel.Source) (*ai.Result, error) {
	if f.block != nil {
		<-f.block
	}
	return f.result, f.err
}

func testSources() searchmodel.SearchResult {
	return searchmodel.SearchResult{
		Sources: []searchmodel.Source{
			{ID: 1, Title: "Understanding quantum computing", URL: "https://knowledge-base.org/definitions", Domain: "knowledge-base.org"},
			{ID: 2, Title: "quantum computing - Expert Insights", URL: "https://expert-network.com/insights", Domain: "expert-network.com"},
		},
		TotalResults: 2,
	}
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(nil, nil)
	if err != nil {
		t.Fatalf("store.New err: %v", err)
	}
	return st
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestSubmitResolvesPlaceholder(t *testing.T) {
	st := newTestStore(t)
	completion := &fakeCompletion{result: &ai.Result{
		Answer:    "Quantum computing uses qubits [1].",
		Followups: ai.Followups{Questions: []string{"How do qubits store information?"}, Extracted: true},
	}}
	orchestrator := New(st, fakeSources{result: testSources()}, completion, 6)

	turn, err := orchestrator.Submit(context.Background(), "", "What is quantum computing?")
	if err != nil {
		t.Fatalf("Submit err: %v", err)
	}

	conversation, ok := st.Conversation(turn.ConversationID)
	if !ok {
		t.Fatal("conversation not created")
	}
	if len(conversation.Messages) != 2 {
		t.Fatalf("expected user + assistant messages, got %d", len(conversation.Messages))
	}

	assistant := conversation.Messages[1]
	if assistant.IsLoading {
		t.Fatal("placeholder still loading after resolution")
	}
	if assistant.Content == "" {
		t.Fatal("resolved message has empty content")
	}
	if len(assistant.Sources) != 2 || assistant.Sources[0].Domain != "knowledge-base.org" {
		t.Fatalf("sources not attached: %+v", assistant.Sources)
	}
	if n := len(assistant.FollowupQuestions); n < 1 || n > 5 {
		t.Fatalf("expected 1..5 followups, got %d", n)
	}

	for _, msg := range conversation.Messages {
		if msg.IsLoading {
			t.Fatal("no message may remain loading after a turn")
		}
	}

	if st.CurrentID() != turn.ConversationID {
		t.Fatal("new conversation should be current")
	}
}

func TestSubmitEmptyQueryMutatesNothing(t *testing.T) {
	st := newTestStore(t)
	orchestrator := New(st, fakeSources{}, &fakeCompletion{result: &ai.Result{}}, 6)

	if _, err := orchestrator.Submit(context.Background(), "", "   "); !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
	if len(st.Snapshot()) != 0 {
		t.Fatal("empty query must not touch the store")
	}
}

func TestSubmitCompletionFailureResolvesWithApology(t *testing.T) {
	st := newTestStore(t)
	completion := &fakeCompletion{err: ai.ErrCompletion}
	orchestrator := New(st, fakeSources{result: testSources()}, completion, 6)

	_, err := orchestrator.Submit(context.Background(), "", "What is quantum computing?")
	if !errors.Is(err, ai.ErrCompletion) {
		t.Fatalf("expected completion error, got %v", err)
	}

	snapshot := st.Snapshot()
	if len(snapshot) != 1 {
		t.Fatalf("expected one conversation, got %d", len(snapshot))
	}

	assistant := snapshot[0].Messages[1]
	if assistant.Content != ApologyMessage {
		t.Fatalf("expected apology content, got %q", assistant.Content)
	}
	if assistant.IsLoading {
		t.Fatal("placeholder must resolve even on failure")
	}
	if len(assistant.Sources) != 2 {
		t.Fatalf("fetched sources must survive a failed completion: %+v", assistant.Sources)
	}
}

func TestSubmitSingleFlightPerConversation(t *testing.T) {
	st := newTestStore(t)
	block := make(chan struct{})
	completion := &fakeCompletion{
		result: &ai.Result{Answer: "done", Followups: ai.Followups{Questions: []string{"What happens next in this area?"}}},
		block:  block,
	}
	orchestrator := New(st, fakeSources{result: testSources()}, completion, 6)

	conversationID := st.CreateConversation("first question")

	done := make(chan error, 1)
	go func() {
		_, err := orchestrator.Submit(context.Background(), conversationID, "first question")
		done <- err
	}()

	waitFor(t, "placeholder", func() bool {
		conversation, ok := st.Conversation(conversationID)
		return ok && len(conversation.Messages) == 2 && conversation.Messages[1].IsLoading
	})

	if _, err := orchestrator.Submit(context.Background(), conversationID, "second question"); !errors.Is(err, ErrInFlight) {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("first submission failed: %v", err)
	}

	// Guard released: a new turn against the same conversation is accepted.
	if _, err := orchestrator.Submit(context.Background(), conversationID, "third question"); err != nil {
		t.Fatalf("guard not released: %v", err)
	}
}

func TestStaleResolutionTargetsOwnConversation(t *testing.T) {
	st := newTestStore(t)
	block := make(chan struct{})
	completion := &fakeCompletion{
		result: &ai.Result{Answer: "slow answer", Followups: ai.Followups{Questions: []string{"What took this answer so long?"}}},
		block:  block,
	}
	orchestrator := New(st, fakeSources{result: testSources()}, completion, 6)

	slowID := st.CreateConversation("slow question")

	done := make(chan error, 1)
	go func() {
		_, err := orchestrator.Submit(context.Background(), slowID, "slow question")
		done <- err
	}()

	waitFor(t, "placeholder", func() bool {
		conversation, ok := st.Conversation(slowID)
		return ok && len(conversation.Messages) == 2
	})

	// The user moves on to a new conversation while the old one is pending.
	newID := st.CreateConversation("new question")

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("slow submission failed: %v", err)
	}

	slow, _ := st.Conversation(slowID)
	if slow.Messages[1].Content != "slow answer" || slow.Messages[1].IsLoading {
		t.Fatalf("stale resolution missed its conversation: %+v", slow.Messages[1])
	}

	fresh, _ := st.Conversation(newID)
	if len(fresh.Messages) != 0 {
		t.Fatalf("resolution leaked into the current conversation: %+v", fresh.Messages)
	}
}

func TestSubmitAppendsToCurrentConversation(t *testing.T) {
	st := newTestStore(t)
	completion := &fakeCompletion{result: &ai.Result{
		Answer:    "second answer",
		Followups: ai.Followups{Questions: []string{"What else is worth exploring here?"}},
	}}
	orchestrator := New(st, fakeSources{result: testSources()}, completion, 6)

	first, err := orchestrator.Submit(context.Background(), "", "first question")
	if err != nil {
		t.Fatalf("Submit err: %v", err)
	}

	second, err := orchestrator.Submit(context.Background(), "", "second question")
	if err != nil {
		t.Fatalf("Submit err: %v", err)
	}

	if second.ConversationID != first.ConversationID {
		t.Fatal("follow-up turn should target the current conversation")
	}

	conversation, _ := st.Conversation(first.ConversationID)
	if len(conversation.Messages) != 4 {
		t.Fatalf("expected 4 messages after two turns, got %d", len(conversation.Messages))
	}
}
