package chat

import (
	"time"

	"github.com/openscout/scout/internal/model/search"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn's content. An assistant message with IsLoading set is a
// placeholder whose content arrives once the search turn resolves.
type Message struct {
	ID                string          `json:"id"`
	Role              string          `json:"role"`
	Content           string          `json:"content"`
	Sources           []search.Source `json:"sources,omitempty"`
	FollowupQuestions []string        `json:"followupQuestions,omitempty"`
	Timestamp         time.Time       `json:"timestamp"`
	IsLoading         bool            `json:"isLoading,omitempty"`
}

// Clone returns a deep copy so store readers cannot mutate owned state.
func (m Message) Clone() Message {
	out := m
	if m.Sources != nil {
		out.Sources = append([]search.Source(nil), m.Sources...)
	}
	if m.FollowupQuestions != nil {
		out.FollowupQuestions = append([]string(nil), m.FollowupQuestions...)
	}
	return out
}
