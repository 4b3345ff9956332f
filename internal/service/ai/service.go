package ai

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/openscout/scout/internal/config"
	"github.com/openscout/scout/internal/model/search"
)

// ErrCompletion is the single opaque error surfaced for any completion
// transport failure. No retry is attempted.
var ErrCompletion = errors.New("failed to get AI response")

// Result is one completed answer plus its mined follow-up questions.
type Result struct {
	Answer    string
	Followups Followups
}

// Service wraps the hosted chat-completion endpoint behind a compiled prompt
// chain.
type Service struct {
	chatModel model.ChatModel
	cfg       config.AIConfig
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService builds the completion chain: fixed search-assistant system
// prompt plus the user query, fed into the configured chat model.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		cfg:       cfg,
		chain:     runnable,
	}, nil
}

// Complete asks the model to answer query using the supplied sources and
// mines follow-up questions out of the generated text. Sources may be empty;
// the prompt then instructs the model to answer from general knowledge.
func (s *Service) Complete(ctx context.Context, query string, srcs []search.Source) (*Result, error) {
	input := map[string]any{
		"system": buildSystemPrompt(srcs),
		"query":  query,
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompletion, err)
	}

	answer := response.Content
	if answer == "" {
		answer = "Sorry, I could not generate a response."
	}

	followups := ExtractFollowups(answer)
	log.Printf("[ai] generated answer length=%d, followups=%d extracted=%t",
		len(answer), len(followups.Questions), followups.Extracted)

	return &Result{Answer: answer, Followups: followups}, nil
}
