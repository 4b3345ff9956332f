package ai

import (
	"fmt"
	"strings"

	"github.com/openscout/scout/internal/model/search"
)

const systemPromptHeader = `You are an AI search assistant similar to Perplexity AI. Your role is to:

1. Provide comprehensive, accurate answers based on the user's query
2. When sources are provided, cite them using numbered references [1], [2], etc.
3. Generate 3-5 relevant follow-up questions to help users explore the topic deeper
4. Format your response in clear, readable sections
5. Be conversational but authoritative in tone
6. Focus on current, factual information

Response Format:
- Answer the query thoroughly using provided sources
- Include numbered citations when referencing sources
- End with 3-5 follow-up questions

Sources available: `

const noSourcesNotice = "No external sources provided - use your knowledge base"

// buildSystemPrompt renders the fixed instruction block plus a numbered
// listing of the supplied sources.
func buildSystemPrompt(srcs []search.Source) string {
	var b strings.Builder
	b.WriteString(systemPromptHeader)

	if len(srcs) == 0 {
		b.WriteString(noSourcesNotice)
		return b.String()
	}

	for i, src := range srcs {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%d] %s - %s", i+1, src.Title, src.Snippet)
	}
	return b.String()
}
