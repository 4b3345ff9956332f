package ai

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxFollowups      = 5
	minQuestionLength = 10
)

// Followups is the outcome of follow-up mining. Extracted reports whether the
// questions were mined out of the generated text; when false, Questions is
// the fixed fallback list.
type Followups struct {
	Questions []string `json:"questions"`
	Extracted bool     `json:"extracted"`
}

var (
	// Stage one: a labeled follow-up section, captured up to a blank line.
	followupSection = regexp.MustCompile(`(?is)(?:follow[- ]?up questions?|related questions?|you might also ask):\s*(.*?)(?:\n\n|\z)`)
	// Stage two: candidate boundaries are line breaks, bullets, or numbering.
	followupSplitter = regexp.MustCompile(`\n|•|\d+\.`)
)

// ExtractFollowups mines follow-up questions out of generated text. Stage one
// locates a labeled section; stage two splits it into candidates and keeps
// lines long enough to be real questions. When either stage comes up empty
// the fixed fallback list is returned, so the success path never yields an
// empty list.
func ExtractFollowups(text string) Followups {
	match := followupSection.FindStringSubmatch(text)
	if match == nil {
		return Followups{Questions: defaultFollowups()}
	}

	questions := make([]string, 0, maxFollowups)
	for _, candidate := range followupSplitter.Split(match[1], -1) {
		candidate = strings.TrimSpace(candidate)
		candidate = strings.TrimSpace(strings.TrimPrefix(candidate, "-"))
		if utf8.RuneCountInString(candidate) <= minQuestionLength || !strings.Contains(candidate, "?") {
			continue
		}
		questions = append(questions, candidate)
		if len(questions) == maxFollowups {
			break
		}
	}

	if len(questions) == 0 {
		return Followups{Questions: defaultFollowups()}
	}
	return Followups{Questions: questions, Extracted: true}
}

func defaultFollowups() []string {
	return []string{
		"Can you provide more details about this topic?",
		"What are the latest developments in this area?",
		"How does this compare to similar topics?",
		"What are the implications of this information?",
	}
}
