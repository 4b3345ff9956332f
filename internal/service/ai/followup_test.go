package ai

import (
	"reflect"
	"testing"
)

func TestExtractFollowupsNumberedSection(t *testing.T) {
	text := `Quantum computing uses qubits instead of bits [1].

Follow-up questions:
1. How do quantum computers differ from classical computers?
2. What problems are quantum computers best suited for?
3. When will quantum computers be commercially available?

Some trailing commentary.`

	got := ExtractFollowups(text)

	if !got.Extracted {
		t.Fatal("expected extracted questions")
	}
	want := []string{
		"How do quantum computers differ from classical computers?",
		"What problems are quantum computers best suited for?",
		"When will quantum computers be commercially available?",
	}
	if !reflect.DeepEqual(got.Questions, want) {
		t.Fatalf("unexpected questions: %#v", got.Questions)
	}
}

func TestExtractFollowupsBulletedSection(t *testing.T) {
	text := `An answer.

Related questions:
- What should I consider before getting started?
- How much does a typical setup cost?`

	got := ExtractFollowups(text)

	if !got.Extracted || len(got.Questions) != 2 {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got.Questions[0] != "What should I consider before getting started?" {
		t.Fatalf("bullet not stripped: %q", got.Questions[0])
	}
}

func TestExtractFollowupsHeadingIsCaseInsensitive(t *testing.T) {
	text := "An answer.\n\nYOU MIGHT ALSO ASK:\n• Why does this approach work so well?"

	got := ExtractFollowups(text)

	if !got.Extracted || len(got.Questions) != 1 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestExtractFollowupsCapsAtFive(t *testing.T) {
	text := `Follow-up questions:
1. What is the first thing to know here?
2. What is the second thing to know here?
3. What is the third thing to know here?
4. What is the fourth thing to know here?
5. What is the fifth thing to know here?
6. What is the sixth thing to know here?`

	got := ExtractFollowups(text)

	if len(got.Questions) != 5 {
		t.Fatalf("expected cap at 5, got %d", len(got.Questions))
	}
}

func TestExtractFollowupsFiltersNonQuestions(t *testing.T) {
	text := `Follow-up questions:
1. Short?
2. This line has no question mark at all
3. What are the long-term implications of this?`

	got := ExtractFollowups(text)

	if !got.Extracted {
		t.Fatal("expected extraction to succeed")
	}
	if len(got.Questions) != 1 || got.Questions[0] != "What are the long-term implications of this?" {
		t.Fatalf("unexpected questions: %#v", got.Questions)
	}
}

func TestExtractFollowupsFallsBackWithoutSection(t *testing.T) {
	got := ExtractFollowups("Just an answer with no labeled section.")

	if got.Extracted {
		t.Fatal("expected fallback result")
	}
	if len(got.Questions) != 4 {
		t.Fatalf("expected the 4 default questions, got %d", len(got.Questions))
	}
}

func TestExtractFollowupsFallsBackOnUnparseableSection(t *testing.T) {
	got := ExtractFollowups("Follow-up questions:\nnone")

	if got.Extracted {
		t.Fatal("expected fallback result")
	}
	if len(got.Questions) != 4 {
		t.Fatalf("expected the 4 default questions, got %d", len(got.Questions))
	}
}
