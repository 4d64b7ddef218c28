package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubGenerator) GenerateJSON(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestScoreParsesStructuredOutput(t *testing.T) {
	stub := &stubGenerator{response: `{"score": 85, "reasoning": "Strong backend experience"}`}
	j := NewJudge(stub, zap.NewNop(), 0)

	grade, err := j.Score(context.Background(), "ten years of Go", "Backend engineer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if grade.Score != 85 {
		t.Fatalf("expected score 85, got %d", grade.Score)
	}
	if grade.Reasoning != "Strong backend experience" {
		t.Fatalf("unexpected reasoning: %s", grade.Reasoning)
	}
	if grade.Raw == "" {
		t.Fatal("expected raw response to be preserved")
	}

	if !strings.Contains(stub.lastPrompt, "ten years of Go") {
		t.Fatal("expected resume text in prompt")
	}
	if !strings.Contains(stub.lastPrompt, "Backend engineer") {
		t.Fatal("expected job description in prompt")
	}
}

func TestScoreHandlesCodeBlock(t *testing.T) {
	stub := &stubGenerator{response: "```json\n{\"score\": 72, \"reasoning\": \"ok\"}\n```"}
	j := NewJudge(stub, zap.NewNop(), 0)

	grade, err := j.Score(context.Background(), "resume", "jd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if grade.Score != 72 {
		t.Fatalf("expected score 72, got %d", grade.Score)
	}
}

func TestScoreRegexFallback(t *testing.T) {
	stub := &stubGenerator{response: `Here you go: "score": 64, "reasoning": "Junior profile" and some trailing prose`}
	j := NewJudge(stub, zap.NewNop(), 0)

	grade, err := j.Score(context.Background(), "resume", "jd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if grade.Score != 64 {
		t.Fatalf("expected fallback score 64, got %d", grade.Score)
	}
	if grade.Reasoning != "Junior profile" {
		t.Fatalf("unexpected fallback reasoning: %s", grade.Reasoning)
	}
}

func TestScoreFailsWhenNothingExtractable(t *testing.T) {
	stub := &stubGenerator{response: "I cannot rate this candidate."}
	j := NewJudge(stub, zap.NewNop(), 0)

	if _, err := j.Score(context.Background(), "resume", "jd"); err == nil {
		t.Fatal("expected error for unextractable response")
	}
}

func TestScorePropagatesGeneratorError(t *testing.T) {
	stub := &stubGenerator{err: errors.New("quota exceeded")}
	j := NewJudge(stub, zap.NewNop(), 0)

	if _, err := j.Score(context.Background(), "resume", "jd"); err == nil {
		t.Fatal("expected generator error to propagate")
	}
}

func TestClassifyParsesStructuredVerdict(t *testing.T) {
	tests := []struct {
		response string
		expect   bool
	}{
		{`{"has_valid_visa": true}`, true},
		{`{"has_valid_visa": false}`, false},
	}

	for _, tt := range tests {
		stub := &stubGenerator{response: tt.response}
		j := NewJudge(stub, zap.NewNop(), 0)

		got, err := j.Classify(context.Background(), "I hold a visa of some kind")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.expect {
			t.Fatalf("response %s: expected %v, got %v", tt.response, tt.expect, got)
		}
	}
}

func TestClassifyMissingVerdictKeyFallsBackToKeywords(t *testing.T) {
	// Valid JSON without the verdict key is treated like malformed output:
	// the keyword scan of the reply decides, not a silent false.
	stub := &stubGenerator{response: `{"confidence": 0.9}`}
	j := NewJudge(stub, zap.NewNop(), 0)

	got, err := j.Classify(context.Background(), "I am on a tourist visa right now")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Fatal("expected keyword scan to mark tourist visa ineligible")
	}
}

func TestClassifyKeywordFallbackNegativeWins(t *testing.T) {
	// Malformed model output; the reply mentions both a valid and an invalid
	// keyword. Invalid is checked first and must win.
	stub := &stubGenerator{response: "sorry, not json"}
	j := NewJudge(stub, zap.NewNop(), 0)

	got, err := j.Classify(context.Background(), "I have a work permit but I need sponsorship to change jobs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Fatal("expected invalid keyword to win over valid keyword")
	}
}

func TestClassifyKeywordFallbackValid(t *testing.T) {
	stub := &stubGenerator{response: "```not json```"}
	j := NewJudge(stub, zap.NewNop(), 0)

	got, err := j.Classify(context.Background(), "I hold a Golden Visa here")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got {
		t.Fatal("expected valid keyword match to classify as eligible")
	}
}

func TestClassifyDefaultsToEligible(t *testing.T) {
	// No keyword matches at all: default to eligible so a parsing failure
	// never rejects a candidate.
	stub := &stubGenerator{response: "plain text verdict"}
	j := NewJudge(stub, zap.NewNop(), 0)

	got, err := j.Classify(context.Background(), "Thanks for reaching out, happy to chat!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got {
		t.Fatal("expected inconclusive fallback to default to eligible")
	}
}

func TestClassifyScansCandidateTextNotModelOutput(t *testing.T) {
	// The malformed model output contains an invalid keyword, but the
	// candidate's own reply has a valid one. The scan must use the reply.
	stub := &stubGenerator{response: "the candidate needs sponsorship maybe?"}
	j := NewJudge(stub, zap.NewNop(), 0)

	got, err := j.Classify(context.Background(), "I am a permanent resident")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got {
		t.Fatal("keyword scan ran over model output instead of candidate reply")
	}
}
