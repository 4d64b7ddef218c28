package judge

import "context"

// Grade is the structured verdict for a resume scored against a job description.
type Grade struct {
	// Score is 0-100. 70 and above passes the funnel threshold.
	Score     int
	Reasoning string
	// Raw preserves the unparsed model output for metadata and debugging.
	Raw string
}

// Judge scores resumes and classifies candidate correspondence. Implementations
// must recover from malformed model output themselves: Score falls back to a
// deterministic extraction, Classify to a keyword scan of the candidate's own
// text.
type Judge interface {
	Score(ctx context.Context, resumeText, jobDescription string) (*Grade, error)
	Classify(ctx context.Context, replyText string) (bool, error)
}
