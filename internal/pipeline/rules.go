package pipeline

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"hireloop/internal/store"
)

// Route is the outreach decision for a candidate who passed grading.
type Route int

const (
	// RouteInterviewInvite sends the round-1 interview link directly.
	RouteInterviewInvite Route = iota
	// RouteEligibilityForm interposes the visa questionnaire before any
	// interview link goes out.
	RouteEligibilityForm
)

// eligibilityLocation routes candidates through the visa questionnaire when it
// appears anywhere in the job location, case-insensitively.
const eligibilityLocation = "dubai"

// Passes reports whether a resume score clears the threshold. The threshold
// itself is inclusive.
func Passes(score, threshold int) bool {
	return score >= threshold
}

// GradeOutcome maps a score to the candidate's post-grading status.
func GradeOutcome(score, threshold int) store.Status {
	if Passes(score, threshold) {
		return store.StatusGraded
	}
	return store.StatusCVRejected
}

// RouteAfterGrading decides whether a passing candidate gets the eligibility
// questionnaire or goes straight to the interview invite. Candidates without a
// resolvable job row default to the direct invite.
func RouteAfterGrading(job *store.Job) Route {
	if job == nil {
		return RouteInterviewInvite
	}
	if strings.Contains(strings.ToLower(job.Location), eligibilityLocation) {
		return RouteEligibilityForm
	}
	return RouteInterviewInvite
}

// ReminderDue reports whether a candidate qualifies for the single nudge email.
// The invite must have aged past the configured window, the job must still be
// open, and no reminder may have been sent before.
func ReminderDue(c *store.Candidate, now time.Time, after time.Duration) bool {
	if c.InviteSentAt == nil || c.ReminderSentAt != nil {
		return false
	}
	if c.Job == nil || !c.Job.IsActive {
		return false
	}
	return now.Sub(*c.InviteSentAt) >= after
}

// InterviewLink builds the round-1 interview URL from the candidate's stable
// token.
func (s Settings) InterviewLink(token string) string {
	return strings.TrimRight(s.InterviewBaseURL, "/") + "/interview/" + token
}

// Round2Link builds the technical-round interview URL.
func (s Settings) Round2Link(token string) string {
	return strings.TrimRight(s.Round2BaseURL, "/") + "/interview/round2/" + token
}

// FormURL builds the external eligibility questionnaire link. The token and
// name ride along as hidden fields so the form webhook can map the submission
// back to the candidate.
func (s Settings) FormURL(token, fullName string) string {
	return fmt.Sprintf("%s/%s?interview_token=%s&candidate_name=%s",
		strings.TrimRight(s.FormBaseURL, "/"),
		s.FormID,
		url.QueryEscape(token),
		url.QueryEscape(fullName),
	)
}
