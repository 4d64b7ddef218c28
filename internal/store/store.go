package store

import (
	"time"
)

// Status is the single field driving all pipeline behavior. Transitions only
// ever move forward along the funnel graph; the orchestrator enforces this by
// reading candidates through status-filtered queries and never rewinding.
type Status string

const (
	StatusNewApplication    Status = "NEW_APPLICATION"
	StatusGraded            Status = "GRADED"
	StatusCVRejected        Status = "CV_REJECTED"
	StatusQuestionnaireSent Status = "QUESTIONNAIRE_SENT"
	StatusRejectedVisa      Status = "REJECTED_VISA"
	StatusFormCompleted     Status = "FORM_COMPLETED"
	StatusInviteSent        Status = "INVITE_SENT"
	StatusRound2Approved    Status = "ROUND_2_APPROVED"
	StatusRound2Invited     Status = "ROUND_2_INVITED"
)

// statusRank orders statuses along the funnel. Statuses sharing a rank are
// alternative outcomes of the same stage, not successors of each other.
var statusRank = map[Status]int{
	StatusNewApplication:    0,
	StatusGraded:            1,
	StatusCVRejected:        1,
	StatusQuestionnaireSent: 2,
	StatusRejectedVisa:      3,
	StatusFormCompleted:     3,
	StatusInviteSent:        4,
	StatusRound2Approved:    5,
	StatusRound2Invited:     6,
}

// Rank returns the position of the status in the funnel graph, or -1 for an
// unknown status.
func (s Status) Rank() int {
	rank, ok := statusRank[s]
	if !ok {
		return -1
	}
	return rank
}

// Terminal reports whether no automated action ever follows this status.
func (s Status) Terminal() bool {
	return s == StatusCVRejected || s == StatusRejectedVisa
}

// Advances reports whether moving from s to next goes forward in the funnel.
func (s Status) Advances(next Status) bool {
	from, to := s.Rank(), next.Rank()
	return from >= 0 && to >= 0 && to > from
}

// Candidate is one applicant-job pair. Mutated exclusively through store
// updates issued by pipeline stages; never deleted by this process.
type Candidate struct {
	ID             int64
	Email          string
	FullName       string
	Status         Status
	JobID          *int64
	Score          *int
	ResumeText     string
	JobDescription string

	// InterviewToken is generated once at creation and embedded in every
	// interview link sent to the candidate. It is never regenerated.
	InterviewToken string

	InviteSentAt      *time.Time
	ReminderSentAt    *time.Time
	Round2InviteAfter *time.Time
	CreatedAt         *time.Time

	Metadata map[string]any

	// Job carries the joined job row when the query requested it.
	Job *Job
}

// Job is referenced, never owned, by candidates.
type Job struct {
	ID          int64
	Title       string
	Description string
	Location    string
	IsActive    bool
}

// NewCandidate is the payload for ingesting a fresh application.
type NewCandidate struct {
	Email          string
	FullName       string
	ResumeText     string
	JobID          int64
	JobDescription string
	Metadata       map[string]any
}
