package pipeline

import "time"

// Settings is the immutable configuration for the funnel, built once at
// process start and passed to the orchestrator and rules. Nothing in the
// pipeline reads ambient global state.
type Settings struct {
	// CompanyName appears in every outbound email.
	CompanyName string

	// InterviewBaseURL and Round2BaseURL are the roots of candidate-facing
	// interview links; the interview token is appended as the final path
	// segment.
	InterviewBaseURL string
	Round2BaseURL    string

	// FormBaseURL and FormID locate the external eligibility questionnaire.
	FormBaseURL string
	FormID      string

	// Interval is the sleep between polling cycles.
	Interval time.Duration

	// CallTimeout bounds each candidate's external calls within a stage so
	// one hanging call cannot stall the whole cycle.
	CallTimeout time.Duration

	// PassThreshold is the minimum score that advances a graded candidate.
	PassThreshold int

	// ReminderAfter is how long an invite may sit uncompleted before the
	// single reminder goes out.
	ReminderAfter time.Duration

	// Round2Delay is the default gap between approving a candidate for the
	// technical round and the invite becoming due.
	Round2Delay time.Duration

	// InboxQuery selects unread application mail for ingestion.
	InboxQuery string

	// DisableIngest and DisableOutreach switch their stages off without
	// disturbing the rest of the cycle. Every stage runs by default; the
	// zero value is a fully enabled pipeline.
	DisableIngest   bool
	DisableOutreach bool
}

// Defaults match the production deployment.
const (
	DefaultInterval      = 60 * time.Second
	DefaultCallTimeout   = 60 * time.Second
	DefaultPassThreshold = 70
	DefaultReminderAfter = 72 * time.Hour
	DefaultRound2Delay   = 24 * time.Hour
	DefaultInboxQuery    = "label:Applications is:unread"
	DefaultFormBaseURL   = "https://tally.so/r"
)

// WithDefaults fills unset fields so a partially specified configuration
// still yields a runnable pipeline.
func (s Settings) WithDefaults() Settings {
	if s.Interval <= 0 {
		s.Interval = DefaultInterval
	}
	if s.CallTimeout <= 0 {
		s.CallTimeout = DefaultCallTimeout
	}
	if s.PassThreshold <= 0 {
		s.PassThreshold = DefaultPassThreshold
	}
	if s.ReminderAfter <= 0 {
		s.ReminderAfter = DefaultReminderAfter
	}
	if s.Round2Delay <= 0 {
		s.Round2Delay = DefaultRound2Delay
	}
	if s.InboxQuery == "" {
		s.InboxQuery = DefaultInboxQuery
	}
	if s.FormBaseURL == "" {
		s.FormBaseURL = DefaultFormBaseURL
	}
	return s
}
