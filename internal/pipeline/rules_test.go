package pipeline

import (
	"testing"
	"time"

	"hireloop/internal/store"
)

func TestPassesBoundary(t *testing.T) {
	t.Parallel()

	cases := []struct {
		score int
		want  bool
	}{
		{score: 100, want: true},
		{score: 71, want: true},
		{score: 70, want: true},
		{score: 69, want: false},
		{score: 0, want: false},
	}
	for _, tc := range cases {
		if got := Passes(tc.score, 70); got != tc.want {
			t.Fatalf("Passes(%d, 70) = %v, want %v", tc.score, got, tc.want)
		}
	}
}

func TestGradeOutcome(t *testing.T) {
	t.Parallel()

	if got := GradeOutcome(70, 70); got != store.StatusGraded {
		t.Fatalf("70 should pass, got %s", got)
	}
	if got := GradeOutcome(69, 70); got != store.StatusCVRejected {
		t.Fatalf("69 should be rejected, got %s", got)
	}
}

func TestRouteAfterGrading(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		job  *store.Job
		want Route
	}{
		{name: "nil job", job: nil, want: RouteInterviewInvite},
		{name: "london office", job: &store.Job{Location: "London, UK"}, want: RouteInterviewInvite},
		{name: "exact dubai", job: &store.Job{Location: "Dubai"}, want: RouteEligibilityForm},
		{name: "dubai substring", job: &store.Job{Location: "Remote - Dubai Office"}, want: RouteEligibilityForm},
		{name: "uppercase", job: &store.Job{Location: "DUBAI, UAE"}, want: RouteEligibilityForm},
		{name: "empty location", job: &store.Job{Location: ""}, want: RouteInterviewInvite},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := RouteAfterGrading(tc.job); got != tc.want {
				t.Fatalf("got route %v, want %v", got, tc.want)
			}
		})
	}
}

func TestReminderDue(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	after := 72 * time.Hour
	fourDaysAgo := now.Add(-96 * time.Hour)
	twoDaysAgo := now.Add(-48 * time.Hour)
	activeJob := &store.Job{IsActive: true}

	cases := []struct {
		name string
		c    store.Candidate
		want bool
	}{
		{
			name: "overdue and active",
			c:    store.Candidate{InviteSentAt: &fourDaysAgo, Job: activeJob},
			want: true,
		},
		{
			name: "exactly at the window",
			c: store.Candidate{
				InviteSentAt: func() *time.Time { v := now.Add(-after); return &v }(),
				Job:          activeJob,
			},
			want: true,
		},
		{
			name: "too recent",
			c:    store.Candidate{InviteSentAt: &twoDaysAgo, Job: activeJob},
			want: false,
		},
		{
			name: "already reminded",
			c:    store.Candidate{InviteSentAt: &fourDaysAgo, ReminderSentAt: &twoDaysAgo, Job: activeJob},
			want: false,
		},
		{
			name: "job closed",
			c:    store.Candidate{InviteSentAt: &fourDaysAgo, Job: &store.Job{IsActive: false}},
			want: false,
		},
		{
			name: "no job row",
			c:    store.Candidate{InviteSentAt: &fourDaysAgo},
			want: false,
		},
		{
			name: "never invited",
			c:    store.Candidate{Job: activeJob},
			want: false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ReminderDue(&tc.c, now, after); got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestLinkBuilders(t *testing.T) {
	t.Parallel()

	s := Settings{
		InterviewBaseURL: "https://interviews.example.com/",
		Round2BaseURL:    "https://interviews.example.com",
		FormBaseURL:      "https://tally.so/r",
		FormID:           "wABCDE",
	}

	if got := s.InterviewLink("tok-1"); got != "https://interviews.example.com/interview/tok-1" {
		t.Fatalf("unexpected interview link: %s", got)
	}
	if got := s.Round2Link("tok-1"); got != "https://interviews.example.com/interview/round2/tok-1" {
		t.Fatalf("unexpected round2 link: %s", got)
	}
	got := s.FormURL("tok-1", "Jane Doe")
	want := "https://tally.so/r/wABCDE?interview_token=tok-1&candidate_name=Jane+Doe"
	if got != want {
		t.Fatalf("unexpected form url:\n got %s\nwant %s", got, want)
	}
}

func TestWithDefaults(t *testing.T) {
	t.Parallel()

	s := Settings{}.WithDefaults()
	if s.PassThreshold != 70 {
		t.Fatalf("unexpected default threshold: %d", s.PassThreshold)
	}
	if s.ReminderAfter != 72*time.Hour {
		t.Fatalf("unexpected default reminder window: %s", s.ReminderAfter)
	}
	if s.Interval != time.Minute {
		t.Fatalf("unexpected default interval: %s", s.Interval)
	}
	if s.DisableIngest || s.DisableOutreach {
		t.Fatal("all stages must be enabled by default")
	}

	custom := Settings{PassThreshold: 85}.WithDefaults()
	if custom.PassThreshold != 85 {
		t.Fatalf("explicit threshold overwritten: %d", custom.PassThreshold)
	}
}
