package pipeline

import (
	"testing"

	"hireloop/internal/store"
)

func TestParseJobTitle(t *testing.T) {
	t.Parallel()

	cases := []struct {
		subject string
		want    string
	}{
		{"Backend Engineer candidate - Jane Doe applied via Betterteam", "Backend Engineer"},
		{"Sales Manager (Dubai) candidate - Omar K applied via Betterteam", "Sales Manager (Dubai)"},
		{"backend engineer CANDIDATE - x applied via Betterteam", "backend engineer"},
		{"Weekly digest from Betterteam", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ParseJobTitle(tc.subject); got != tc.want {
			t.Fatalf("ParseJobTitle(%q) = %q, want %q", tc.subject, got, tc.want)
		}
	}
}

func TestParseCandidateName(t *testing.T) {
	t.Parallel()

	subject := "Backend Engineer candidate - Jane Doe applied via Betterteam"
	if got := ParseCandidateName(subject); got != "Jane Doe" {
		t.Fatalf("unexpected name: %q", got)
	}
	if got := ParseCandidateName("unrelated subject"); got != "" {
		t.Fatalf("expected empty name, got %q", got)
	}
}

func TestParseCandidateEmail(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "labeled email wins",
			body: "From noreply@betterteam.com\nEmail: Jane.Doe@Example.com\nPhone: 123",
			want: "jane.doe@example.com",
		},
		{
			name: "bare email skips relays",
			body: "notification from no-reply@betterteam.com about jane@example.com",
			want: "jane@example.com",
		},
		{
			name: "only relay addresses",
			body: "sent by noreply@betterteam.com",
			want: "",
		},
		{
			name: "no address at all",
			body: "resume text with no contact details",
			want: "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ParseCandidateEmail(tc.body); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMatchJob(t *testing.T) {
	t.Parallel()

	jobs := []*store.Job{
		{ID: 1, Title: "Backend Engineer"},
		{ID: 2, Title: "Senior Backend Engineer"},
		{ID: 3, Title: "Sales Manager"},
	}

	if got := matchJob(jobs, "backend engineer"); got == nil || got.ID != 1 {
		t.Fatalf("exact match failed: %+v", got)
	}
	if got := matchJob(jobs, " Sales "); got == nil || got.ID != 3 {
		t.Fatalf("unique partial match failed: %+v", got)
	}
	if got := matchJob(jobs, "Engineer"); got != nil {
		t.Fatalf("ambiguous partial should not match, got %+v", got)
	}
	if got := matchJob(jobs, "Accountant"); got != nil {
		t.Fatalf("unknown title should not match, got %+v", got)
	}
	if got := matchJob(jobs, ""); got != nil {
		t.Fatalf("empty title should not match, got %+v", got)
	}
}
