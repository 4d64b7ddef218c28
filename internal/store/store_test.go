package store

import "testing"

func TestStatusAdvances(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from   Status
		to     Status
		expect bool
	}{
		{StatusNewApplication, StatusGraded, true},
		{StatusNewApplication, StatusCVRejected, true},
		{StatusGraded, StatusQuestionnaireSent, true},
		{StatusGraded, StatusInviteSent, true},
		{StatusQuestionnaireSent, StatusInviteSent, true},
		{StatusQuestionnaireSent, StatusRejectedVisa, true},
		{StatusFormCompleted, StatusInviteSent, true},
		{StatusInviteSent, StatusRound2Approved, true},
		{StatusRound2Approved, StatusRound2Invited, true},

		// never backward
		{StatusGraded, StatusNewApplication, false},
		{StatusInviteSent, StatusGraded, false},
		{StatusRound2Invited, StatusInviteSent, false},

		// alternative outcomes of the same stage are not successors
		{StatusGraded, StatusCVRejected, false},
		{StatusCVRejected, StatusGraded, false},
	}

	for _, tt := range tests {
		if got := tt.from.Advances(tt.to); got != tt.expect {
			t.Fatalf("%s -> %s: expected %v, got %v", tt.from, tt.to, tt.expect, got)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	t.Parallel()

	if !StatusCVRejected.Terminal() {
		t.Fatal("expected CV_REJECTED to be terminal")
	}
	if !StatusRejectedVisa.Terminal() {
		t.Fatal("expected REJECTED_VISA to be terminal")
	}
	if StatusInviteSent.Terminal() {
		t.Fatal("INVITE_SENT is not terminal")
	}
}

func TestStatusRankUnknown(t *testing.T) {
	t.Parallel()

	if rank := Status("BOGUS").Rank(); rank != -1 {
		t.Fatalf("expected -1 for unknown status, got %d", rank)
	}
}
