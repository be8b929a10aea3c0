package campaign

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusDraft, StatusPending, true},
		{StatusPending, StatusActive, true},
		{StatusPending, StatusDraft, true},
		{StatusActive, StatusFunded, true},
		{StatusActive, StatusFailed, true},
		{StatusActive, StatusDraft, true},

		{StatusDraft, StatusActive, false},
		{StatusDraft, StatusFunded, false},
		{StatusPending, StatusFunded, false},
		{StatusActive, StatusPending, false},
		{StatusFunded, StatusActive, false},
		{StatusFunded, StatusDraft, false},
		{StatusFailed, StatusActive, false},
		{StatusFailed, StatusPending, false},
	}

	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestIsEditable(t *testing.T) {
	for _, tc := range []struct {
		status Status
		want   bool
	}{
		{StatusDraft, true},
		{StatusPending, true},
		{StatusActive, false},
		{StatusFunded, false},
		{StatusFailed, false},
	} {
		c := &Campaign{Status: tc.status}
		if got := c.IsEditable(); got != tc.want {
			t.Errorf("IsEditable() for %s = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestPercentFunded(t *testing.T) {
	c := &Campaign{GoalAmount: 100000, CurrentAmount: 25000}
	if got := c.PercentFunded(); got != 25 {
		t.Errorf("expected 25%%, got %v", got)
	}

	over := &Campaign{GoalAmount: 100000, CurrentAmount: 150000}
	if got := over.PercentFunded(); got != 150 {
		t.Errorf("expected 150%%, got %v", got)
	}

	zero := &Campaign{GoalAmount: 0, CurrentAmount: 500}
	if got := zero.PercentFunded(); got != 0 {
		t.Errorf("expected 0%% for zero goal, got %v", got)
	}
}
