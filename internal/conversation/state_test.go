package conversation

import "testing"

func TestIsTransitionAllowed(t *testing.T) {
	testCases := []struct {
		name     string
		from     State
		to       State
		expected bool
	}{
		{name: "greeting to collecting info", from: StateGreeting, to: StateCollectingInfo, expected: true},
		{name: "collecting info to discussing use case", from: StateCollectingInfo, to: StateDiscussingUseCase, expected: true},
		{name: "discussing use case to answering", from: StateDiscussingUseCase, to: StateAnswering, expected: true},
		{name: "greeting stays", from: StateGreeting, to: StateGreeting, expected: true},
		{name: "answering absorbs", from: StateAnswering, to: StateAnswering, expected: true},
		{name: "answering never regresses", from: StateAnswering, to: StateGreeting, expected: false},
		{name: "no skipping ahead", from: StateGreeting, to: StateAnswering, expected: false},
		{name: "collecting info back to greeting invalid", from: StateCollectingInfo, to: StateGreeting, expected: false},
		{name: "unknown state invalid", from: State("unknown"), to: StateGreeting, expected: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if actual := IsTransitionAllowed(tc.from, tc.to); actual != tc.expected {
				t.Errorf("IsTransitionAllowed(%s -> %s) = %t, expected %t", tc.from, tc.to, actual, tc.expected)
			}
		})
	}
}

func TestProfile_NextField(t *testing.T) {
	testCases := []struct {
		profile Profile
		want    string
	}{
		{profile: Profile{}, want: "name"},
		{profile: Profile{Name: "Jane"}, want: "company"},
		{profile: Profile{Name: "Jane", Company: "Acme"}, want: "role"},
		{profile: Profile{Name: "Jane", Company: "Acme", Role: "Engineer"}, want: "use_case"},
		{profile: Profile{Name: "Jane", Company: "Acme", Role: "Engineer", UseCase: "x"}, want: ""},
	}

	for _, tc := range testCases {
		if got := tc.profile.NextField(); got != tc.want {
			t.Errorf("NextField(%+v) = %q, want %q", tc.profile, got, tc.want)
		}
	}

	if !(Profile{Name: "a", Company: "b", Role: "c", UseCase: "d"}).Complete() {
		t.Error("expected full profile to be complete")
	}
}
