package models

import "testing"

func TestIsValidTransition(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		// Happy path
		{CampaignStatusActive, CampaignStatusFunded, true},
		{CampaignStatusActive, CampaignStatusClosed, true},
		{CampaignStatusFunded, CampaignStatusClosed, true},

		// Invalid transitions
		{CampaignStatusFunded, CampaignStatusActive, false},
		{CampaignStatusClosed, CampaignStatusActive, false},
		{CampaignStatusClosed, CampaignStatusFunded, false},
		{CampaignStatusActive, CampaignStatusActive, false},
		{CampaignStatusFunded, CampaignStatusFunded, false},
		{"nonexistent", CampaignStatusFunded, false},
		{CampaignStatusActive, "nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			result := IsValidTransition(tt.from, tt.to)
			if result != tt.expected {
				t.Errorf("IsValidTransition(%q, %q) = %v, want %v", tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestAllStatusesHaveTransitionEntry(t *testing.T) {
	allStatuses := []string{CampaignStatusActive, CampaignStatusFunded, CampaignStatusClosed}

	for _, status := range allStatuses {
		if _, ok := ValidCampaignTransitions[status]; !ok {
			t.Errorf("status %q missing from ValidCampaignTransitions map", status)
		}
	}
}

func TestClosedIsTerminal(t *testing.T) {
	transitions := ValidCampaignTransitions[CampaignStatusClosed]
	if len(transitions) != 0 {
		t.Errorf("closed should have no transitions, got %v", transitions)
	}
}
