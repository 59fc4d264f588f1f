package model

import "testing"

func TestValidItemTransition(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		{ItemStatusAvailable, ItemStatusReserved, true},
		{ItemStatusAvailable, ItemStatusSold, true},
		{ItemStatusReserved, ItemStatusAvailable, true},
		{ItemStatusReserved, ItemStatusSold, true},
		{ItemStatusSold, ItemStatusAvailable, true},
		// Sold items cannot go straight back to reserved.
		{ItemStatusSold, ItemStatusReserved, false},
		// Self-transitions are invalid.
		{ItemStatusAvailable, ItemStatusAvailable, false},
		{ItemStatusReserved, ItemStatusReserved, false},
		{ItemStatusSold, ItemStatusSold, false},
		// Unknown statuses fail-closed.
		{"unknown", ItemStatusSold, false},
		{ItemStatusAvailable, "unknown", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got := ValidItemTransition(tt.from, tt.to)
		if got != tt.expected {
			t.Errorf("ValidItemTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.expected)
		}
	}
}

func TestValidCategoryAndCondition(t *testing.T) {
	if !ValidCategory("furniture") {
		t.Error("expected 'furniture' to be a valid category")
	}
	if ValidCategory("vehicles") {
		t.Error("expected 'vehicles' to be rejected")
	}
	if !ValidCondition(ConditionLikeNew) {
		t.Error("expected 'like_new' to be a valid condition")
	}
	if ValidCondition("broken") {
		t.Error("expected 'broken' to be rejected")
	}
}
