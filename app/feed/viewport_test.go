package feed

import "testing"

func TestViewportNearBottom(t *testing.T) {
	tests := []struct {
		name     string
		viewport Viewport
		want     bool
	}{
		{"top of long page", Viewport{0, 800, 3000}, false},
		{"just outside threshold", Viewport{2149, 800, 3000}, false},
		{"exactly at threshold", Viewport{2150, 800, 3000}, true},
		{"at bottom", Viewport{2200, 800, 3000}, true},
		{"content shorter than viewport", Viewport{0, 800, 400}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.viewport.NearBottom(DefaultNearBottomThreshold); got != tt.want {
				t.Errorf("NearBottom() = %v (distance %v), want %v", got, tt.viewport.DistanceToBottom(), tt.want)
			}
		})
	}
}
