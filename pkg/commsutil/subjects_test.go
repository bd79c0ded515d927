package commsutil

import "testing"

func TestBuildDispatchedSubject(t *testing.T) {
	tests := []struct {
		name   string
		module string
		want   string
	}{
		{name: "plain module", module: "haptics", want: "bridge.dispatched.haptics"},
		{name: "dots replaced", module: "health.kit", want: "bridge.dispatched.health_kit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildDispatchedSubject(tt.module); got != tt.want {
				t.Errorf("commsutil:subjects_test - BuildDispatchedSubject(%q) = %q, want %q", tt.module, got, tt.want)
			}
		})
	}
}
