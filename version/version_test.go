package version

import (
	"testing"
	"time"
)

func withVars(t *testing.T, v, commit, built string) {
	t.Helper()
	origV, origC, origB := Version, Commit, BuildTime
	Version, Commit, BuildTime = v, commit, built
	t.Cleanup(func() { Version, Commit, BuildTime = origV, origC, origB })
}

func TestGetLinkedValues(t *testing.T) {
	withVars(t, "1.2.0", "abcdef1234567", "2026-01-15T10:30:00Z")

	info := Get()
	if info.Version != "1.2.0" || info.Commit != "abcdef1234567" {
		t.Errorf("unexpected info: %+v", info)
	}
	want := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	if !info.BuildDate.Equal(want) {
		t.Errorf("BuildDate = %v, want %v", info.BuildDate, want)
	}
}

func TestGetInvalidBuildTime(t *testing.T) {
	withVars(t, "1.2.0", "abc", "yesterday")
	if info := Get(); info.Version != "1.2.0" {
		t.Errorf("Version = %q", info.Version)
	}
}

func TestShort(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"version only", Info{Version: "dev"}, "dev"},
		{"with commit", Info{Version: "1.2.0", Commit: "abcdef1234567"}, "1.2.0-abcdef1"},
		{"short commit", Info{Version: "1.2.0", Commit: "abc"}, "1.2.0-abc"},
		{"dirty", Info{Version: "1.2.0", Commit: "abcdef1234567", Modified: true}, "1.2.0-abcdef1-dirty"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.info.Short(); got != tc.want {
				t.Errorf("Short() = %q, want %q", got, tc.want)
			}
		})
	}
}
