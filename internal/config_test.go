package internal

import (
	"log/slog"
	"testing"
)

func TestLogLevelFollowsModes(t *testing.T) {
	t.Cleanup(func() {
		SetDebug(false)
		SetQuiet(false)
	})

	tests := []struct {
		debug, quiet bool
		want         slog.Level
	}{
		{false, false, slog.LevelInfo},
		{false, true, slog.LevelWarn},
		{true, false, slog.LevelDebug},
		{true, true, slog.LevelDebug},
	}

	for _, tt := range tests {
		SetDebug(tt.debug)
		SetQuiet(tt.quiet)
		if got := LogLevel().Level(); got != tt.want {
			t.Fatalf("debug=%v quiet=%v: level = %v, want %v", tt.debug, tt.quiet, got, tt.want)
		}
	}
}

func TestBuildInfoString(t *testing.T) {
	tests := []struct {
		name string
		info BuildInfo
		want string
	}{
		{"local", BuildInfo{Version: "1.2.3", Local: true}, localBuild},
		{"main", BuildInfo{Version: "1.2.3", Stage: "main", Commit: "a1b2c3d4", Platform: "linux/amd64"}, "1.2.3 a1b2c3d4 [linux/amd64]"},
		{"branch", BuildInfo{Version: "1.2.3", Stage: "staging", Commit: "a1b2c3d4", Platform: "linux/arm64"}, "1.2.3+staging a1b2c3d4 [linux/arm64]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.String(); got != tt.want {
				t.Fatalf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildFromLinkerFlags(t *testing.T) {
	saved := [3]string{version, stage, gitCommit}
	t.Cleanup(func() { version, stage, gitCommit = saved[0], saved[1], saved[2] })

	version, stage, gitCommit = " V2.0.1 ", "Main", "deadbeef"
	b := Build()
	if b.Local || b.Version != "2.0.1" || b.Stage != "main" || b.Commit != "deadbeef" {
		t.Fatalf("Build() = %+v", b)
	}

	gitCommit = ""
	b = Build()
	if !b.Local || b.Commit != undefined {
		t.Fatalf("Build() without commit = %+v", b)
	}
	if got := VersionString(); got != localBuild {
		t.Fatalf("VersionString() = %q, want %q", got, localBuild)
	}
}
