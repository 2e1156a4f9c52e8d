package runner

import (
	"context"
	"testing"
)

func newTestBuilder(t *testing.T, args ...string) *BatchBuilder {
	t.Helper()
	b, err := NewBatchBuilder(Command{Path: "/opt/editor", Args: args})
	if err != nil {
		t.Fatalf("NewBatchBuilder: %v", err)
	}
	return b
}

func TestNewBatchBuilderRejectsBadCommands(t *testing.T) {
	if _, err := NewBatchBuilder(Command{Path: "", Args: []string{"-logFile", "x"}}); err == nil {
		t.Error("empty executable path accepted")
	}
	if _, err := NewBatchBuilder(Command{Path: "/opt/editor", Args: []string{"-batchmode"}}); err == nil {
		t.Error("missing -logFile accepted")
	}
}

func TestLogPathPerAttempt(t *testing.T) {
	b := newTestBuilder(t, "-batchmode", "-logFile", "/tmp/build.log")

	tests := []struct {
		attempt int
		want    string
	}{
		{1, "/tmp/build.log"},
		{2, "/tmp/build.attempt-2.log"},
		{25, "/tmp/build.attempt-25.log"},
	}
	for _, tt := range tests {
		if got := b.LogPath(tt.attempt); got != tt.want {
			t.Errorf("LogPath(%d) = %q, want %q", tt.attempt, got, tt.want)
		}
	}
}

func TestLogPathWithoutExtension(t *testing.T) {
	b := newTestBuilder(t, "-logFile", "/tmp/buildlog")
	if got := b.LogPath(3); got != "/tmp/buildlog.attempt-3" {
		t.Errorf("LogPath(3) = %q, want /tmp/buildlog.attempt-3", got)
	}
}

func TestBuildCommandSubstitutesLogFile(t *testing.T) {
	b := newTestBuilder(t, "-batchmode", "-logFile", "/tmp/build.log", "-quit")
	b.SetHeadlessWrap(false)

	cmd, err := b.BuildCommand(context.Background(), 2)
	if err != nil {
		t.Fatalf("BuildCommand: %v", err)
	}

	logPath, err := LogFilePath(cmd.Args)
	if err != nil {
		t.Fatalf("built command lost -logFile: %v", err)
	}
	if logPath != "/tmp/build.attempt-2.log" {
		t.Errorf("log path = %q, want /tmp/build.attempt-2.log", logPath)
	}

	// Base command is not mutated across attempts.
	first, _ := b.BuildCommand(context.Background(), 1)
	firstLog, _ := LogFilePath(first.Args)
	if firstLog != "/tmp/build.log" {
		t.Errorf("attempt 1 log path = %q after attempt 2 build", firstLog)
	}
}

func TestBuildCommandHeadlessWrap(t *testing.T) {
	b := newTestBuilder(t, "-batchmode", "-logFile", "/tmp/build.log")
	b.SetHeadlessWrap(true)

	cmd, err := b.BuildCommand(context.Background(), 1)
	if err != nil {
		t.Fatalf("BuildCommand: %v", err)
	}
	if cmd.Path != xvfbRunner {
		t.Errorf("Path = %q, want %q", cmd.Path, xvfbRunner)
	}
	if len(cmd.Args) < 2 || cmd.Args[0] != "--auto-servernum" || cmd.Args[1] != "/opt/editor" {
		t.Errorf("wrapper args = %v", cmd.Args)
	}
}

func TestBuildCommandNoWrapWithNoGraphics(t *testing.T) {
	b := newTestBuilder(t, "-batchmode", "-nographics", "-logFile", "/tmp/build.log")

	cmd, err := b.BuildCommand(context.Background(), 1)
	if err != nil {
		t.Fatalf("BuildCommand: %v", err)
	}
	if cmd.Path != "/opt/editor" {
		t.Errorf("Path = %q, want /opt/editor (no wrapper with -nographics)", cmd.Path)
	}
}

func TestBuilderName(t *testing.T) {
	b := newTestBuilder(t, "-logFile", "/tmp/a.log")
	if got := b.Name(); got != "editor" {
		t.Errorf("Name() = %q, want editor", got)
	}
}
