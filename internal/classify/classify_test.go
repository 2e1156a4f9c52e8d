package classify

import (
	"fmt"
	"strings"
	"testing"
)

// =============================================================================
// Table-Driven Tests: Classify
// =============================================================================

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		cancelled bool
		exitCode  int
		flakySeen bool
		want      Outcome
	}{
		{
			name:     "clean exit",
			exitCode: 0,
			want:     Clean,
		},
		{
			name:      "clean exit ignores coincidental fingerprint",
			exitCode:  0,
			flakySeen: true,
			want:      Clean,
		},
		{
			name:     "nonzero exit without fingerprint",
			exitCode: 1,
			want:     Failed,
		},
		{
			name:      "nonzero exit with fingerprint",
			exitCode:  1,
			flakySeen: true,
			want:      FlakyCrash,
		},
		{
			name:     "signal exit without fingerprint",
			exitCode: 139,
			want:     Failed,
		},
		{
			name:      "cancellation overrides clean",
			cancelled: true,
			exitCode:  0,
			want:      Cancelled,
		},
		{
			name:      "cancellation overrides failure",
			cancelled: true,
			exitCode:  137,
			want:      Cancelled,
		},
		{
			name:      "cancellation overrides flaky",
			cancelled: true,
			exitCode:  1,
			flakySeen: true,
			want:      Cancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.cancelled, tt.exitCode, tt.flakySeen)
			if got != tt.want {
				t.Errorf("Classify(%v, %d, %v) = %v, want %v",
					tt.cancelled, tt.exitCode, tt.flakySeen, got, tt.want)
			}
		})
	}
}

func TestOutcomeString(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    string
	}{
		{Clean, "clean"},
		{Failed, "failed"},
		{FlakyCrash, "flaky_crash"},
		{Cancelled, "cancelled"},
		{Outcome(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.outcome.String(); got != tt.want {
			t.Errorf("Outcome(%d).String() = %q, want %q", tt.outcome, got, tt.want)
		}
	}
}

// =============================================================================
// Matcher
// =============================================================================

func TestMatcherFingerprints(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
		seen  bool
	}{
		{
			name:  "no match",
			lines: []string{"Compiling shaders", "Build succeeded"},
		},
		{
			name:  "overflow fault",
			lines: []string{"Unhandled exception:", "System.OverflowException: value too large"},
			want:  "System.OverflowException",
			seen:  true,
		},
		{
			name:  "runtime out of memory",
			lines: []string{"mono heap exhausted", "Out of memory!"},
			want:  "Out of memory!",
			seen:  true,
		},
		{
			name:  "partial fingerprint is not a match",
			lines: []string{"Out of memory warnings disabled"},
		},
		{
			name:  "first match wins",
			lines: []string{"Out of memory!", "System.OverflowException"},
			want:  "Out of memory!",
			seen:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatcher(nil)
			for _, line := range tt.lines {
				m.HandleLine(line)
			}

			got, seen := m.Matched()
			if seen != tt.seen {
				t.Fatalf("Matched() seen = %v, want %v", seen, tt.seen)
			}
			if got != tt.want {
				t.Errorf("Matched() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMatcherCustomFingerprints(t *testing.T) {
	m := NewMatcher([]string{"CUSTOM_CRASH"})

	m.HandleLine("System.OverflowException") // not in the custom set
	if _, seen := m.Matched(); seen {
		t.Fatal("default fingerprint matched with custom set installed")
	}

	m.HandleLine("prefix CUSTOM_CRASH suffix")
	if fp, seen := m.Matched(); !seen || fp != "CUSTOM_CRASH" {
		t.Errorf("Matched() = %q, %v, want CUSTOM_CRASH, true", fp, seen)
	}
}

func TestMatcherReset(t *testing.T) {
	m := NewMatcher(nil)
	m.HandleLine("Out of memory!")
	if _, seen := m.Matched(); !seen {
		t.Fatal("fingerprint not recorded")
	}

	m.Reset()
	if _, seen := m.Matched(); seen {
		t.Error("Matched() still true after Reset")
	}
	if lines := m.RecentLines(10); len(lines) != 0 {
		t.Errorf("RecentLines after Reset = %v, want empty", lines)
	}
}

func TestMatcherTruncatesLongLines(t *testing.T) {
	m := NewMatcher(nil)
	m.HandleLine(strings.Repeat("x", MaxLineLength+100))

	lines := m.RecentLines(1)
	if len(lines) != 1 {
		t.Fatalf("RecentLines = %d lines, want 1", len(lines))
	}
	if !strings.HasSuffix(lines[0], "...(truncated)") {
		t.Error("long line was not truncated")
	}
}

func TestMatcherRecentLinesOrder(t *testing.T) {
	m := NewMatcher(nil)
	for i := 0; i < MaxBufferedLines+10; i++ {
		m.HandleLine(fmt.Sprintf("line %d", i))
	}

	lines := m.RecentLines(3)
	want := []string{
		fmt.Sprintf("line %d", MaxBufferedLines+7),
		fmt.Sprintf("line %d", MaxBufferedLines+8),
		fmt.Sprintf("line %d", MaxBufferedLines+9),
	}
	if len(lines) != len(want) {
		t.Fatalf("RecentLines(3) = %d lines, want %d", len(lines), len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("RecentLines[%d] = %q, want %q", i, lines[i], want[i])
		}
	}
}
