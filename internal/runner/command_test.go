package runner

import (
	"errors"
	"testing"
)

func TestLogFilePath(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{
			name: "present",
			args: []string{"-batchmode", "-logFile", "/tmp/build.log", "-quit"},
			want: "/tmp/build.log",
		},
		{
			name: "first argument",
			args: []string{"-logFile", "/tmp/build.log"},
			want: "/tmp/build.log",
		},
		{
			name:    "missing",
			args:    []string{"-batchmode", "-quit"},
			wantErr: true,
		},
		{
			name:    "flag without value",
			args:    []string{"-batchmode", "-logFile"},
			wantErr: true,
		},
		{
			name:    "flag with empty value",
			args:    []string{"-logFile", ""},
			wantErr: true,
		},
		{
			name:    "no arguments",
			args:    nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LogFilePath(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				var inputErr *InputError
				if !errors.As(err, &inputErr) {
					t.Errorf("error type = %T, want *InputError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("LogFilePath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHasNoGraphics(t *testing.T) {
	if HasNoGraphics([]string{"-batchmode", "-logFile", "x"}) {
		t.Error("HasNoGraphics = true without the flag")
	}
	if !HasNoGraphics([]string{"-batchmode", "-nographics", "-logFile", "x"}) {
		t.Error("HasNoGraphics = false with the flag")
	}
}

func TestCommandString(t *testing.T) {
	c := Command{Path: "/opt/editor", Args: []string{"-batchmode", "-logFile", "/tmp/a.log"}}
	want := "/opt/editor -batchmode -logFile /tmp/a.log"
	if got := c.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
