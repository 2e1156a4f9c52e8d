package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// xvfbRunner is the virtual framebuffer launcher used on Linux when the
// command does not already request a headless run.
const xvfbRunner = "xvfb-run"

// Builder creates the command for each supervision attempt.
// This interface allows the supervisor to be decoupled from the
// executable's argument conventions.
type Builder interface {
	// BuildCommand returns a ready-to-launch command for the given
	// attempt (1-based). Each attempt writes to its own log file.
	BuildCommand(ctx context.Context, attempt int) (Command, error)

	// LogPath returns the log file path the given attempt writes to.
	LogPath(attempt int) string

	// Name returns a human-readable name for this process type.
	Name() string
}

// BatchBuilder derives per-attempt commands from a caller-supplied base
// command. The base command must carry a -logFile pair; attempt 1 uses
// that path unchanged and later attempts get a fresh file.
type BatchBuilder struct {
	base         Command
	logPath      string
	wrapHeadless bool
}

// NewBatchBuilder validates the base command and returns a builder.
// A missing -logFile pair is an InputError.
func NewBatchBuilder(base Command) (*BatchBuilder, error) {
	if base.Path == "" {
		return nil, &InputError{Reason: "empty executable path"}
	}
	logPath, err := LogFilePath(base.Args)
	if err != nil {
		return nil, err
	}
	return &BatchBuilder{
		base:         base,
		logPath:      logPath,
		wrapHeadless: runtime.GOOS == "linux" && !HasNoGraphics(base.Args),
	}, nil
}

// SetHeadlessWrap overrides the platform default for the virtual
// framebuffer wrapper. Tests use it to pin behavior across platforms.
func (b *BatchBuilder) SetHeadlessWrap(wrap bool) {
	b.wrapHeadless = wrap
}

// Name returns the base name of the supervised executable.
func (b *BatchBuilder) Name() string {
	return filepath.Base(b.base.Path)
}

// LogPath returns the log file path for the given attempt. Retries get
// a fresh file so the tail cursor and crash fingerprints of a previous
// attempt never bleed into the next one.
func (b *BatchBuilder) LogPath(attempt int) string {
	if attempt <= 1 {
		return b.logPath
	}
	ext := filepath.Ext(b.logPath)
	return strings.TrimSuffix(b.logPath, ext) + fmt.Sprintf(".attempt-%d", attempt) + ext
}

// BuildCommand returns the command for the given attempt, with the
// per-attempt log path substituted and the headless wrapper applied
// when required.
func (b *BatchBuilder) BuildCommand(_ context.Context, attempt int) (Command, error) {
	args := make([]string, len(b.base.Args))
	copy(args, b.base.Args)
	for i, a := range args {
		if a == LogFileFlag && i+1 < len(args) {
			args[i+1] = b.LogPath(attempt)
		}
	}

	path := b.base.Path
	if b.wrapHeadless {
		args = append([]string{"--auto-servernum", path}, args...)
		path = xvfbRunner
	}

	return Command{Path: path, Args: args}, nil
}
