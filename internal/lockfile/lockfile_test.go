package lockfile

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/randomizedcoder/go-batch-runner/internal/logging"
	"github.com/randomizedcoder/go-batch-runner/internal/ps"
)

func newTestLock(t *testing.T) *Lock {
	t.Helper()
	logger := logging.NewWithWriter(os.Stderr, "text", "debug")
	return New(filepath.Join(t.TempDir(), "test.pid"), logger)
}

func TestReadMissing(t *testing.T) {
	l := newTestLock(t)

	pid, ok, err := l.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if ok || pid != 0 {
		t.Errorf("Read = %d, %v, want 0, false", pid, ok)
	}
}

func TestWriteRead(t *testing.T) {
	l := newTestLock(t)

	if err := l.Write(4242); err != nil {
		t.Fatalf("Write: %v", err)
	}

	pid, ok, err := l.Read()
	if err != nil || !ok {
		t.Fatalf("Read = %d, %v, %v", pid, ok, err)
	}
	if pid != 4242 {
		t.Errorf("Read PID = %d, want 4242", pid)
	}

	// Content is a bare decimal PID.
	data, err := os.ReadFile(l.Path())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "4242" {
		t.Errorf("lock content = %q, want 4242", data)
	}
}

func TestReadGarbage(t *testing.T) {
	l := newTestLock(t)
	if err := os.WriteFile(l.Path(), []byte("not-a-pid"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, ok, err := l.Read()
	if err == nil {
		t.Error("Read of garbage lock returned nil error")
	}
	if ok {
		t.Error("Read of garbage lock returned ok")
	}
}

func TestReleaseMissingIsNoError(t *testing.T) {
	l := newTestLock(t)
	if err := l.Release(); err != nil {
		t.Errorf("Release of missing lock: %v", err)
	}
}

func TestKillAndReleaseNoLock(t *testing.T) {
	l := newTestLock(t)

	pid, ok := l.KillAndRelease()
	if ok {
		t.Errorf("KillAndRelease = %d, true, want false with no lock", pid)
	}
}

func TestKillAndReleaseNonexistentPID(t *testing.T) {
	l := newTestLock(t)

	// A PID that cannot be running. Killing it must not surface an
	// error, and the lock must still be removed.
	if err := l.Write(1 << 22); err != nil {
		t.Fatal(err)
	}

	pid, ok := l.KillAndRelease()
	if !ok || pid != 1<<22 {
		t.Errorf("KillAndRelease = %d, %v, want %d, true", pid, ok, 1<<22)
	}
	if _, err := os.Stat(l.Path()); !os.IsNotExist(err) {
		t.Error("lock file still present after KillAndRelease")
	}
}

func TestKillAndReleaseLivePID(t *testing.T) {
	l := newTestLock(t)

	cmd := exec.Command("sleep", "60")
	if err := cmd.Start(); err != nil {
		t.Fatalf("start sleep: %v", err)
	}

	if err := l.Write(cmd.Process.Pid); err != nil {
		t.Fatal(err)
	}

	pid, ok := l.KillAndRelease()
	if !ok || pid != cmd.Process.Pid {
		t.Fatalf("KillAndRelease = %d, %v, want %d, true", pid, ok, cmd.Process.Pid)
	}
	if _, err := os.Stat(l.Path()); !os.IsNotExist(err) {
		t.Error("lock file still present after KillAndRelease")
	}

	// The kill must actually land: Wait returns promptly with a signal
	// exit instead of blocking for the full sleep.
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case err := <-done:
		if err == nil {
			t.Error("sleep exited cleanly, expected SIGKILL")
		}
	case <-time.After(5 * time.Second):
		t.Error("process survived KillAndRelease")
	}

	// Killing the reaped PID is now a no-such-process case.
	if err := ps.Kill(pid); err != nil && !ps.IsNoSuchProcess(err) {
		t.Errorf("kill after reap: %v", err)
	}
}
