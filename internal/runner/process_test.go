package runner

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestStart_ExitsOnItsOwn(t *testing.T) {
	skipOnWindows(t)
	r := &Runner{}
	p, err := r.Start([]string{"sh", "-c", "echo up; exit 2"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if p.Pid() <= 0 {
		t.Errorf("Pid = %d", p.Pid())
	}

	select {
	case <-p.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("process did not exit")
	}

	if p.Running() {
		t.Error("Running() = true after exit")
	}
	res := p.Result()
	if res == nil {
		t.Fatal("Result() = nil after exit")
	}
	if res.ExitCode != 2 {
		t.Errorf("ExitCode = %d, want 2", res.ExitCode)
	}
	if string(res.Stdout) != "up\n" {
		t.Errorf("Stdout = %q", res.Stdout)
	}
	if res.RunID != p.RunID {
		t.Errorf("RunID = %q, want %q", res.RunID, p.RunID)
	}
}

func TestStart_Stop(t *testing.T) {
	skipOnWindows(t)
	r := &Runner{}
	p, err := r.Start([]string{"sh", "-c", "echo ready; sleep 30"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !p.Running() {
		t.Fatal("Running() = false right after start")
	}
	if p.Result() != nil {
		t.Error("Result() != nil while running")
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		stdout, _ := p.Output()
		if strings.Contains(string(stdout), "ready") {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("no output from background process")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := p.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if p.Running() {
		t.Error("Running() = true after Stop")
	}
	if res := p.Result(); res == nil || res.Exited() {
		t.Errorf("Result = %+v, want signaled", res)
	}

	// Stopping twice is a no-op.
	if err := p.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}

func TestStart_BinaryNotFound(t *testing.T) {
	r := &Runner{}
	_, err := r.Start([]string{"nonexistent-binary-xyz-123", "gateway"})
	var startErr *StartError
	if !errors.As(err, &startErr) {
		t.Fatalf("error = %v, want *StartError", err)
	}
}

func TestSyncBuffer_Cap(t *testing.T) {
	b := &syncBuffer{limit: 4}
	n, err := b.Write([]byte("abcdef"))
	if err != nil || n != 6 {
		t.Fatalf("Write = %d, %v", n, err)
	}
	data, cut := b.snapshot()
	if string(data) != "abcd" || !cut {
		t.Errorf("snapshot = %q, %v", data, cut)
	}
}
