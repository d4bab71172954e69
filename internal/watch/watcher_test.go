package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestFileWatcher(t *testing.T) {
	t.Run("watch and unwatch", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "aln.sto")
		if err := os.WriteFile(path, []byte(""), 0644); err != nil {
			t.Fatalf("write file: %v", err)
		}

		fw, err := NewFileWatcher(0, nil)
		if err != nil {
			t.Fatalf("NewFileWatcher() error = %v", err)
		}
		defer func() {
			_ = fw.Close()
		}()

		if err := fw.Watch(path); err != nil {
			t.Fatalf("Watch() error = %v", err)
		}
		if !fw.IsWatching(path) {
			t.Fatalf("expected watcher to be active")
		}
		if fw.debounce != DefaultDebounce {
			t.Fatalf("expected default debounce, got %v", fw.debounce)
		}

		fw.Unwatch(path)
		if fw.IsWatching(path) {
			t.Fatalf("expected watcher to be removed")
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		fw, err := NewFileWatcher(0, nil)
		if err != nil {
			t.Fatalf("NewFileWatcher() error = %v", err)
		}
		defer func() {
			_ = fw.Close()
		}()

		if err := fw.Watch(filepath.Join(t.TempDir(), "nope", "aln.sto")); err == nil {
			t.Fatalf("expected error watching a missing directory")
		}
	})

	t.Run("reports writes to the watched file only", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "aln.sto")
		other := filepath.Join(dir, "other.sto")
		if err := os.WriteFile(path, []byte(""), 0644); err != nil {
			t.Fatalf("write file: %v", err)
		}

		changed := make(chan string, 8)
		fw, err := NewFileWatcher(50*time.Millisecond, func(p string) { changed <- p })
		if err != nil {
			t.Fatalf("NewFileWatcher() error = %v", err)
		}
		defer func() {
			_ = fw.Close()
		}()
		if err := fw.Watch(path); err != nil {
			t.Fatalf("Watch() error = %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		done := make(chan error, 1)
		go func() { done <- fw.Run(ctx) }()

		if err := os.WriteFile(other, []byte("x"), 0644); err != nil {
			t.Fatalf("write other: %v", err)
		}
		if err := os.WriteFile(path, []byte("# STOCKHOLM 1.0\n"), 0644); err != nil {
			t.Fatalf("write file: %v", err)
		}

		want, _ := filepath.Abs(path)
		select {
		case got := <-changed:
			if got != want {
				t.Fatalf("changed path = %s, want %s", got, want)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for change notification")
		}

		cancel()
		select {
		case err := <-done:
			if err != context.Canceled {
				t.Fatalf("Run() error = %v, want context.Canceled", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("Run() did not stop after cancel")
		}
	})
}

func TestFileWatcherReportsAfterLastWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aln.sto")
	if err := os.WriteFile(path, []byte(""), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	// Each callback reports what the file held when it fired.
	seen := make(chan string, 8)
	fw, err := NewFileWatcher(200*time.Millisecond, func(p string) {
		data, _ := os.ReadFile(p)
		seen <- string(data)
	})
	if err != nil {
		t.Fatalf("NewFileWatcher() error = %v", err)
	}
	defer func() {
		_ = fw.Close()
	}()
	if err := fw.Watch(path); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = fw.Run(ctx) }()

	if err := os.WriteFile(path, []byte("partial"), 0644); err != nil {
		t.Fatalf("write partial: %v", err)
	}
	time.Sleep(60 * time.Millisecond)
	if err := os.WriteFile(path, []byte("final"), 0644); err != nil {
		t.Fatalf("write final: %v", err)
	}

	select {
	case got := <-seen:
		if got != "final" {
			t.Fatalf("first callback saw %q, want the last write", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for change notification")
	}

	select {
	case got := <-seen:
		t.Fatalf("unexpected second callback (file held %q)", got)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestUnwatchCancelsPendingChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aln.sto")
	if err := os.WriteFile(path, []byte(""), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	var calls atomic.Int32
	fw, err := NewFileWatcher(time.Hour, func(string) { calls.Add(1) })
	if err != nil {
		t.Fatalf("NewFileWatcher() error = %v", err)
	}
	defer func() {
		_ = fw.Close()
	}()
	if err := fw.Watch(path); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	abs, _ := filepath.Abs(path)
	fw.mu.Lock()
	fw.schedule(abs)
	fw.mu.Unlock()

	fw.Unwatch(path)
	fw.mu.Lock()
	pending := len(fw.pending)
	fw.mu.Unlock()
	if pending != 0 {
		t.Fatalf("expected pending change to be dropped, got %d", pending)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no callbacks, got %d", calls.Load())
	}
}
