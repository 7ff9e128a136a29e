package safety

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestNewFileWatcher(t *testing.T) {
	if _, err := NewFileWatcher("", 0, nil); err == nil {
		t.Error("NewFileWatcher(\"\") error = nil, want error")
	}

	watcher, err := NewFileWatcher("terms.yaml", 0, nil)
	if err != nil {
		t.Fatalf("NewFileWatcher() error = %v", err)
	}
	defer func() { _ = watcher.Stop() }()

	if watcher.debounce.interval != DefaultDebounceInterval {
		t.Errorf("debounce interval = %v, want %v", watcher.debounce.interval, DefaultDebounceInterval)
	}
	if watcher.base != "terms.yaml" {
		t.Errorf("base = %q, want terms.yaml", watcher.base)
	}
	if !filepath.IsAbs(watcher.dir) {
		t.Errorf("dir %q is not absolute", watcher.dir)
	}
}

func TestFileWatcher_Relevant(t *testing.T) {
	dir := t.TempDir()
	watcher, err := NewFileWatcher(filepath.Join(dir, "terms.yaml"), 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = watcher.Stop() }()

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{name: "write to file", event: fsnotify.Event{Name: filepath.Join(dir, "terms.yaml"), Op: fsnotify.Write}, want: true},
		{name: "file recreated", event: fsnotify.Event{Name: filepath.Join(dir, "terms.yaml"), Op: fsnotify.Create}, want: true},
		{name: "configmap swap", event: fsnotify.Event{Name: filepath.Join(dir, "..data"), Op: fsnotify.Create}, want: true},
		{name: "chmod only", event: fsnotify.Event{Name: filepath.Join(dir, "terms.yaml"), Op: fsnotify.Chmod}, want: false},
		{name: "sibling file", event: fsnotify.Event{Name: filepath.Join(dir, "other.yaml"), Op: fsnotify.Write}, want: false},
		{name: "editor swap file", event: fsnotify.Event{Name: filepath.Join(dir, ".terms.yaml.swp"), Op: fsnotify.Write}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := watcher.relevant(tt.event); got != tt.want {
				t.Errorf("relevant(%v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}

func TestFileWatcher_Watch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping filesystem watcher test in short mode")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "terms.yaml")
	writeDictionary(t, path, "alpha")

	watcher, err := NewFileWatcher(path, 50*time.Millisecond, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = watcher.Stop() }()

	var calls atomic.Int32
	changed := make(chan struct{}, 10)
	onChange := func() error {
		calls.Add(1)
		select {
		case changed <- struct{}{}:
		default:
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = watcher.Watch(ctx, onChange)
	}()

	time.Sleep(100 * time.Millisecond)

	// Unrelated files in the same directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(150 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Fatalf("onChange called %d times for unrelated file", n)
	}

	// A burst of writes collapses into one reload.
	for i := 0; i < 3; i++ {
		writeDictionary(t, path, "alpha", "beta")
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-changed:
	case <-time.After(time.Second):
		t.Fatal("onChange not called after dictionary write")
	}
	time.Sleep(150 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("onChange called %d times, want 1", n)
	}
}

func TestFileWatcher_DoubleStart(t *testing.T) {
	dir := t.TempDir()
	watcher, err := NewFileWatcher(filepath.Join(dir, "terms.yaml"), 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = watcher.Stop() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = watcher.Watch(ctx, func() error { return nil })
	}()
	time.Sleep(50 * time.Millisecond)

	if err := watcher.Watch(ctx, func() error { return nil }); err == nil {
		t.Error("second Watch() error = nil, want error")
	}
}

func TestDebouncer_Trigger(t *testing.T) {
	debouncer := NewDebouncer(100 * time.Millisecond)
	defer debouncer.Stop()

	var calls atomic.Int32
	for i := 0; i < 5; i++ {
		debouncer.Trigger(func() { calls.Add(1) })
		time.Sleep(20 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("callback called %d times, want 1", n)
	}
}

func TestDebouncer_Stop(t *testing.T) {
	debouncer := NewDebouncer(100 * time.Millisecond)

	var calls atomic.Int32
	debouncer.Trigger(func() { calls.Add(1) })
	debouncer.Stop()
	debouncer.Trigger(func() { calls.Add(1) })

	time.Sleep(150 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Errorf("callback called %d times after Stop(), want 0", n)
	}
}
