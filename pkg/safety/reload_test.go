package safety

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeDictionary(t *testing.T, path string, terms ...string) {
	t.Helper()
	content := "version: 1\ncategories:\n  - name: custom\n    terms:\n"
	for _, term := range terms {
		content += "      - " + term + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []observedReload
}

type observedReload struct {
	success bool
	terms   int
}

func (o *recordingObserver) ObserveReload(success bool, terms int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, observedReload{success: success, terms: terms})
}

func TestStore_Swap(t *testing.T) {
	first := MustTermSet(TermsFromStrings(CategoryCustom, "alpha"), "")
	second := MustTermSet(TermsFromStrings(CategoryCustom, "beta", "gamma"), "")

	store := NewStore(first)
	if store.Version() != 1 {
		t.Errorf("Version() = %d, want 1", store.Version())
	}

	if prev := store.Swap(second); prev != first {
		t.Error("Swap() did not return the previous set")
	}
	if store.TermSet() != second {
		t.Error("TermSet() did not return the swapped-in set")
	}
	if store.Version() != 2 {
		t.Errorf("Version() = %d, want 2", store.Version())
	}

	if prev := store.Swap(nil); prev != second || store.TermSet() != second {
		t.Error("Swap(nil) must keep the current set")
	}
	if store.Version() != 2 {
		t.Errorf("Swap(nil) changed version to %d", store.Version())
	}
}

func TestNewStore_NilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewStore(nil) did not panic")
		}
	}()
	NewStore(nil)
}

// Concurrent checks observe either the old or the new set, never a mix.
func TestStore_ConcurrentReadsDuringSwap(t *testing.T) {
	oldSet := MustTermSet(TermsFromStrings(CategoryCustom, "alpha"), "")
	newSet := MustTermSet(TermsFromStrings(CategoryCustom, "beta"), "")
	store := NewStore(oldSet)
	filter := NewFilter(store)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	errs := make(chan string, 8)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				res := filter.Check("alpha beta")
				if res.Term != "alpha" && res.Term != "beta" {
					select {
					case errs <- res.Term:
					default:
					}
					return
				}
			}
		}()
	}

	for i := 0; i < 1000; i++ {
		if i%2 == 0 {
			store.Swap(newSet)
		} else {
			store.Swap(oldSet)
		}
	}
	close(stop)
	wg.Wait()
	close(errs)

	for term := range errs {
		t.Errorf("unexpected check result %q during swap", term)
	}
}

func TestSource_Build(t *testing.T) {
	t.Run("default dictionary", func(t *testing.T) {
		ts, err := Source{}.Build()
		if err != nil {
			t.Fatal(err)
		}
		if ts.Len() != len(DefaultDictionary().Terms()) {
			t.Errorf("Len() = %d, want %d", ts.Len(), len(DefaultDictionary().Terms()))
		}
	})

	t.Run("extra terms appended", func(t *testing.T) {
		ts, err := Source{
			ExtraTerms: TermsFromStrings(CategoryCustom, "spam", "fuck"),
			Matcher:    MatcherSubstring,
		}.Build()
		if err != nil {
			t.Fatal(err)
		}
		terms := ts.Terms()
		last := terms[len(terms)-1]
		if last.Text != "spam" || last.Category != CategoryCustom {
			t.Errorf("last term = %+v, want custom spam", last)
		}
		if ts.Matcher() != MatcherSubstring {
			t.Errorf("Matcher() = %q", ts.Matcher())
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := (Source{DictionaryPath: filepath.Join(t.TempDir(), "nope.yaml")}).Build(); err == nil {
			t.Error("expected error for missing dictionary")
		}
	})

	t.Run("bad matcher", func(t *testing.T) {
		if _, err := (Source{Matcher: "regex"}).Build(); err == nil {
			t.Error("expected error for unknown matcher")
		}
	})
}

func TestReloader_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terms.yaml")
	writeDictionary(t, path, "alpha")

	source := Source{DictionaryPath: path}
	initial, err := source.Build()
	if err != nil {
		t.Fatal(err)
	}
	store := NewStore(initial)
	observer := &recordingObserver{}
	reloader := NewReloader(source, store, observer, discardLogger())
	filter := NewFilter(store)

	writeDictionary(t, path, "alpha", "beta")
	if err := reloader.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if res := filter.Check("beta"); res.Term != "beta" {
		t.Errorf("new term not active after reload: %+v", res)
	}
	if store.Version() != 2 {
		t.Errorf("Version() = %d, want 2", store.Version())
	}

	// A broken file keeps the last good set.
	if err := os.WriteFile(path, []byte("version: 1\ncategories: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := reloader.Reload(); err == nil {
		t.Fatal("Reload() of broken dictionary returned nil error")
	}
	if res := filter.Check("beta"); res.Term != "beta" {
		t.Errorf("previous terms lost after failed reload: %+v", res)
	}
	if store.Version() != 2 {
		t.Errorf("failed reload changed version to %d", store.Version())
	}

	want := []observedReload{{success: true, terms: 2}, {success: false, terms: 2}}
	observer.mu.Lock()
	defer observer.mu.Unlock()
	if len(observer.calls) != len(want) {
		t.Fatalf("observer calls = %+v, want %+v", observer.calls, want)
	}
	for i := range want {
		if observer.calls[i] != want[i] {
			t.Errorf("observer call %d = %+v, want %+v", i, observer.calls[i], want[i])
		}
	}
}

func TestReloader_NilObserver(t *testing.T) {
	store := NewStore(MustTermSet(nil, ""))
	reloader := NewReloader(Source{}, store, nil, nil)
	if err := reloader.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if store.TermSet().Len() == 0 {
		t.Error("default dictionary not loaded")
	}
}
