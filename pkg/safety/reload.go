package safety

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Source describes where a term set comes from.
type Source struct {
	// DictionaryPath is the YAML dictionary file. Empty selects the
	// built-in dictionary.
	DictionaryPath string

	// ExtraTerms are appended after the dictionary's terms.
	ExtraTerms []Term

	// Matcher selects the search strategy.
	Matcher MatcherKind
}

// Build loads the dictionary and compiles a TermSet.
func (src Source) Build() (*TermSet, error) {
	var dict *Dictionary
	if src.DictionaryPath == "" {
		dict = DefaultDictionary()
	} else {
		var err error
		dict, err = LoadDictionary(src.DictionaryPath)
		if err != nil {
			return nil, err
		}
	}

	terms := append(dict.Terms(), src.ExtraTerms...)
	ts, err := NewTermSet(terms, src.Matcher)
	if err != nil {
		return nil, fmt.Errorf("failed to build term set: %w", err)
	}
	return ts, nil
}

// ReloadObserver is notified after every reload attempt.
type ReloadObserver interface {
	ObserveReload(success bool, terms int, duration time.Duration)
}

// Reloader rebuilds the term set from its Source and installs it into a
// Store. A failed reload leaves the previous set in place.
type Reloader struct {
	source   Source
	store    *Store
	logger   *slog.Logger
	observer ReloadObserver

	// mu serializes reloads triggered by the watcher and the scheduler.
	mu sync.Mutex
}

// NewReloader creates a reloader. observer may be nil.
func NewReloader(source Source, store *Store, observer ReloadObserver, logger *slog.Logger) *Reloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reloader{
		source:   source,
		store:    store,
		logger:   logger.With("component", "safety.reloader"),
		observer: observer,
	}
}

// Source returns the reloader's source.
func (r *Reloader) Source() Source {
	return r.source
}

// Reload rebuilds the term set and swaps it in.
func (r *Reloader) Reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	ts, err := r.source.Build()
	elapsed := time.Since(start)

	if err != nil {
		r.logger.Error("dictionary reload failed, keeping previous terms",
			"path", r.source.DictionaryPath,
			"error", err,
			"terms", r.store.TermSet().Len(),
		)
		if r.observer != nil {
			r.observer.ObserveReload(false, r.store.TermSet().Len(), elapsed)
		}
		return err
	}

	prev := r.store.Swap(ts)
	r.logger.Info("dictionary reloaded",
		"path", r.source.DictionaryPath,
		"terms", ts.Len(),
		"previous_terms", prev.Len(),
		"version", r.store.Version(),
		"duration_ms", elapsed.Milliseconds(),
	)
	if r.observer != nil {
		r.observer.ObserveReload(true, ts.Len(), elapsed)
	}
	return nil
}
