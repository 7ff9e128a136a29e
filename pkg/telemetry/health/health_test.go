package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"mealshare/trustcore/pkg/config"
	"mealshare/trustcore/pkg/safety"
)

func TestChecker_CheckReadiness(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]CheckFunc
		wantStatus string
		wantFailed []string
	}{
		{
			name:       "no checks",
			checks:     nil,
			wantStatus: StatusReady,
		},
		{
			name: "all passing",
			checks: map[string]CheckFunc{
				"a": func(context.Context) error { return nil },
				"b": func(context.Context) error { return nil },
			},
			wantStatus: StatusReady,
		},
		{
			name: "one failing",
			checks: map[string]CheckFunc{
				"a": func(context.Context) error { return nil },
				"b": func(context.Context) error { return errors.New("broken") },
			},
			wantStatus: StatusNotReady,
			wantFailed: []string{"b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(time.Second)
			for name, check := range tt.checks {
				checker.RegisterCheck(name, check)
			}

			status := checker.CheckReadiness(context.Background())
			if status.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", status.Status, tt.wantStatus)
			}
			if len(status.Checks) != len(tt.checks) {
				t.Errorf("got %d results, want %d", len(status.Checks), len(tt.checks))
			}
			for _, name := range tt.wantFailed {
				if status.Checks[name].Status != StatusUnhealthy {
					t.Errorf("check %q status = %q, want unhealthy", name, status.Checks[name].Status)
				}
			}
		})
	}
}

func TestChecker_Timeout(t *testing.T) {
	checker := New(20 * time.Millisecond)
	checker.RegisterCheck("slow", func(ctx context.Context) error {
		time.Sleep(time.Second)
		return nil
	})

	start := time.Now()
	status := checker.CheckReadiness(context.Background())
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("readiness took %v, want the check timeout to apply", elapsed)
	}
	if got := status.Checks["slow"]; got.Status != StatusUnhealthy || got.Message != ErrCheckTimeout.Error() {
		t.Errorf("slow check = %+v", got)
	}
}

func TestChecker_ListChecks(t *testing.T) {
	checker := New(0)
	if checker.checkTimeout != DefaultCheckTimeout {
		t.Errorf("checkTimeout = %v, want %v", checker.checkTimeout, DefaultCheckTimeout)
	}

	checker.RegisterCheck("termset", nil)
	checker.RegisterCheck("dictionary", nil)
	checker.RegisterCheck("termset", nil)

	if got, want := checker.ListChecks(), []string{"dictionary", "termset"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ListChecks() = %v, want %v", got, want)
	}
}

func TestTermSetCheck(t *testing.T) {
	empty := safety.MustTermSet(nil, safety.MatcherAhoCorasick)
	loaded := safety.MustTermSet(safety.TermsFromStrings(safety.CategoryProfanity, "shit"), safety.MatcherAhoCorasick)

	tests := []struct {
		name    string
		source  safety.TermSource
		wantErr bool
	}{
		{name: "nil source", source: nil, wantErr: true},
		{name: "empty set", source: empty, wantErr: true},
		{name: "loaded set", source: loaded},
		{name: "store", source: safety.NewStore(loaded)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := TermSetCheck(tt.source)(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("TermSetCheck() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDictionaryFileCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terms.yaml")

	if err := DictionaryFileCheck(path)(context.Background()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: error = %v, want ErrNotExist", err)
	}

	if err := os.WriteFile(path, []byte("version: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := DictionaryFileCheck(path)(context.Background()); err != nil {
		t.Errorf("existing file: error = %v", err)
	}
}

func TestHandlers(t *testing.T) {
	checker := New(time.Second)
	store := safety.NewStore(safety.MustTermSet(nil, safety.MatcherAhoCorasick))
	checker.RegisterCheck("termset", TermSetCheck(store))

	mux := http.NewServeMux()
	Register(mux, checker, config.HealthConfig{}, NewVersionInfo("1.2.3", "abc123", "2026-10-18"))

	tests := []struct {
		name       string
		method     string
		path       string
		setup      func()
		wantCode   int
		wantStatus string
	}{
		{name: "liveness", method: http.MethodGet, path: "/health", wantCode: http.StatusOK, wantStatus: StatusOK},
		{name: "readiness with empty set", method: http.MethodGet, path: "/ready", wantCode: http.StatusServiceUnavailable, wantStatus: StatusNotReady},
		{
			name:   "readiness after load",
			method: http.MethodGet,
			path:   "/ready",
			setup: func() {
				store.Swap(safety.MustTermSet(safety.TermsFromStrings(safety.CategoryProfanity, "shit"), safety.MatcherAhoCorasick))
			},
			wantCode:   http.StatusOK,
			wantStatus: StatusReady,
		},
		{name: "head", method: http.MethodHead, path: "/health", wantCode: http.StatusOK},
		{name: "post rejected", method: http.MethodPost, path: "/ready", wantCode: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantStatus == "" {
				return
			}
			var status HealthStatus
			if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if status.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", status.Status, tt.wantStatus)
			}
		})
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))
	var info VersionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	if info.Version != "1.2.3" || info.GoVersion == "" {
		t.Errorf("version info = %+v", info)
	}
}
