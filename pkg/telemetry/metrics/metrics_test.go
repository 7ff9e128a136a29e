package metrics

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"mealshare/trustcore/pkg/config"
	"mealshare/trustcore/pkg/safety"
)

var _ safety.ReloadObserver = (*Collector)(nil)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:   true,
		Path:      "/metrics",
		Namespace: "test",
	}
}

func TestCollector_NewCollector(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()

	collector := NewCollector(cfg, registry)

	if collector.Registry() != registry {
		t.Error("Collector registry not set correctly")
	}
	if collector.config != cfg {
		t.Error("Collector config not set correctly")
	}
}

func TestCollector_NilRegistryIncludesRuntimeCollectors(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	families, err := collector.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	found := false
	for _, mf := range families {
		if strings.HasPrefix(mf.GetName(), "go_") {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected go_* runtime metrics")
	}
}

func TestCollector_RecordContentCheck(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	cm := collector.contentMetrics

	collector.RecordContentCheck("validate", false, "", 20*time.Microsecond)
	collector.RecordContentCheck("validate", true, "profanity", 30*time.Microsecond)
	collector.RecordContentCheck("check", true, "profanity", 30*time.Microsecond)

	if got := testutil.ToFloat64(cm.checksTotal.WithLabelValues("validate", "clean")); got != 1 {
		t.Errorf("clean validate checks = %v, want 1", got)
	}
	if got := testutil.ToFloat64(cm.checksTotal.WithLabelValues("validate", "violation")); got != 1 {
		t.Errorf("violating validate checks = %v, want 1", got)
	}
	if got := testutil.ToFloat64(cm.violations.WithLabelValues("profanity")); got != 2 {
		t.Errorf("profanity violations = %v, want 2", got)
	}
	if got := testutil.CollectAndCount(cm.checkDuration); got != 2 {
		t.Errorf("duration series = %d, want 2", got)
	}
}

func TestCollector_CategoryCardinality(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	for i := 0; i < maxCategories+10; i++ {
		collector.RecordContentCheck("check", true, fmt.Sprintf("cat-%d", i), time.Microsecond)
	}

	if got := testutil.CollectAndCount(collector.contentMetrics.violations); got != maxCategories+1 {
		t.Errorf("violation series = %d, want %d", got, maxCategories+1)
	}
	if got := testutil.ToFloat64(collector.contentMetrics.violations.WithLabelValues("other")); got != 10 {
		t.Errorf("other = %v, want 10", got)
	}
}

func TestCollector_ObserveReload(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	cm := collector.contentMetrics

	collector.ObserveReload(true, 42, 5*time.Millisecond)
	collector.ObserveReload(false, 42, time.Millisecond)

	if got := testutil.ToFloat64(cm.reloadsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("successful reloads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(cm.reloadsTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("failed reloads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(cm.terms); got != 42 {
		t.Errorf("terms = %v, want 42", got)
	}

	collector.SetDictionaryTerms(7)
	if got := testutil.ToFloat64(cm.terms); got != 7 {
		t.Errorf("terms = %v, want 7", got)
	}
}

func TestCollector_RecordLocationAndHTTP(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordLocationOffset("success", 200*time.Nanosecond)
	collector.RecordLocationOffset("invalid_argument", 100*time.Nanosecond)
	collector.RecordHTTPRequest("/v1/location/public", http.MethodPost, 200, time.Millisecond)

	if got := testutil.ToFloat64(collector.locationMetrics.offsetsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("successful offsets = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.requestMetrics.requestsTotal.WithLabelValues("/v1/location/public", "POST", "200")); got != 1 {
		t.Errorf("http requests = %v, want 1", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, prometheus.NewRegistry())

	collector.RecordContentCheck("check", true, "profanity", time.Microsecond)
	collector.ObserveReload(true, 10, time.Millisecond)
	collector.RecordLocationOffset("success", time.Microsecond)

	if got := testutil.CollectAndCount(collector.contentMetrics.checksTotal); got != 0 {
		t.Errorf("disabled collector recorded %d check series", got)
	}
	if got := testutil.ToFloat64(collector.contentMetrics.terms); got != 0 {
		t.Errorf("disabled collector set terms to %v", got)
	}

	var nilCollector *Collector
	nilCollector.RecordContentCheck("check", false, "", 0)
	nilCollector.ObserveReload(true, 1, 0)
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	collector.RecordContentCheck("check", true, "slur", time.Microsecond)

	srv := httptest.NewServer(collector.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `test_content_violations_total{category="slur"} 1`) {
		t.Errorf("metrics output missing violation counter:\n%s", body)
	}
}

func TestCardinalityLimiter(t *testing.T) {
	cl := NewCardinalityLimiter(2)

	if !cl.Allow("a") || !cl.Allow("b") {
		t.Fatal("first two values should be allowed")
	}
	if cl.Allow("c") {
		t.Error("third value should be rejected")
	}
	if !cl.Allow("a") {
		t.Error("known value should stay allowed")
	}
	if cl.Count() != 2 {
		t.Errorf("Count() = %d, want 2", cl.Count())
	}
}
