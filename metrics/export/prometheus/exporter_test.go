package prometheus

import (
	"net/http/httptest"
	"strings"
	"testing"

	auth "github.com/yusufloop/icsboltz-auth"
)

type stubSource struct {
	snapshot auth.MetricsSnapshot
	dropped  uint64
}

func (s stubSource) MetricsSnapshot() auth.MetricsSnapshot { return s.snapshot }
func (s stubSource) AuditDropped() uint64                  { return s.dropped }

func TestRenderExposesAllCounters(t *testing.T) {
	src := stubSource{
		snapshot: auth.MetricsSnapshot{Counters: map[auth.MetricID]uint64{
			auth.MetricLoginSuccess: 7,
			auth.MetricLoginLockout: 2,
		}},
		dropped: 3,
	}

	out := NewExporterFromSource(src).Render()

	for _, want := range []string{
		"# TYPE auth_login_success_total counter",
		"auth_login_success_total 7",
		"auth_login_lockout_total 2",
		"auth_login_failure_total 0",
		"auth_audit_dropped_total 3",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered output missing %q", want)
		}
	}
}

func TestHandlerServesTextExposition(t *testing.T) {
	exporter := NewExporterFromSource(stubSource{snapshot: auth.MetricsSnapshot{Counters: map[auth.MetricID]uint64{}}})

	rec := httptest.NewRecorder()
	exporter.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/plain") {
		t.Fatalf("content type: %q", got)
	}
	if !strings.Contains(rec.Body.String(), "auth_login_success_total 0") {
		t.Fatal("body missing zero-valued counter")
	}
}

func TestNilExporterRendersEmpty(t *testing.T) {
	var e *Exporter
	if e.Render() != "" {
		t.Fatal("nil exporter must render nothing")
	}
}
