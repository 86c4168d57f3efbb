package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestStatus(t *testing.T) {
	if got := Status(nil); got != "ok" {
		t.Errorf("Status(nil) = %q, want ok", got)
	}
	if got := Status(errors.New("boom")); got != "error" {
		t.Errorf("Status(err) = %q, want error", got)
	}
}

func TestHandler_ExposesCounters(t *testing.T) {
	before := testutil.ToFloat64(QueriesTotal.WithLabelValues("select", "ok"))
	QueriesTotal.WithLabelValues("select", "ok").Inc()
	if got := testutil.ToFloat64(QueriesTotal.WithLabelValues("select", "ok")); got != before+1 {
		t.Errorf("counter = %v, want %v", got, before+1)
	}

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "flatdb_queries_total") {
		t.Error("metrics output missing flatdb_queries_total")
	}
}
