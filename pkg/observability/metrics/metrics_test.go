// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveConversion(t *testing.T) {
	m := New()
	m.ObserveConversion("csv", "json", "completed", 10*time.Millisecond)
	m.ObserveConversion("csv", "json", "completed", 20*time.Millisecond)
	m.ObserveConversion("doc", "pdf", "failed", time.Millisecond)

	if got := testutil.ToFloat64(m.conversions.WithLabelValues("csv", "json", "completed")); got != 2 {
		t.Errorf("completed csv->json = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.conversions.WithLabelValues("doc", "pdf", "failed")); got != 1 {
		t.Errorf("failed doc->pdf = %v, want 1", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveConversion("csv", "xml", "completed", time.Second)
	m.ObserveUpload(42)
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveUpload(2048)
	m.ObserveConversion("xml", "csv", "completed", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		"tabconv_conversions_total",
		"tabconv_conversion_duration_seconds_bucket",
		"tabconv_upload_bytes_count 1",
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}
