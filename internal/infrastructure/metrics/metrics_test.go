package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSetMixinsActive(t *testing.T) {
	SetMixinsActive(3)
	if got := testutil.ToFloat64(MixinsActive); got != 3 {
		t.Errorf("MixinsActive = %v, want 3", got)
	}
	SetMixinsActive(0)
	if got := testutil.ToFloat64(MixinsActive); got != 0 {
		t.Errorf("MixinsActive = %v, want 0", got)
	}
}

func TestCounters(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name   string
		record func()
		metric func() float64
	}{
		{
			name:   "placeholder",
			record: func() { IncSettingsPlaceholder("device") },
			metric: func() float64 { return testutil.ToFloat64(SettingsPlaceholdersTotal.WithLabelValues("device")) },
		},
		{
			name:   "write ok",
			record: func() { RecordSettingsWrite("mixin", nil) },
			metric: func() float64 { return testutil.ToFloat64(SettingsWritesTotal.WithLabelValues("mixin", ResultOK)) },
		},
		{
			name:   "write error",
			record: func() { RecordSettingsWrite("device", errBoom) },
			metric: func() float64 { return testutil.ToFloat64(SettingsWritesTotal.WithLabelValues("device", ResultError)) },
		},
		{
			name:   "mixin event",
			record: func() { RecordMixinEvent("Settings", nil) },
			metric: func() float64 { return testutil.ToFloat64(MixinEventsTotal.WithLabelValues("Settings", ResultOK)) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.metric()
			tt.record()
			if got := tt.metric(); got != before+1 {
				t.Errorf("counter = %v, want %v", got, before+1)
			}
		})
	}
}

func TestObserveSettingsRequest(t *testing.T) {
	ObserveSettingsRequest("get_settings", time.Now().Add(-50*time.Millisecond), nil)

	if n := testutil.CollectAndCount(SettingsRequestDuration); n == 0 {
		t.Error("SettingsRequestDuration has no series after an observation")
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	IncSettingsPlaceholder("mixin")

	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"graylogic_extensions_mixins_active",
		`graylogic_extensions_settings_placeholders_total{side="mixin"}`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
