package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "graylogic_extensions"

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

var (
	MixinsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mixins_active",
		Help:      "Number of devices with an attached settings mixin",
	})

	SettingsPlaceholdersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "settings_placeholders_total",
		Help:      "Settings sources replaced by an error placeholder, by side",
	}, []string{"side"})

	SettingsWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "settings_writes_total",
		Help:      "Setting writes by target (mixin or device) and result",
	}, []string{"target", "result"})

	MixinEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mixin_events_total",
		Help:      "Mixin events sent to the core by interface and result",
	}, []string{"interface", "result"})

	SettingsRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "settings_request_duration_seconds",
		Help:      "Round trip of settings requests to devices in the core",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"op", "result"})
)

// SetMixinsActive records the number of active mixins.
func SetMixinsActive(n int) {
	MixinsActive.Set(float64(n))
}

// IncSettingsPlaceholder counts a failed settings source ("device" or "mixin").
func IncSettingsPlaceholder(side string) {
	SettingsPlaceholdersTotal.WithLabelValues(side).Inc()
}

// RecordSettingsWrite counts a setting write routed to target.
func RecordSettingsWrite(target string, err error) {
	SettingsWritesTotal.WithLabelValues(target, result(err)).Inc()
}

// RecordMixinEvent counts a mixin event publish.
func RecordMixinEvent(iface string, err error) {
	MixinEventsTotal.WithLabelValues(iface, result(err)).Inc()
}

// ObserveSettingsRequest records the duration of one settings request.
func ObserveSettingsRequest(op string, started time.Time, err error) {
	SettingsRequestDuration.WithLabelValues(op, result(err)).Observe(time.Since(started).Seconds())
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
