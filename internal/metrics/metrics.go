// Package metrics exposes Prometheus counters for the scan pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline's Prometheus collectors.
type Metrics struct {
	cyclesTotal      prometheus.Counter
	assetsScanned    prometheus.Counter
	assetsSkipped    *prometheus.CounterVec
	alertsEmitted    *prometheus.CounterVec
	alertsSuppressed prometheus.Counter
	fetchErrors      prometheus.Counter
	persistErrors    prometheus.Counter
	notifyErrors     prometheus.Counter
	lastScore        *prometheus.GaugeVec
}

// New registers the collectors on the default registry.
func New() *Metrics {
	return &Metrics{
		cyclesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coinsentinel_cycles_total",
			Help: "Scan cycles run",
		}),
		assetsScanned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coinsentinel_assets_scanned_total",
			Help: "Assets processed across all cycles",
		}),
		assetsSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coinsentinel_assets_skipped_total",
			Help: "Assets skipped, by reason",
		}, []string{"reason"}),
		alertsEmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coinsentinel_alerts_emitted_total",
			Help: "Alerts emitted, by signal",
		}, []string{"signal"}),
		alertsSuppressed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coinsentinel_alerts_suppressed_total",
			Help: "Alert-worthy signals suppressed by the gatekeeper",
		}),
		fetchErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coinsentinel_fetch_errors_total",
			Help: "Provider fetch failures",
		}),
		persistErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coinsentinel_persist_errors_total",
			Help: "State store transaction failures",
		}),
		notifyErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coinsentinel_notify_errors_total",
			Help: "Failed alert deliveries",
		}),
		lastScore: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "coinsentinel_last_score",
			Help: "Last composite score per asset",
		}, []string{"symbol"}),
	}
}

func (m *Metrics) CycleRun() { m.cyclesTotal.Inc() }

func (m *Metrics) AssetScanned() { m.assetsScanned.Inc() }
func (m *Metrics) AssetSkipped(reason string) {
	m.assetsSkipped.WithLabelValues(reason).Inc()
}
func (m *Metrics) AlertEmitted(signal string) {
	m.alertsEmitted.WithLabelValues(signal).Inc()
}
func (m *Metrics) AlertSuppressed() { m.alertsSuppressed.Inc() }

func (m *Metrics) FetchError() { m.fetchErrors.Inc() }

func (m *Metrics) PersistError() { m.persistErrors.Inc() }

func (m *Metrics) NotifyError() { m.notifyErrors.Inc() }
func (m *Metrics) SetLastScore(symbol string, score float64) {
	m.lastScore.WithLabelValues(symbol).Set(score)
}
