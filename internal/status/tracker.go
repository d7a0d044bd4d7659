// Package status exposes the live progress of a run.
package status

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WorkerProgress is the latest snapshot reported by a worker.
type WorkerProgress struct {
	Worker   int           `json:"worker"`
	Elapsed  time.Duration `json:"elapsed"`
	Emitted  int           `json:"emitted"`
	Recorded int           `json:"recorded"`
	P50      time.Duration `json:"p50"`
	P75      time.Duration `json:"p75"`
	P95      time.Duration `json:"p95"`
}

// Tracker keeps the latest progress of every worker. It is written to by the
// workers and read by the API server.
type Tracker struct {
	progress    []WorkerProgress
	progressMux *sync.RWMutex

	registry *prometheus.Registry
	emitted  *prometheus.GaugeVec
	recorded *prometheus.GaugeVec
	latency  *prometheus.GaugeVec
}

func NewTracker(workers int) *Tracker {
	t := &Tracker{
		progress:    make([]WorkerProgress, workers),
		progressMux: &sync.RWMutex{},
		registry:    prometheus.NewRegistry(),
		emitted: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "harness",
			Name:      "emitted_units",
			Help:      "Number of scheduled units injected by the source.",
		}, []string{"worker"}),
		recorded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "harness",
			Name:      "recorded_samples",
			Help:      "Number of latency samples admitted by the collector.",
		}, []string{"worker"}),
		latency: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "harness",
			Name:      "latency_seconds",
			Help:      "Recent end-to-end latency percentiles.",
		}, []string{"worker", "quantile"}),
	}
	for i := range t.progress {
		t.progress[i].Worker = i
	}
	t.registry.MustRegister(t.emitted, t.recorded, t.latency)
	return t
}

func (t *Tracker) Update(p WorkerProgress) {
	t.progressMux.Lock()
	t.progress[p.Worker] = p
	t.progressMux.Unlock()

	worker := strconv.Itoa(p.Worker)
	t.emitted.WithLabelValues(worker).Set(float64(p.Emitted))
	t.recorded.WithLabelValues(worker).Set(float64(p.Recorded))
	t.latency.WithLabelValues(worker, "0.5").Set(p.P50.Seconds())
	t.latency.WithLabelValues(worker, "0.75").Set(p.P75.Seconds())
	t.latency.WithLabelValues(worker, "0.95").Set(p.P95.Seconds())
}

func (t *Tracker) Snapshot() []WorkerProgress {
	t.progressMux.RLock()
	defer t.progressMux.RUnlock()
	snapshot := make([]WorkerProgress, len(t.progress))
	copy(snapshot, t.progress)
	return snapshot
}

func (t *Tracker) Registry() *prometheus.Registry { return t.registry }
