package responsetime

import (
	"fmt"
	"sync"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/kcz17/harness/internal/metrics"
)

// ExactWindow keeps every latency in nanoseconds since the last reset.
// Memory grows with the run, so it suits short runs only.
type ExactWindow struct {
	mu        sync.Mutex
	latencies stats.Float64Data
}

func NewExactWindow() *ExactWindow {
	return &ExactWindow{}
}

func (w *ExactWindow) Observe(begin, end uint64) {
	w.mu.Lock()
	w.latencies = append(w.latencies, float64(metrics.Latency(begin, end)))
	w.mu.Unlock()
}

func (w *ExactWindow) Aggregate() *Aggregation {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.latencies.Len() == 0 {
		return &Aggregation{}
	}

	aggregation := &Aggregation{Count: w.latencies.Len()}
	for _, q := range []struct {
		percentile float64
		dst        *time.Duration
	}{
		{50, &aggregation.P50},
		{75, &aggregation.P75},
		{95, &aggregation.P95},
	} {
		v, err := w.latencies.Percentile(q.percentile)
		if err != nil {
			panic(fmt.Errorf("unexpected err in ExactWindow.Aggregate() while calculating p%v: %w", q.percentile, err))
		}
		*q.dst = time.Duration(v)
	}
	return aggregation
}

func (w *ExactWindow) Reset() {
	w.mu.Lock()
	w.latencies = nil
	w.mu.Unlock()
}
