package responsetime

import (
	"time"

	"github.com/jamiealquiza/tachymeter"

	"github.com/kcz17/harness/internal/metrics"
)

// RollingWindow holds the most recent latencies in a fixed-size tachymeter
// ring, so progress figures follow the current behaviour of the pipeline.
type RollingWindow struct {
	tach *tachymeter.Tachymeter
}

func NewRollingWindow(size int) *RollingWindow {
	return &RollingWindow{tach: tachymeter.New(&tachymeter.Config{Size: size})}
}

func (w *RollingWindow) Observe(begin, end uint64) {
	w.tach.AddTime(time.Duration(metrics.Latency(begin, end)))
}

func (w *RollingWindow) Aggregate() *Aggregation {
	m := w.tach.Calc()
	if m.Samples == 0 {
		return &Aggregation{}
	}
	return &Aggregation{
		P50:   m.Time.P50,
		P75:   m.Time.P75,
		P95:   m.Time.P95,
		Count: m.Samples,
	}
}

func (w *RollingWindow) Reset() {
	w.tach.Reset()
}
