// Package wordcount is the default pipeline body: a running count per key.
package wordcount

import "github.com/kcz17/harness/internal/dataflow"

type Counter struct {
	counts  map[uint64]uint64
	updates uint64
}

func NewCounter() *Counter {
	return &Counter{counts: make(map[uint64]uint64, 2048)}
}

func (c *Counter) Process(_ uint64, records []dataflow.Record) {
	for _, r := range records {
		c.counts[r.Key] += r.Value
	}
	c.updates += uint64(len(records))
}

func (c *Counter) Count(key uint64) uint64 { return c.counts[key] }

// Keys is the number of distinct keys seen.
func (c *Counter) Keys() int { return len(c.counts) }

// Updates is the number of records processed.
func (c *Counter) Updates() uint64 { return c.updates }
