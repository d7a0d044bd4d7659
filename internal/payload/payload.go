// Package payload produces the records a source injects for each scheduled
// send time.
package payload

import (
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kcz17/harness/internal/dataflow"
	"github.com/kcz17/harness/internal/stats"
)

// Distributions the developer can choose for generated keys.
const (
	Uniform = "uniform"
	Normal  = "normal"
)

type Options struct {
	// Keys is the size of the key space; keys are drawn from [0, Keys).
	Keys         uint64
	Distribution string
	// Mean and StdDev parameterise the normal distribution, expressed as
	// fractions of Keys.
	Mean   float64
	StdDev float64
}

type sampler interface {
	Rand() float64
}

// Generator is deterministic for a given seed.
type Generator struct {
	keys    uint64
	sampler sampler
}

func NewGenerator(seed uint64, options Options) (*Generator, error) {
	if options.Keys == 0 {
		return nil, errors.Errorf("NewGenerator() expected Keys > 0; got 0")
	}

	src := rand.NewSource(seed)
	var s sampler
	switch options.Distribution {
	case Uniform, "":
		s = distuv.Uniform{Min: 0, Max: float64(options.Keys), Src: src}
	case Normal:
		s = stats.NewTruncatedNormal(
			0,
			float64(options.Keys),
			options.Mean*float64(options.Keys),
			options.StdDev*float64(options.Keys),
			src,
		)
	default:
		return nil, errors.Errorf("NewGenerator() expected Distribution to be one of {%s|%s}; got %s", Uniform, Normal, options.Distribution)
	}

	return &Generator{keys: options.Keys, sampler: s}, nil
}

// Next returns the record to send at scheduled time t.
func (g *Generator) Next(uint64) dataflow.Record {
	key := uint64(math.Floor(g.sampler.Rand()))
	// Sampling is on a half-open range but floating point rounding may still
	// hit the upper bound.
	if key >= g.keys {
		key = g.keys - 1
	}
	return dataflow.Record{Key: key, Value: 1}
}

// Seed derives the generator seed for a worker.
func Seed(base uint64, index int) uint64 {
	return base + uint64(index)
}

// InitialLoad is the seed batch of worker index: every key owned by the
// worker, with value 1. Keys are partitioned across peers round-robin.
func InitialLoad(index, peers int, keys uint64) []dataflow.Record {
	perPeer := keys / uint64(peers)
	records := make([]dataflow.Record, 0, perPeer)
	for i := uint64(0); i < perPeer; i++ {
		records = append(records, dataflow.Record{
			Key:   i*uint64(peers) + uint64(index),
			Value: 1,
		})
	}
	return records
}
