package stats

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// TruncatedNormal samples a normal distribution restricted to [lo, hi].
type TruncatedNormal struct {
	norm    distuv.Normal
	uniform distuv.Uniform
}

func NewTruncatedNormal(lo, hi, mean, stddev float64, src rand.Source) *TruncatedNormal {
	if lo >= hi {
		panic(fmt.Sprintf("expected lo < hi in NewTruncatedNormal(); got lo = %v, hi = %v", lo, hi))
	}

	// Use an inverse transform method to sample from the distribution.
	// Reference: https://www.r-bloggers.com/2020/08/generating-data-from-a-truncated-distribution/
	norm := distuv.Normal{
		Mu:    mean,
		Sigma: stddev,
		Src:   src,
	}
	return &TruncatedNormal{
		norm: norm,
		uniform: distuv.Uniform{
			Min: norm.CDF(lo),
			Max: norm.CDF(hi),
			Src: src,
		},
	}
}

func (d *TruncatedNormal) Rand() float64 {
	return d.norm.Quantile(d.uniform.Rand())
}
