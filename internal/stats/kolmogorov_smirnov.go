package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type Percentile = int

const (
	P90 Percentile = iota
	P95
	P97d5
	P99
	P99d5
	P99d9
)

// coefficients are KS-coefficients.
// Retrieved from: https://www.webdepot.umontreal.ca/Usagers/angers/MonDepotPublic/STT3500H10/Critical_KS.pdf
var coefficients = map[Percentile]float64{
	P90:   1.22,
	P95:   1.36,
	P97d5: 1.48,
	P99:   1.63,
	P99d5: 1.73,
	P99d9: 1.95,
}

// Weighted is a sample where Weights[i] counts the occurrences of Values[i].
// A nil Weights means every value occurs once.
type Weighted struct {
	Values  []float64
	Weights []float64
}

func (w Weighted) size() float64 {
	if w.Weights == nil {
		return float64(len(w.Values))
	}
	return floats.Sum(w.Weights)
}

// sorted returns copies of the values and weights ordered by value, as
// required by gonum's stat.KolmogorovSmirnov.
func (w Weighted) sorted() ([]float64, []float64) {
	values := make([]float64, len(w.Values))
	copy(values, w.Values)
	if w.Weights == nil {
		sort.Float64s(values)
		return values, nil
	}
	weights := make([]float64, len(w.Weights))
	copy(weights, w.Weights)
	stat.SortWeighted(values, weights)
	return values, weights
}

type KSResult struct {
	Statistic     float64
	CriticalValue float64
	// Rejected is true if the two samples come from different distributions.
	Rejected bool
}

// KolmogorovSmirnovTest performs a two-tailed KS-test between the control and
// candidate samples at the given confidence percentile.
func KolmogorovSmirnovTest(control, candidate Weighted, percentile Percentile) KSResult {
	// Calculate the KS-coefficient based on the percentile.
	coeff, ok := coefficients[percentile]
	if !ok {
		panic(fmt.Sprintf("unexpected percentile %v, see Percentile type", percentile))
	}

	n, m := control.size(), candidate.size()
	if n == 0 || m == 0 {
		panic(fmt.Sprintf("expected non-empty samples in KolmogorovSmirnovTest(); got sizes %v and %v", n, m))
	}

	// Calculate the critical value.
	criticalValue := coeff * math.Sqrt((n+m)/(n*m))

	controlValues, controlWeights := control.sorted()
	candidateValues, candidateWeights := candidate.sorted()
	testStatistic := stat.KolmogorovSmirnov(controlValues, controlWeights, candidateValues, candidateWeights)

	return KSResult{
		Statistic:     testStatistic,
		CriticalValue: criticalValue,
		Rejected:      testStatistic > criticalValue,
	}
}
