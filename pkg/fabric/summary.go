package fabric

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Summary aggregates the accepted samples of a batch.
type Summary struct {
	Count    int `yaml:"count"`
	Rejected int `yaml:"rejected"`

	MeanDA float64 `yaml:"mean_da"`
	StdDA  float64 `yaml:"std_da"`

	// MeanComponents is the component-wise mean tensor, XX, YY, ZZ, XY, YZ, XZ.
	MeanComponents [6]float64 `yaml:"mean_components,flow"`
}

// Summarize computes batch statistics over the non-rejected samples. With no
// accepted sample the means are NaN; with one the deviation is zero.
func Summarize(samples []Sample) Summary {
	sum := Summary{Count: len(samples)}

	var da []float64
	comps := make([][]float64, 6)
	for _, s := range samples {
		if s.Rejected() {
			sum.Rejected++
			continue
		}
		da = append(da, s.DA)
		for i, c := range s.Components {
			comps[i] = append(comps[i], c)
		}
	}

	if len(da) == 0 {
		sum.MeanDA, sum.StdDA = math.NaN(), math.NaN()
		for i := range sum.MeanComponents {
			sum.MeanComponents[i] = math.NaN()
		}
		return sum
	}

	sum.MeanDA, sum.StdDA = stat.MeanStdDev(da, nil)
	if len(da) == 1 {
		sum.StdDA = 0
	}
	for i := range comps {
		sum.MeanComponents[i] = stat.Mean(comps[i], nil)
	}
	return sum
}
