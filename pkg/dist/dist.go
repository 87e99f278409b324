// Package dist provides the probability distributions consumed by network
// nodes. Sampling and scoring are parameterized by the node's parent values,
// passed in ascending parent-index order.
package dist

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// LogProbZero is a finite stand-in for log(0). Using a fixed very-negative
// constant instead of -Inf keeps log-probability sums arithmetic.
const LogProbZero = -1e10

// Distribution is the sampling/scoring contract nodes delegate to.
// params holds the values of the node's parents in sorted parent order;
// distributions that ignore their parents may disregard it.
type Distribution interface {
	Sample(params []float64) float64
	LogProbability(params []float64, value float64) float64
}

// Categorical is a distribution over an explicit finite support with one
// weight per support value. It does not condition on parent values.
type Categorical struct {
	support []float64
	inner   distuv.Categorical
}

// NewCategorical creates a categorical distribution over support with the
// given weights, drawing from src. Weights need not be normalized.
func NewCategorical(support, weights []float64, src rand.Source) (*Categorical, error) {
	if len(support) == 0 {
		return nil, fmt.Errorf("categorical: empty support")
	}
	if len(support) != len(weights) {
		return nil, fmt.Errorf("categorical: %d support values but %d weights", len(support), len(weights))
	}
	total := 0.0
	for i, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("categorical: negative weight %g at position %d", w, i)
		}
		total += w
	}
	if total == 0 {
		return nil, fmt.Errorf("categorical: weights sum to zero")
	}
	return &Categorical{
		support: append([]float64(nil), support...),
		inner:   distuv.NewCategorical(weights, src),
	}, nil
}

// Support returns the support values in construction order.
func (c *Categorical) Support() []float64 {
	return append([]float64(nil), c.support...)
}

// Sample draws a value from the support.
func (c *Categorical) Sample(_ []float64) float64 {
	return c.support[int(c.inner.Rand())]
}

// LogProbability returns the log mass at value, or LogProbZero if value is
// outside the support or has zero weight.
func (c *Categorical) LogProbability(_ []float64, value float64) float64 {
	for i, v := range c.support {
		if v == value {
			return clampLog(c.inner.LogProb(float64(i)))
		}
	}
	return LogProbZero
}

// LinearGaussian is a normal distribution whose mean is affine in the parent
// values: mean = Intercept + Coeffs · params. Sigma is fixed.
type LinearGaussian struct {
	Intercept float64
	Coeffs    []float64
	Sigma     float64
	Src       rand.Source
}

// NewLinearGaussian creates a linear-Gaussian conditional distribution.
// Coeffs must have one entry per parent, in sorted parent order.
func NewLinearGaussian(intercept float64, coeffs []float64, sigma float64, src rand.Source) (*LinearGaussian, error) {
	if sigma <= 0 {
		return nil, fmt.Errorf("linear gaussian: sigma must be positive, got %g", sigma)
	}
	return &LinearGaussian{
		Intercept: intercept,
		Coeffs:    append([]float64(nil), coeffs...),
		Sigma:     sigma,
		Src:       src,
	}, nil
}

func (g *LinearGaussian) normal(params []float64) distuv.Normal {
	mean := g.Intercept
	if len(g.Coeffs) > 0 {
		mean += floats.Dot(g.Coeffs, params)
	}
	return distuv.Normal{Mu: mean, Sigma: g.Sigma, Src: g.Src}
}

// Sample draws from the normal conditioned on params.
func (g *LinearGaussian) Sample(params []float64) float64 {
	return g.normal(params).Rand()
}

// LogProbability returns the log density at value given params.
func (g *LinearGaussian) LogProbability(params []float64, value float64) float64 {
	return clampLog(g.normal(params).LogProb(value))
}

// clampLog maps -Inf scores to the finite LogProbZero sentinel.
func clampLog(lp float64) float64 {
	if lp < LogProbZero {
		return LogProbZero
	}
	return lp
}
