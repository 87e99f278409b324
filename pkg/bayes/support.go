package bayes

import "fmt"

// Support describes the domain of a node: either a finite discrete domain
// {0, ..., n-1} or the real line. The zero value is the real support.
type Support struct {
	size int
}

// DiscreteSupport returns the support {0, ..., size-1}.
func DiscreteSupport(size int) Support {
	return Support{size: size}
}

// RealSupport returns the continuous support marker.
func RealSupport() Support {
	return Support{}
}

// Discrete reports whether the support is a finite discrete domain.
func (s Support) Discrete() bool {
	return s.size > 0
}

// Size returns the domain size of a discrete support, or 0 for real support.
func (s Support) Size() int {
	return s.size
}

// Values returns the discrete support values in ascending order, or nil for
// real support.
func (s Support) Values() []float64 {
	if !s.Discrete() {
		return nil
	}
	values := make([]float64, s.size)
	for i := range values {
		values[i] = float64(i)
	}
	return values
}

// Equal reports whether two supports describe the same domain.
func (s Support) Equal(other Support) bool {
	return s.size == other.size
}

func (s Support) String() string {
	if !s.Discrete() {
		return "real"
	}
	return fmt.Sprintf("discrete(%d)", s.size)
}
