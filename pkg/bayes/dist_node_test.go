package bayes

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/probkit/bayesnet/pkg/dist"
)

// buildMixedNet wires a discrete root into a linear-Gaussian node and a
// deterministic node that doubles the Gaussian's value.
func buildMixedNet(t *testing.T, seed uint64) (*Network, *DistNode, *DeterministicNode) {
	t.Helper()
	src := rand.NewSource(seed)

	root := NewTableNode(0, "root", 2, []float64{0.4, 0.6})

	gaussian, err := dist.NewLinearGaussian(1, []float64{2}, 0.5, src)
	require.NoError(t, err)
	x := NewDistNode(1, "x", RealSupport(), gaussian)

	doubled := NewDeterministicNode(2, "doubled", func(params []float64) float64 {
		return 2 * params[0]
	})

	net := New(src)
	for _, node := range []Node{root, x, doubled} {
		require.NoError(t, net.AddNode(node))
	}
	require.NoError(t, net.AddEdge(root, x))
	require.NoError(t, net.AddEdge(x, doubled))
	require.NoError(t, net.Compile())
	return net, x, doubled
}

func TestDistNodeSampleAndScore(t *testing.T) {
	net, x, _ := buildMixedNet(t, 3)

	w, err := net.Sample(nil)
	require.NoError(t, err)

	rootValue, ok := w.Value(0)
	require.True(t, ok)
	xValue, ok := w.Value(1)
	require.True(t, ok)

	// Score matches the normal density at the sampled value, conditioned on
	// the root: mean = 1 + 2*root, sigma = 0.5.
	mean := 1 + 2*rootValue
	sigma := 0.5
	want := -0.5*math.Log(2*math.Pi*sigma*sigma) - (xValue-mean)*(xValue-mean)/(2*sigma*sigma)

	lp, err := x.LogProbability(w, xValue)
	require.NoError(t, err)
	assert.InDelta(t, want, lp, 1e-12)
}

func TestDistNodeWithoutParentsUsesCategorical(t *testing.T) {
	src := rand.NewSource(9)
	categorical, err := dist.NewCategorical([]float64{0, 1, 2}, []float64{0.2, 0.3, 0.5}, src)
	require.NoError(t, err)

	node := NewDistNode(0, "d", DiscreteSupport(3), categorical)
	net := New(src)
	require.NoError(t, net.AddNode(node))
	require.NoError(t, net.Compile())

	w, err := net.Sample(nil)
	require.NoError(t, err)
	value, ok := w.Value(0)
	require.True(t, ok)
	assert.Contains(t, []float64{0, 1, 2}, value)

	lp, err := node.LogProbability(w, 2)
	require.NoError(t, err)
	assert.InDelta(t, math.Log(0.5), lp, 1e-12)
}

func TestDistNodeMissingDistribution(t *testing.T) {
	net := New(rand.NewSource(1))
	require.NoError(t, net.AddNode(NewDistNode(0, "d", DiscreteSupport(2), nil)))
	assert.ErrorIs(t, net.Compile(), ErrStructural)
}

func TestDeterministicNodeSampleEqualsFunction(t *testing.T) {
	net, _, doubled := buildMixedNet(t, 7)

	w, err := net.Sample(nil)
	require.NoError(t, err)

	xValue, ok := w.Value(1)
	require.True(t, ok)
	doubledValue, ok := w.Value(2)
	require.True(t, ok)
	assert.Equal(t, 2*xValue, doubledValue)

	// Exact match scores log(1) = 0; any other value gets the sentinel.
	lp, err := doubled.LogProbability(w, doubledValue)
	require.NoError(t, err)
	assert.Equal(t, 0.0, lp)

	lp, err = doubled.LogProbability(w, doubledValue+1)
	require.NoError(t, err)
	assert.Equal(t, dist.LogProbZero, lp)
}

func TestDeterministicMismatchKeepsJointFinite(t *testing.T) {
	net, _, _ := buildMixedNet(t, 7)

	w, err := net.Sample(nil)
	require.NoError(t, err)
	doubledValue, ok := w.Value(2)
	require.True(t, ok)

	mismatched := w.Copy()
	mismatched.Set(2, doubledValue+1)

	lp, err := net.LogProbability(mismatched)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(lp))
	assert.False(t, math.IsInf(lp, 0))
	assert.LessOrEqual(t, lp, dist.LogProbZero)
}

func TestDeterministicNodeMissingFunction(t *testing.T) {
	net := New(rand.NewSource(1))
	require.NoError(t, net.AddNode(NewDeterministicNode(0, "d", nil)))
	assert.ErrorIs(t, net.Compile(), ErrStructural)
}
