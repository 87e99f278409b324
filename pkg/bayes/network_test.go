package bayes

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/probkit/bayesnet/pkg/world"
)

// buildChainNet creates the two-node scenario: node0 with P = [0.1, 0.9] and
// node1 conditioned on node0 with rows [0.8, 0.2] and [0.3, 0.7].
func buildChainNet(t *testing.T, seed uint64) *Network {
	t.Helper()
	node0 := NewTableNode(0, "node0", 2, []float64{0.1, 0.9})
	node1 := NewTableNode(1, "node1", 2, []float64{
		0.8, 0.2,
		0.3, 0.7,
	})
	net := New(rand.NewSource(seed))
	require.NoError(t, net.AddNode(node0))
	require.NoError(t, net.AddNode(node1))
	require.NoError(t, net.AddEdge(node0, node1))
	require.NoError(t, net.Compile())
	return net
}

func TestLogProbabilityTwoNodeScenario(t *testing.T) {
	net := buildChainNet(t, 1)

	lp, err := net.LogProbability(world.FromMap(map[int]float64{0: 1, 1: 0}))
	require.NoError(t, err)
	assert.InDelta(t, math.Log(0.9)+math.Log(0.3), lp, 1e-12)
}

func TestCycleRejected(t *testing.T) {
	x := NewTableNode(0, "x", 2, uniformCPT(4))
	y := NewTableNode(1, "y", 2, uniformCPT(4))
	net := New(rand.NewSource(1))
	require.NoError(t, net.AddNode(x))
	require.NoError(t, net.AddNode(y))
	require.NoError(t, net.AddEdge(x, y))
	require.NoError(t, net.AddEdge(y, x))

	err := net.Compile()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStructural)
	assert.Contains(t, err.Error(), "cyclic")
}

func TestAddNodeInvariants(t *testing.T) {
	net := New(rand.NewSource(1))

	// First index must be 0.
	err := net.AddNode(NewTableNode(1, "", 2, []float64{0.5, 0.5}))
	assert.ErrorIs(t, err, ErrStructural)

	node := NewTableNode(0, "a", 2, []float64{0.5, 0.5})
	require.NoError(t, net.AddNode(node))

	// Duplicate index.
	err = net.AddNode(NewTableNode(0, "b", 2, []float64{0.5, 0.5}))
	assert.ErrorIs(t, err, ErrStructural)

	// Gap in indices.
	err = net.AddNode(NewTableNode(2, "c", 2, []float64{0.5, 0.5}))
	assert.ErrorIs(t, err, ErrStructural)

	// Duplicate name.
	err = net.AddNode(NewTableNode(1, "a", 2, []float64{0.5, 0.5}))
	assert.ErrorIs(t, err, ErrStructural)

	// A node cannot join two networks.
	other := New(rand.NewSource(1))
	err = other.AddNode(node)
	assert.ErrorIs(t, err, ErrStructural)
}

func TestMutationAfterCompileRejected(t *testing.T) {
	net := buildChainNet(t, 1)

	err := net.AddNode(NewTableNode(2, "", 2, []float64{0.5, 0.5}))
	assert.ErrorIs(t, err, ErrStructural)

	node0, err := net.NodeByIndex(0)
	require.NoError(t, err)
	node1, err := net.NodeByIndex(1)
	require.NoError(t, err)
	err = net.AddEdge(node1, node0)
	assert.ErrorIs(t, err, ErrStructural)
}

func TestCompileIdempotent(t *testing.T) {
	net := buildChainNet(t, 1)

	order := net.TopologicalOrder()
	node1, err := net.NodeByIndex(1)
	require.NoError(t, err)
	blanket := node1.MarkovBlanket()
	multipliers := node1.(*TableNode).Multipliers()

	require.NoError(t, net.Compile())

	assert.Equal(t, order, net.TopologicalOrder())
	assert.Equal(t, blanket, node1.MarkovBlanket())
	assert.Equal(t, multipliers, node1.(*TableNode).Multipliers())
}

func TestSampleProducesCompleteWorld(t *testing.T) {
	net := buildChainNet(t, 5)

	for i := 0; i < 100; i++ {
		w, err := net.Sample(nil)
		require.NoError(t, err)
		require.Equal(t, net.NodeCount(), w.Len())
		for _, node := range net.Nodes() {
			value, ok := w.Value(node.Index())
			require.True(t, ok)
			assert.Contains(t, []float64{0, 1}, value)
		}

		lp, err := net.LogProbability(w)
		require.NoError(t, err)
		assert.False(t, math.IsNaN(lp))
		assert.False(t, math.IsInf(lp, 0))
	}
}

func TestSampleKeepsEvidenceAndCopies(t *testing.T) {
	net := buildChainNet(t, 5)

	evidence := world.FromMap(map[int]float64{0: 1})
	w, err := net.Sample(evidence)
	require.NoError(t, err)

	value, ok := w.Value(0)
	require.True(t, ok)
	assert.Equal(t, 1.0, value)
	assert.True(t, w.Has(1))

	// The seed world is untouched.
	assert.Equal(t, 1, evidence.Len())
}

func TestSampleInPlaceMutates(t *testing.T) {
	net := buildChainNet(t, 5)

	w := world.FromMap(map[int]float64{0: 0})
	require.NoError(t, net.SampleInPlace(w))
	assert.Equal(t, 2, w.Len())

	err := net.SampleInPlace(nil)
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestSampleReproducibleWithSameSeed(t *testing.T) {
	a := buildChainNet(t, 99)
	b := buildChainNet(t, 99)

	for i := 0; i < 50; i++ {
		wa, err := a.Sample(nil)
		require.NoError(t, err)
		wb, err := b.Sample(nil)
		require.NoError(t, err)
		assert.True(t, wa.Equal(wb), "sample %d diverged: %s vs %s", i, wa, wb)
	}
}

func TestLogProbabilityRequiresCompleteWorld(t *testing.T) {
	net := buildChainNet(t, 1)

	_, err := net.LogProbability(world.FromMap(map[int]float64{0: 1}))
	assert.ErrorIs(t, err, ErrPrecondition)

	// Same length but wrong keys.
	_, err = net.LogProbability(world.FromMap(map[int]float64{0: 1, 7: 0}))
	assert.ErrorIs(t, err, ErrPrecondition)

	_, err = net.LogProbability(nil)
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestUncompiledNetworkQueriesFail(t *testing.T) {
	net := New(rand.NewSource(1))
	require.NoError(t, net.AddNode(NewTableNode(0, "", 2, []float64{0.5, 0.5})))

	_, err := net.Sample(nil)
	assert.ErrorIs(t, err, ErrPrecondition)

	_, err = net.LogProbability(world.FromMap(map[int]float64{0: 0}))
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestCompileEmptyNetworkFails(t *testing.T) {
	net := New(rand.NewSource(1))
	assert.ErrorIs(t, net.Compile(), ErrStructural)
}

func TestNodeLookup(t *testing.T) {
	net := buildChainNet(t, 1)

	node, err := net.FindNode("node1")
	require.NoError(t, err)
	assert.Equal(t, 1, node.Index())

	_, err = net.FindNode("nope")
	assert.ErrorIs(t, err, ErrNotFound)

	node, err = net.NodeByIndex(0)
	require.NoError(t, err)
	assert.Equal(t, "node0", node.Name())

	_, err = net.NodeByIndex(7)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = net.NodeByIndex(-1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTopologicalOrderRespectsEdges(t *testing.T) {
	// Register children before parents; the order must still put parents
	// first.
	a := NewTableNode(0, "a", 2, uniformCPT(4))
	b := NewTableNode(1, "b", 2, uniformCPT(2))
	net := New(rand.NewSource(1))
	require.NoError(t, net.AddNode(a))
	require.NoError(t, net.AddNode(b))
	require.NoError(t, net.AddEdge(b, a))
	require.NoError(t, net.Compile())

	order := net.TopologicalOrder()
	require.Len(t, order, 2)
	assert.Equal(t, 1, order[0].Index())
	assert.Equal(t, 0, order[1].Index())
}
