package solsmith

import (
	"testing"

	"github.com/kr/pretty"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testOptions() Options {
	opts := Defaults()
	opts.Logger = zerolog.Nop()
	return opts
}

// newTestGraph builds a graph with an empty program state.
func newTestGraph(t *testing.T, opts Options, seed uint64) *Graph {
	t.Helper()

	opts = opts.normalize()
	require.NoError(t, opts.Validate())
	g := newGraph(opts, newRNG(seed, opts.Logger, false))
	g.beginProgram()
	return g
}

// newTestGraphWithUnit builds a graph whose state already has one unit.
func newTestGraphWithUnit(t *testing.T, opts Options, seed uint64) *Graph {
	t.Helper()

	g := newTestGraph(t, opts, seed)
	g.State().BeginSourceUnit("su0.sol")
	return g
}

func synthesize(t *testing.T, opts Options, seed uint64) *Program {
	t.Helper()

	s, err := NewSynthesizer(opts)
	require.NoError(t, err)
	return s.Synthesize(seed)
}

// requireInternalPanic asserts that f panics with an InternalError.
func requireInternalPanic(t *testing.T, f func()) {
	t.Helper()

	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		require.True(t, IsInternalError(err), "panic %v is not an internal error", err)
	}()
	f()
}

// requireEqualState fails with a field level diff when the ledgers differ.
func requireEqualState(t *testing.T, expected, actual *ProgramState) {
	t.Helper()

	if diff := pretty.Diff(expected.Units(), actual.Units()); len(diff) > 0 {
		t.Fatalf("program states differ:\n%s", pretty.Sprint(diff))
	}
}
