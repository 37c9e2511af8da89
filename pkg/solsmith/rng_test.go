package solsmith

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRNGReproducible(t *testing.T) {

	t.Parallel()

	properties := gopter.NewProperties(nil)

	properties.Property("same seed gives the same draws", prop.ForAll(
		func(seed uint64) bool {
			a := newRNG(seed, zerolog.Nop(), false)
			b := newRNG(seed, zerolog.Nop(), false)
			for i := 0; i < 64; i++ {
				if a.pickInRange(1000) != b.pickInRange(1000) {
					return false
				}
			}
			return true
		},
		gen.UInt64(),
	))

	properties.Property("reseeding restarts the stream", prop.ForAll(
		func(seed uint64) bool {
			r := newRNG(seed, zerolog.Nop(), false)
			first := r.next31()
			r.next31()
			r.seed(seed)
			return r.next31() == first
		},
		gen.UInt64(),
	))

	properties.TestingRun(t)
}

func TestRNGPickInRange(t *testing.T) {

	t.Parallel()

	properties := gopter.NewProperties(nil)

	properties.Property("draws stay within [1, n]", prop.ForAll(
		func(seed uint64, n int) bool {
			r := newRNG(seed, zerolog.Nop(), false)
			x := r.pickInRange(n)
			return x >= 1 && x <= n
		},
		gen.UInt64(),
		gen.IntRange(1, 1<<20),
	))

	properties.TestingRun(t)

	t.Run("empty range", func(t *testing.T) {

		t.Parallel()

		r := newRNG(1, zerolog.Nop(), false)
		requireInternalPanic(t, func() {
			r.pickInRange(0)
		})
	})

	t.Run("empty list", func(t *testing.T) {

		t.Parallel()

		r := newRNG(1, zerolog.Nop(), false)
		requireInternalPanic(t, func() {
			pickOneOf(r, []string{})
		})
	})
}

func TestRNGCoinFlipIsBalanced(t *testing.T) {

	t.Parallel()

	r := newRNG(42, zerolog.Nop(), false)
	heads := 0
	const n = 10000
	for i := 0; i < n; i++ {
		if r.coinFlip() {
			heads++
		}
	}
	assert.InDelta(t, n/2, heads, n/20)
}

func TestRNGLiterals(t *testing.T) {

	t.Parallel()

	r := newRNG(7, zerolog.Nop(), false)

	t.Run("ascii", func(t *testing.T) {
		s := r.randomASCIIString(200)
		require.Len(t, s, 200)
		for _, c := range s {
			assert.True(t, strings.ContainsRune(asciiAlphabet, c), "unexpected %q", c)
		}
	})

	t.Run("hex", func(t *testing.T) {
		s := r.randomHexString(64)
		require.Len(t, s, 64)
		assert.Empty(t, strings.Trim(s, hexAlphabet))
	})

	t.Run("number", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			kind, text := r.randomNumberLiteral(6)
			switch kind {
			case HexLiteral:
				require.True(t, strings.HasPrefix(text, "0x"))
				assert.Len(t, text, 8)
			case DecimalLiteral:
				require.Len(t, text, 6)
				assert.NotEqual(t, byte('0'), text[0])
			default:
				t.Fatalf("unexpected literal kind %s", kind)
			}
		}
	})
}

func TestRNGTrace(t *testing.T) {

	level := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	defer zerolog.SetGlobalLevel(level)

	var out strings.Builder
	log := zerolog.New(&out).Level(zerolog.TraceLevel)
	r := newRNG(3, log, true)
	r.pickInRange(10)
	r.coinFlip()

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"op":"range"`)
	assert.Contains(t, lines[0], `"pos":1`)
	assert.Contains(t, lines[1], `"op":"coin"`)
	assert.Contains(t, lines[1], "TestRNGTrace")
}
