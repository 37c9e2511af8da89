package solsmith

import (
	"runtime"
	"strings"

	"github.com/rs/zerolog"
)

const (
	lcgA    uint64 = 0x5DEECE66D
	lcgC    uint64 = 0xB
	lcgMask uint64 = (1 << 48) - 1
)

// NumberLiteralKind tags a synthesized number literal.
type NumberLiteralKind int

const (
	DecimalLiteral NumberLiteralKind = iota
	HexLiteral
)

func (k NumberLiteralKind) String() string {
	if k == HexLiteral {
		return "hex"
	}
	return "decimal"
}

const (
	asciiAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 "
	hexAlphabet   = "0123456789abcdef"
)

// rng is the single random stream of one synthesis pass. It uses the
// srand48/lrand48 recurrence, so a seed reproduces the same draws on every
// platform. Every production decision goes through it.
type rng struct {
	state uint64
	trace bool
	log   zerolog.Logger
	pos   uint64
}

func newRNG(seed uint64, log zerolog.Logger, trace bool) *rng {
	r := &rng{trace: trace, log: log}
	r.seed(seed)
	return r
}

// seed restarts the stream. srand48 semantics, with the high seed word
// folded in.
func (r *rng) seed(seed uint64) {
	folded := seed ^ (seed >> 32)
	r.state = ((folded << 16) + 0x330E) & lcgMask
	r.pos = 0
}

func (r *rng) next31() uint32 {
	r.state = (lcgA*r.state + lcgC) & lcgMask
	return uint32(r.state >> 17)
}

// pickInRange returns a uniformly drawn integer in [1, n].
func (r *rng) pickInRange(n int) int {
	assertf(n > 0, "pickInRange: empty range %d", n)
	raw := r.next31()
	x := int(raw%uint32(n)) + 1
	r.traceDraw("range", n, x)
	return x
}

// coinFlip draws its own value instead of reusing pickInRange(2), so coin
// tosses do not skew range draws that share the stream.
func (r *rng) coinFlip() bool {
	raw := r.next31()
	heads := raw%2 == 0
	x := 0
	if heads {
		x = 1
	}
	r.traceDraw("coin", 2, x)
	return heads
}

// oneIn reports true with probability 1/n.
func (r *rng) oneIn(n int) bool {
	return r.pickInRange(n) == 1
}

// pickIndex returns a uniformly drawn index in [0, n).
func (r *rng) pickIndex(n int) int {
	return r.pickInRange(n) - 1
}

func pickOneOf[T any](r *rng, list []T) T {
	assertf(len(list) > 0, "pickOneOf: empty list")
	return list[r.pickIndex(len(list))]
}

func (r *rng) randomString(alphabet string, length int) string {
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		b.WriteByte(alphabet[r.pickIndex(len(alphabet))])
	}
	return b.String()
}

// randomASCIIString only uses letters, digits and spaces, so the result is
// safe inside string literals and comments.
func (r *rng) randomASCIIString(length int) string {
	return r.randomString(asciiAlphabet, length)
}

func (r *rng) randomHexString(length int) string {
	return r.randomString(hexAlphabet, length)
}

// randomNumberLiteral returns a decimal literal without leading zeros or a
// 0x-prefixed hex literal with length digits.
func (r *rng) randomNumberLiteral(length int) (NumberLiteralKind, string) {
	assertf(length > 0, "randomNumberLiteral: length %d", length)
	if r.coinFlip() {
		return HexLiteral, "0x" + r.randomHexString(length)
	}
	var b strings.Builder
	b.Grow(length)
	b.WriteByte("123456789"[r.pickIndex(9)])
	for i := 1; i < length; i++ {
		b.WriteByte("0123456789"[r.pickIndex(10)])
	}
	return DecimalLiteral, b.String()
}

func (r *rng) traceDraw(op string, n int, x int) {
	if !r.trace {
		return
	}
	r.pos++
	r.log.Trace().
		Uint64("pos", r.pos).
		Str("op", op).
		Int("n", n).
		Int("result", x).
		Str("site", traceCaller()).
		Msg("rng draw")
}

func traceCaller() string {
	var pcs [12]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])
	for {
		fr, more := frames.Next()
		name := fr.Function
		if name != "" && !strings.Contains(name, ".(*rng).") && !strings.Contains(name, ".pickOneOf") {
			return name
		}
		if !more {
			break
		}
	}
	return "unknown"
}
