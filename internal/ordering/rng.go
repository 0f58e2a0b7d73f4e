package ordering

// Generator is a mulberry32 pseudo-random generator held as a plain value.
// Next never mutates the receiver; callers thread the returned generator into
// the next draw, so the whole random stream of a computation is explicit.
type Generator struct {
	state uint32
}

// NewGenerator seeds a generator. Only the low 32 bits of seed are used.
func NewGenerator(seed int64) Generator {
	return Generator{state: uint32(seed)}
}

// Next returns a value in [0, 1) and the advanced generator.
func (g Generator) Next() (float64, Generator) {
	state := g.state + 0x6D2B79F5
	t := state
	t = (t ^ t>>15) * (t | 1)
	t ^= t + (t^t>>7)*(t|61)
	return float64(t^t>>14) / 4294967296.0, Generator{state: state}
}

// Intn returns a value in [0, n) and the advanced generator. n must be > 0.
func (g Generator) Intn(n int) (int, Generator) {
	r, next := g.Next()
	return int(r * float64(n)), next
}
