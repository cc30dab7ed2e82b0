package streams

const (
	mcgMultiplier = 16807
	mcgModulus    = 2147483647 // 2^31 - 1
)

// mcg16807 is the classic Lehmer multiplicative congruential generator,
// x(n+1) = 16807 * x(n) mod (2^31 - 1). State is always in [1, 2^31-2].
// It satisfies math/rand/v2's Source so gonum distributions can draw from it
// directly.
type mcg16807 struct {
	state uint64
}

func newMCG16807(seed uint64) *mcg16807 {
	s := &mcg16807{}
	s.Seed(seed)
	return s
}

func (s *mcg16807) Seed(seed uint64) {
	seed %= mcgModulus
	if seed == 0 {
		seed = 1
	}
	s.state = seed
}

func (s *mcg16807) next31() uint64 {
	s.state = s.state * mcgMultiplier % mcgModulus
	return s.state
}

// Uint64 widens two consecutive 31-bit outputs into the high bits of a
// 64-bit word, so consumers that take the top bits (Float64, the normal
// ziggurat) see full-width variates.
func (s *mcg16807) Uint64() uint64 {
	hi := s.next31()
	lo := s.next31()
	return hi<<33 | lo<<2
}
