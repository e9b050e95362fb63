package rng

// Scripted replays fixed draws, then falls back to constant values. It lets
// tests pin a specific branch of a stochastic model.
type Scripted struct {
	Floats []float64
	Ints   []int
	Norms  []float64

	FallbackFloat float64
	FallbackInt   int
	FallbackNorm  float64
}

var _ Source = (*Scripted)(nil)

func (s *Scripted) Float64() float64 {
	if len(s.Floats) == 0 {
		return s.FallbackFloat
	}
	f := s.Floats[0]
	s.Floats = s.Floats[1:]
	return f
}

// IntN returns the next scripted int reduced into [0,n).
func (s *Scripted) IntN(n int) int {
	v := s.FallbackInt
	if len(s.Ints) > 0 {
		v = s.Ints[0]
		s.Ints = s.Ints[1:]
	}
	if n <= 0 {
		panic("rng: IntN with n <= 0")
	}
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

func (s *Scripted) NormFloat64() float64 {
	if len(s.Norms) == 0 {
		return s.FallbackNorm
	}
	f := s.Norms[0]
	s.Norms = s.Norms[1:]
	return f
}

// Constant returns a source whose uniform draws are always f and whose
// normal draws are always zero.
func Constant(f float64) *Scripted { return &Scripted{FallbackFloat: f} }
