package testutil

// FixedSource is a scripted random source. Intn and Float64 replay their
// sequences in a loop; Intn results are clamped into [0, n).
// An empty sequence yields 0.
type FixedSource struct {
	Ints   []int
	Floats []float64
	i, f   int
}

// Always returns a source whose Intn always yields v.
func Always(v int) *FixedSource {
	return &FixedSource{Ints: []int{v}}
}

func (s *FixedSource) Intn(n int) int {
	if len(s.Ints) == 0 {
		return 0
	}
	v := s.Ints[s.i%len(s.Ints)]
	s.i++
	return min(max(v, 0), n-1)
}

func (s *FixedSource) Float64() float64 {
	if len(s.Floats) == 0 {
		return 0
	}
	v := s.Floats[s.f%len(s.Floats)]
	s.f++
	return v
}
