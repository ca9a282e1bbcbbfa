package metrics

import "github.com/san-kum/fkviz/internal/dynamo"

// Stability is the fraction of observed steps in which every potential
// sample stayed within [-threshold, 1+threshold].
type Stability struct {
	name       string
	cells      int
	threshold  float64
	violations int
	samples    int
}

func NewStability(cells int, threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		cells:     cells,
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(x dynamo.State, t float64) {
	s.samples++
	for _, val := range potential(x, s.cells) {
		if val < -s.threshold || val > 1+s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
