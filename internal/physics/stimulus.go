package physics

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/fkviz/internal/field"
)

// Protocol schedules a stimulus: on for Duration ms starting at Start,
// repeating every Period ms when Period is positive.
type Protocol struct {
	Start    float64 `yaml:"start"`
	Duration float64 `yaml:"duration"`
	Period   float64 `yaml:"period"`
}

func (p Protocol) Active(t float64) bool {
	if t < p.Start {
		return false
	}
	elapsed := t - p.Start
	if p.Period > 0 {
		elapsed = math.Mod(elapsed, p.Period)
	}
	return elapsed < p.Duration
}

// Stimulus is an externally applied current pattern, added to du/dt while
// its protocol is active.
type Stimulus struct {
	Pattern  *field.Grid
	Protocol Protocol
}

func (s Stimulus) Field() *field.Grid { return s.Pattern }

type Cell struct {
	Row, Col int
}

type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

func (d Direction) String() string {
	return [...]string{"left", "right", "up", "down"}[d]
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "left", "":
		return Left, nil
	case "right":
		return Right, nil
	case "up", "top":
		return Up, nil
	case "down", "bottom":
		return Down, nil
	}
	return Left, fmt.Errorf("unknown direction: %s", s)
}

// Rectangular excites a height x width block centred on center.
func Rectangular(rows, cols int, center Cell, height, width int, modulus float64, p Protocol) Stimulus {
	g := field.NewGrid(rows, cols)
	r0, c0 := center.Row-height/2, center.Col-width/2
	for r := max(r0, 0); r < min(r0+height, rows); r++ {
		for c := max(c0, 0); c < min(c0+width, cols); c++ {
			g.Set(r, c, modulus)
		}
	}
	return Stimulus{Pattern: g, Protocol: p}
}

// Linear excites a band along one edge covering the given fraction of the
// tissue, which launches a planar wave away from that edge.
func Linear(rows, cols int, dir Direction, coverage, modulus float64, p Protocol) Stimulus {
	g := field.NewGrid(rows, cols)
	coverage = math.Max(0, math.Min(1, coverage))
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			var in bool
			switch dir {
			case Left:
				in = float64(c) < coverage*float64(cols)
			case Right:
				in = float64(cols-1-c) < coverage*float64(cols)
			case Up:
				in = float64(r) < coverage*float64(rows)
			case Down:
				in = float64(rows-1-r) < coverage*float64(rows)
			}
			if in {
				g.Set(r, c, modulus)
			}
		}
	}
	return Stimulus{Pattern: g, Protocol: p}
}

func Circular(rows, cols int, center Cell, radius, modulus float64, p Protocol) Stimulus {
	g := field.NewGrid(rows, cols)
	r2 := radius * radius
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			dr, dc := float64(r-center.Row), float64(c-center.Col)
			if dr*dr+dc*dc <= r2 {
				g.Set(r, c, modulus)
			}
		}
	}
	return Stimulus{Pattern: g, Protocol: p}
}
