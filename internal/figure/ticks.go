package figure

import (
	"fmt"

	"gonum.org/v1/plot"
)

// ScaledTicks keeps the tick positions of Ticker and relabels each major
// tick with its value divided by Divisor.
type ScaledTicks struct {
	Ticker  plot.Ticker
	Divisor float64
	Format  string
}

func (s ScaledTicks) Ticks(min, max float64) []plot.Tick {
	ticker := s.Ticker
	if ticker == nil {
		ticker = plot.DefaultTicks{}
	}
	div, format := s.Divisor, s.Format
	if div == 0 {
		div = 1
	}
	if format == "" {
		format = "%g"
	}
	ticks := ticker.Ticks(min, max)
	for i := range ticks {
		if ticks[i].IsMinor() {
			continue
		}
		ticks[i].Label = fmt.Sprintf(format, ticks[i].Value/div)
	}
	return ticks
}

// CentimeterTicks labels grid-index axes in cm, with 100 cells per cm.
func CentimeterTicks() plot.Ticker {
	return ScaledTicks{Divisor: 100, Format: "%.1f"}
}

// FormatCentimeters is the label CentimeterTicks gives to a grid index.
func FormatCentimeters(index float64) string {
	return fmt.Sprintf("%.1f", index/100)
}
