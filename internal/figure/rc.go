package figure

import (
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

const DefaultFontSize = 10

// rc is the process-wide text configuration applied to every plot created
// through NewPlot. Changes persist until the next SetFontSize.
var rc = struct {
	sync.RWMutex
	fontSize vg.Length
}{fontSize: DefaultFontSize}

func SetFontSize(pt float64) {
	if pt <= 0 {
		pt = DefaultFontSize
	}
	rc.Lock()
	rc.fontSize = vg.Points(pt)
	rc.Unlock()
}

func FontSize() vg.Length {
	rc.RLock()
	defer rc.RUnlock()
	return rc.fontSize
}

// NewPlot returns a plot with the current text configuration applied.
func NewPlot() *plot.Plot {
	p := plot.New()
	size := FontSize()
	p.Title.TextStyle.Font.Size = size
	p.X.Label.TextStyle.Font.Size = size
	p.Y.Label.TextStyle.Font.Size = size
	p.X.Tick.Label.Font.Size = size
	p.Y.Tick.Label.Font.Size = size
	p.Legend.TextStyle.Font.Size = size
	return p
}
