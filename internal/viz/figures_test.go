package viz_test

import (
	"bytes"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/fkviz/internal/field"
	"github.com/san-kum/fkviz/internal/figure"
	"github.com/san-kum/fkviz/internal/physics"
	"github.com/san-kum/fkviz/internal/viz"
)

func uniform(rows, cols int, v float64) *field.Grid {
	g := field.NewGrid(rows, cols)
	for i := range g.Data {
		g.Data[i] = v
	}
	return g
}

func restingState(rows, cols int) field.State {
	st, err := field.NewState(physics.FieldNames, uniform(rows, cols, 0), uniform(rows, cols, 1), uniform(rows, cols, 1))
	Expect(err).NotTo(HaveOccurred())
	return st
}

func titles(f *figure.Figure) []string {
	var out []string
	for _, p := range f.Active() {
		out = append(out, p.Title())
	}
	return out
}

var _ = Describe("PlotState", func() {
	It("draws one panel per field, titled with the field name", func() {
		f, err := viz.PlotState(restingState(5, 5))
		Expect(err).NotTo(HaveOccurred())
		Expect(titles(f)).To(Equal([]string{"u", "v", "w"}))
		Expect(f.Rows).To(Equal(1))
		Expect(f.Cols).To(Equal(3))
	})
})

var _ = Describe("ShowGrid", func() {
	AfterEach(func() {
		figure.SetFontSize(figure.DefaultFontSize)
	})

	frames := func(n int) []*field.Grid {
		out := make([]*field.Grid, n)
		for i := range out {
			out[i] = uniform(4, 4, -85+float64(i))
		}
		return out
	}

	It("lays twelve frames out as three lines of five", func() {
		f, err := viz.ShowGrid(frames(12), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Rows).To(Equal(3))
		Expect(f.Cols).To(Equal(5))
		Expect(f.Active()).To(HaveLen(12))
		Expect(f.Panels[12:]).To(HaveEach(BeNil()))
	})

	It("keeps at least two panels per line", func() {
		f, err := viz.ShowGrid(frames(1), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Rows).To(Equal(1))
		Expect(f.Cols).To(Equal(2))
		Expect(f.Active()).To(HaveLen(1))
	})

	It("titles only the frames that have a time label", func() {
		f, err := viz.ShowGrid(frames(4), []float64{0, 10})
		Expect(err).NotTo(HaveOccurred())
		Expect(titles(f)).To(Equal([]string{"t: 0", "t: 10", "", ""}))
	})

	It("labels every colour bar in mV", func() {
		f, err := viz.ShowGrid(frames(3), nil, viz.WithRows(2))
		Expect(err).NotTo(HaveOccurred())
		for _, p := range f.Active() {
			Expect(p.ColorBar.Title.Text).To(Equal("mV"))
		}
	})
})

var _ = Describe("AnimateState", func() {
	var seq field.Sequence

	BeforeEach(func() {
		seq = nil
		for i := 0; i < 5; i++ {
			st, err := field.NewState(physics.FieldNames, uniform(6, 6, float64(i)/5), uniform(6, 6, 1), uniform(6, 6, 1))
			Expect(err).NotTo(HaveOccurred())
			seq = append(seq, st)
		}
	})

	It("yields one frame per state without changing the panels", func() {
		a, err := viz.AnimateState(seq, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Len()).To(Equal(5))

		var seen []string
		for t, f := range a.Frames() {
			Expect(f.Active()).To(HaveLen(3))
			Expect(f.Title).To(Equal(fmt.Sprintf("time: %d", t)))
			seen = append(seen, f.Title)
		}
		Expect(seen).To(HaveLen(5))
	})

	It("can be replayed from the start", func() {
		a, err := viz.AnimateState(seq, []float64{0, 0.5, 1, 1.5, 2})
		Expect(err).NotTo(HaveOccurred())

		count := func() int {
			n := 0
			for range a.Frames() {
				n++
			}
			return n
		}
		Expect(count()).To(Equal(5))
		Expect(count()).To(Equal(5))
		Expect(a.Frame(3).Title).To(Equal("time: 1.5"))
	})

	It("leaves frames past the time labels untitled", func() {
		a, err := viz.AnimateState(seq, []float64{7})
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Frame(0).Title).To(Equal("time: 7"))
		Expect(a.Frame(1).Title).To(BeEmpty())
	})

	It("restores the active backend", func() {
		Expect(figure.UseBackend("pdf")).To(Succeed())
		DeferCleanup(figure.UseBackend, "png")

		_, err := viz.AnimateState(seq, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(figure.Backend()).To(Equal("pdf"))
	})
})

var _ = Describe("PlotStimuli", func() {
	It("shows nothing and succeeds with no stimuli", func() {
		var buf bytes.Buffer
		Expect(viz.PlotStimuli[physics.Stimulus](&buf, nil)).To(Succeed())
		Expect(buf.Len()).To(BeZero())
	})

	It("titles stimuli by position", func() {
		var buf bytes.Buffer
		s := physics.Rectangular(8, 8, physics.Cell{Row: 4, Col: 4}, 2, 2, 1, physics.Protocol{Duration: 1})
		Expect(viz.PlotStimuli(&buf, []physics.Stimulus{s, s})).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("Stimulus 1"))
	})
})
