package figure

import (
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/plot/vg"
)

type staticTerm string

func (s staticTerm) RenderTerm(cols, rows int) string { return string(s) }

func titled(title string) *Panel {
	p := NewPlot()
	p.Title.Text = title
	return &Panel{Plot: p}
}

func TestWithBackendRestores(t *testing.T) {
	if err := UseBackend("svg"); err != nil {
		t.Fatal(err)
	}
	defer UseBackend("png")

	var inside string
	err := WithBackend("png", func() error {
		inside = Backend()
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if inside != "png" {
		t.Errorf("backend inside = %q, want png", inside)
	}
	if got := Backend(); got != "svg" {
		t.Errorf("backend after = %q, want svg", got)
	}

	boom := errors.New("boom")
	if err := WithBackend("pdf", func() error { return boom }); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
	if got := Backend(); got != "svg" {
		t.Errorf("backend after failure = %q, want svg", got)
	}
}

func TestUseBackendUnknown(t *testing.T) {
	if err := UseBackend("nbagg"); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("err = %v, want ErrUnknownBackend", err)
	}
	if got := Backend(); got != "png" {
		t.Errorf("backend = %q, want png", got)
	}
}

func TestSetFontSize(t *testing.T) {
	defer SetFontSize(DefaultFontSize)

	SetFontSize(14)
	p := NewPlot()
	if p.Title.TextStyle.Font.Size != vg.Points(14) {
		t.Errorf("title size = %v, want 14pt", p.Title.TextStyle.Font.Size)
	}
	if p.X.Tick.Label.Font.Size != vg.Points(14) {
		t.Errorf("tick size = %v, want 14pt", p.X.Tick.Label.Font.Size)
	}

	SetFontSize(-1)
	if FontSize() != DefaultFontSize {
		t.Errorf("size = %v, want default", FontSize())
	}
}

func TestColorMap(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"RdBu", false},
		{"magma", false},
		{"Viridis", false},
		{"jet", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cm, err := ColorMap(tt.name, -85, 15)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownColorMap) {
					t.Errorf("err = %v, want ErrUnknownColorMap", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if cm.Min() != -85 || cm.Max() != 15 {
				t.Errorf("range = [%v, %v], want [-85, 15]", cm.Min(), cm.Max())
			}
		})
	}
}

func TestColorMapNamesAllResolve(t *testing.T) {
	for _, name := range ColorMapNames() {
		cm, err := ColorMap(name, 0, 1)
		if err != nil {
			t.Errorf("ColorMap(%q): %v", name, err)
			continue
		}
		if _, err := cm.At(0.5); err != nil {
			t.Errorf("ColorMap(%q).At(0.5): %v", name, err)
		}
	}
}

func TestColorMapEmptyRange(t *testing.T) {
	cm, err := ColorMap("magma", 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if cm.Max() <= cm.Min() {
		t.Errorf("range = [%v, %v], want widened", cm.Min(), cm.Max())
	}
}

func TestRdBuIsReversed(t *testing.T) {
	rdbu, _ := ColorMap("RdBu", 0, 1)
	burd, _ := ColorMap("BuRd", 0, 1)

	lo, err := rdbu.At(0)
	if err != nil {
		t.Fatal(err)
	}
	hi, err := burd.At(1)
	if err != nil {
		t.Fatal(err)
	}
	r1, g1, b1, _ := lo.RGBA()
	r2, g2, b2, _ := hi.RGBA()
	if r1 != r2 || g1 != g2 || b1 != b2 {
		t.Errorf("RdBu(0) = %v, want BuRd(1) = %v", lo, hi)
	}
	if r1 < b1 {
		t.Errorf("RdBu low end should be red, got %v", lo)
	}
}

func TestCentimeterTicks(t *testing.T) {
	for _, tick := range CentimeterTicks().Ticks(0, 200) {
		if tick.IsMinor() {
			continue
		}
		if want := FormatCentimeters(tick.Value); tick.Label != want {
			t.Errorf("tick %v label = %q, want %q", tick.Value, tick.Label, want)
		}
	}
	if got := FormatCentimeters(150); got != "1.5" {
		t.Errorf("FormatCentimeters(150) = %q, want 1.5", got)
	}
}

func TestActive(t *testing.T) {
	f := New(2, 3, 6*vg.Inch, 4*vg.Inch)
	if len(f.Panels) != 6 {
		t.Fatalf("panels = %d, want 6", len(f.Panels))
	}
	f.Set(0, titled("a"))
	f.Set(4, titled("b"))

	active := f.Active()
	if len(active) != 2 {
		t.Fatalf("active = %d, want 2", len(active))
	}
	if active[1] != f.At(1, 1) {
		t.Error("At(1, 1) should be the second active panel")
	}
}

func TestSave(t *testing.T) {
	f := New(1, 2, 4*vg.Inch, 2*vg.Inch)
	f.Title = "test"
	f.Set(0, titled("u"))
	f.Set(1, titled("v"))

	dir := t.TempDir()
	path, err := f.Save(filepath.Join(dir, "fig.png"))
	if err != nil {
		t.Fatal(err)
	}
	in, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()
	img, err := png.Decode(in)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		t.Error("empty image")
	}
}

func TestSaveUsesBackend(t *testing.T) {
	f := New(1, 1, 2*vg.Inch, 2*vg.Inch)
	f.Set(0, titled("u"))
	dir := t.TempDir()

	err := WithBackend("svg", func() error {
		path, err := f.Save(filepath.Join(dir, "fig"))
		if err != nil {
			return err
		}
		if !strings.HasSuffix(path, ".svg") {
			t.Errorf("path = %q, want .svg", path)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	err = WithBackend("term", func() error {
		_, err := f.Save(filepath.Join(dir, "fig"))
		return err
	})
	if !errors.Is(err, ErrNotSavable) {
		t.Errorf("err = %v, want ErrNotSavable", err)
	}
}

func TestTermString(t *testing.T) {
	f := New(1, 2, 4*vg.Inch, 2*vg.Inch)
	f.Title = "time: 3"
	a := titled("u")
	a.Term = staticTerm("AAAA")
	f.Set(0, a)
	f.Set(1, titled("v"))

	out := f.TermString()
	for _, want := range []string{"time: 3", "u", "v", "AAAA"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
