package layout

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary is min/max/mean/stddev of one feature.
type Summary struct {
	Min, Max, Mean, StdDev float64
}

func summarize(xs []float64) Summary {
	if len(xs) == 0 {
		return Summary{}
	}
	mean, std := stat.MeanStdDev(xs, nil)
	return Summary{Min: floats.Min(xs), Max: floats.Max(xs), Mean: mean, StdDev: std}
}

// Stats describes a loaded tree for the coords command.
type Stats struct {
	Count      int
	Bounds     Bounds
	Height     Summary
	Radius     Summary
	Angle      Summary
	Duplicates int     // LEDs sharing an exact position with a lower index
	MeanGap    float64 // mean distance to the nearest other LED
}

func (t *Tree) Stats() Stats {
	s := Stats{
		Count:  t.Len(),
		Bounds: t.bounds,
		Height: summarize(t.heights),
		Radius: summarize(t.radii),
		Angle:  summarize(t.angles),
	}
	if t.Len() < 2 {
		return s
	}
	gaps := make([]float64, 0, t.Len())
	for i, p := range t.pos {
		near := t.Nearest(p, 2)
		for _, j := range near {
			if j == i {
				continue
			}
			d := p.Sub(t.pos[j]).Norm()
			gaps = append(gaps, d)
			if d == 0 && j < i {
				s.Duplicates++
			}
			break
		}
	}
	s.MeanGap = stat.Mean(gaps, nil)
	return s
}
