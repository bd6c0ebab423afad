package samplesize

import "math"

// Segment is one colored stretch of the discrepancy axis
type Segment struct {
	Name  string  `json:"name"`
	Color string  `json:"color"`
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}

// Bands is the threshold schematic for a dual-threshold result: where the
// confidence guarantee applies, where it does not, and the mid band.
type Bands struct {
	Samples         int       `json:"samples"`
	GreenThreshold  float64   `json:"t_green"`
	RedThreshold    float64   `json:"t_red"`
	Accuracy        float64   `json:"accuracy"`
	Confidence      float64   `json:"confidence"`
	GreenConfidence float64   `json:"green_confidence"`
	RedConfidence   float64   `json:"red_confidence"`
	Segments        []Segment `json:"segments"`
	Ticks           []float64 `json:"ticks"`
}

// NewBands lays out the five schematic segments for q solved at res
func NewBands(q DualQuery, res Result) Bands {
	g, r, a := q.GreenThreshold, q.RedThreshold, q.Accuracy
	return Bands{
		Samples:         res.N,
		GreenThreshold:  g,
		RedThreshold:    r,
		Accuracy:        a,
		Confidence:      q.Confidence,
		GreenConfidence: round(res.PGreen, 5),
		RedConfidence:   round(res.PRed, 5),
		Segments: []Segment{
			{Name: "green_guaranteed", Color: "g", Left: 0, Right: g - a},
			{Name: "green", Color: "yellowgreen", Left: g - a, Right: g},
			{Name: "mid", Color: "yellow", Left: g, Right: r},
			{Name: "red", Color: "orange", Left: r, Right: r + a},
			{Name: "red_guaranteed", Color: "r", Left: r + a, Right: 1},
		},
		Ticks: []float64{0, round(g-a, 2), round(g, 2), round(r, 2), round(r+a, 2), 1},
	}
}

// Width returns the length of the segment on the axis
func (s Segment) Width() float64 {
	return s.Right - s.Left
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
