package report

import (
	"fmt"
	"strings"

	"discscore/domain/samplesize"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// segmentColors maps schematic color tags to CSS colors
var segmentColors = map[string]string{
	"g":           "#2e8b2e",
	"yellowgreen": "yellowgreen",
	"yellow":      "#f2d600",
	"orange":      "orange",
	"r":           "#d62728",
}

// DualMarkdown describes a dual-threshold result and its bands
func DualMarkdown(b samplesize.Bands) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %d samples\n\n", b.Samples)
	fmt.Fprintf(&sb, "Raters are classified green below **%.2f** and red above **%.2f**. ", b.GreenThreshold, b.RedThreshold)
	fmt.Fprintf(&sb, "The guarantee applies at distance **%.2f** from each threshold with target confidence **%.2f**.\n\n", b.Accuracy, b.Confidence)

	sb.WriteString("| Zone | From | To | Confidence guarantee |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, s := range b.Segments {
		guarantee := "-"
		switch s.Name {
		case "green_guaranteed":
			guarantee = fmt.Sprintf("%.5f", b.GreenConfidence)
		case "red_guaranteed":
			guarantee = fmt.Sprintf("%.5f", b.RedConfidence)
		}
		fmt.Fprintf(&sb, "| %s | %.2f | %.2f | %s |\n", zoneTitle(s.Name), s.Left, s.Right, guarantee)
	}
	return sb.String()
}

// DualHTML renders the markdown report followed by the band strip
func DualHTML(b samplesize.Bands) []byte {
	body := ToHTML(DualMarkdown(b))
	return append(body, []byte(BandsSVG(b, 800, 60))...)
}

// ToHTML converts markdown to an HTML fragment
func ToHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(md), p, renderer)
}

// BandsSVG draws the five segments as a horizontal strip with dashed
// threshold markers and tick labels
func BandsSVG(b samplesize.Bands, width, height int) string {
	var sb strings.Builder
	barHeight := height * 2 / 3
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, width, height, width, height)
	for _, s := range b.Segments {
		x := s.Left * float64(width)
		w := s.Width() * float64(width)
		fmt.Fprintf(&sb, `<rect x="%.2f" y="0" width="%.2f" height="%d" fill="%s"/>`, x, w, barHeight, segmentColors[s.Color])
	}
	for _, t := range []float64{b.GreenThreshold, b.RedThreshold} {
		x := t * float64(width)
		fmt.Fprintf(&sb, `<line x1="%.2f" y1="0" x2="%.2f" y2="%d" stroke="black" stroke-dasharray="4 3"/>`, x, x, barHeight)
	}
	for _, t := range b.Ticks {
		fmt.Fprintf(&sb, `<text x="%.2f" y="%d" font-size="11" text-anchor="middle">%.2f</text>`, t*float64(width), height-4, t)
	}
	sb.WriteString(`</svg>`)
	return sb.String()
}

func zoneTitle(name string) string {
	switch name {
	case "green_guaranteed":
		return "Green (guaranteed)"
	case "green":
		return "Green"
	case "mid":
		return "Yellow"
	case "red":
		return "Red"
	case "red_guaranteed":
		return "Red (guaranteed)"
	default:
		return name
	}
}
