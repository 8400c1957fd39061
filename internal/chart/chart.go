// Package chart draws small inline SVG charts for the forecast page.
package chart

import (
	"fmt"
	"html"
	"html/template"
	"strings"
)

const (
	padTop    = 16.0
	padBottom = 18.0
)

// Scale maps values onto pixel heights in [0, height]. The smallest value maps to
// 0 and the largest to height. When all values are equal every bar is drawn at
// half height so a flat series stays visible.
func Scale(values []float64, height float64) []float64 {
	if len(values) == 0 {
		return nil
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	out := make([]float64, len(values))
	for i, v := range values {
		if hi == lo {
			out[i] = height / 2
			continue
		}
		out[i] = (v - lo) / (hi - lo) * height
	}
	return out
}

// scaleFromZero is Scale anchored at zero, used for bars of non-negative quantities
// like precipitation probability.
func scaleFromZero(values []float64, height float64) []float64 {
	out := make([]float64, len(values))
	hi := 0.0
	for _, v := range values {
		if v > hi {
			hi = v
		}
	}
	if hi == 0 {
		return out
	}
	for i, v := range values {
		if v > 0 {
			out[i] = v / hi * height
		}
	}
	return out
}

// Series is the data behind one chart.
type Series struct {
	Labels []string
	Values []float64
	// Format renders a value label above a bar or point. Nil means "%.0f".
	Format func(float64) string
	Class  string
}

func (s Series) format(v float64) string {
	if s.Format != nil {
		return s.Format(v)
	}
	return fmt.Sprintf("%.0f", v)
}

func open(b *strings.Builder, class string, width, height float64) {
	fmt.Fprintf(b, `<svg class="%s" viewBox="0 0 %.0f %.0f" width="100%%" preserveAspectRatio="none" role="img" xmlns="http://www.w3.org/2000/svg">`,
		html.EscapeString(class), width, height)
}

func label(b *strings.Builder, x, y float64, text string) {
	fmt.Fprintf(b, `<text x="%.1f" y="%.1f" text-anchor="middle" font-size="9">%s</text>`, x, y, html.EscapeString(text))
}

// Bars renders a bar chart anchored at zero.
func Bars(s Series, width, height float64) template.HTML {
	n := len(s.Values)
	if n == 0 {
		return ""
	}

	plot := height - padTop - padBottom
	heights := scaleFromZero(s.Values, plot)
	slot := width / float64(n)
	barW := slot * 0.6

	var b strings.Builder
	open(&b, s.Class, width, height)
	for i, h := range heights {
		x := float64(i)*slot + (slot-barW)/2
		y := padTop + plot - h
		fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="2"></rect>`, x, y, barW, h)
		label(&b, x+barW/2, y-3, s.format(s.Values[i]))
		if i < len(s.Labels) {
			label(&b, x+barW/2, height-4, s.Labels[i])
		}
	}
	b.WriteString(`</svg>`)

	// Built only from numbers and escaped strings.
	return template.HTML(b.String())
}

// Line renders a polyline chart scaled between the series min and max.
func Line(s Series, width, height float64) template.HTML {
	n := len(s.Values)
	if n == 0 {
		return ""
	}

	plot := height - padTop - padBottom
	heights := Scale(s.Values, plot)
	step := 0.0
	if n > 1 {
		step = width / float64(n-1)
	}
	xAt := func(i int) float64 {
		if n == 1 {
			return width / 2
		}
		// keep the end points off the edge
		return float64(i)*step*0.9 + width*0.05
	}

	var b strings.Builder
	open(&b, s.Class, width, height)

	points := make([]string, n)
	for i, h := range heights {
		points[i] = fmt.Sprintf("%.1f,%.1f", xAt(i), padTop+plot-h)
	}
	fmt.Fprintf(&b, `<polyline fill="none" stroke="currentColor" stroke-width="2" points="%s"></polyline>`,
		strings.Join(points, " "))

	for i, h := range heights {
		x, y := xAt(i), padTop+plot-h
		fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="2.5"></circle>`, x, y)
		label(&b, x, y-5, s.format(s.Values[i]))
		if i < len(s.Labels) {
			label(&b, x, height-4, s.Labels[i])
		}
	}
	b.WriteString(`</svg>`)

	return template.HTML(b.String())
}
