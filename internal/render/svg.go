// Package render draws a clock.Snapshot. It reads nothing but the snapshot
// it is given.
package render

import (
	"bytes"
	"fmt"
	"html"
	"math"

	"classclock/internal/clock"
)

// Face geometry in viewBox units.
const (
	viewBox      = 200
	center       = viewBox / 2
	faceRadius   = 94
	numberRadius = 76
	sliceRadius  = 88
	tickOuter    = 92
)

// Options controls optional decorations.
type Options struct {
	// MinuteMarks draws the 60 minute ticks around the dial.
	MinuteMarks bool
	// Size is the rendered width and height in pixels. Zero means 400.
	Size int
}

// SVG renders the analog face of snap: hour numbers, the remaining-time
// slice and the three hands.
func SVG(snap clock.Snapshot, opts Options) []byte {
	size := opts.Size
	if size <= 0 {
		size = 400
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d" class="clock-face">`,
		viewBox, viewBox, size, size)
	b.WriteByte('\n')
	fmt.Fprintf(&b, `<circle cx="%d" cy="%d" r="%d" fill="#fff" stroke="#222" stroke-width="3"/>`, center, center, faceRadius)
	b.WriteByte('\n')

	if s := snap.Face.Slice; s != nil {
		if d := SlicePath(s.Start, s.Sweep, sliceRadius); d != "" {
			fmt.Fprintf(&b, `<path class="remaining" d="%s" fill="#f4a261" fill-opacity="0.55"/>`, d)
			b.WriteByte('\n')
		}
	}

	if opts.MinuteMarks {
		for i := 0; i < 60; i++ {
			inner := float64(tickOuter - 4)
			width := 1.0
			if i%5 == 0 {
				inner = tickOuter - 8
				width = 2
			}
			x1, y1 := point(float64(i*6), inner)
			x2, y2 := point(float64(i*6), tickOuter)
			fmt.Fprintf(&b, `<line class="minute-tick" x1="%s" y1="%s" x2="%s" y2="%s" stroke="#444" stroke-width="%s"/>`,
				num(x1), num(y1), num(x2), num(y2), num(width))
			b.WriteByte('\n')
		}
	}

	for i := 1; i <= 12; i++ {
		x, y := point(float64(i*30), numberRadius)
		fmt.Fprintf(&b, `<text class="hour-number" x="%s" y="%s" text-anchor="middle" dominant-baseline="central" font-size="14">%d</text>`,
			num(x), num(y), i)
		b.WriteByte('\n')
	}

	hand(&b, "hour-hand", snap.Face.Hour, 48, 5, "#222")
	hand(&b, "minute-hand", snap.Face.Minute, 70, 3, "#222")
	hand(&b, "second-hand", snap.Face.Second, 78, 1, "#d62828")
	fmt.Fprintf(&b, `<circle cx="%d" cy="%d" r="3" fill="#222"/>`, center, center)
	b.WriteByte('\n')

	fmt.Fprintf(&b, `<title>%s</title>`, html.EscapeString(snap.Digital))
	b.WriteString("\n</svg>\n")
	return b.Bytes()
}

func hand(b *bytes.Buffer, class string, angle, length, width float64, color string) {
	x, y := point(angle, length)
	fmt.Fprintf(b, `<line class="%s" x1="%d" y1="%d" x2="%s" y2="%s" stroke="%s" stroke-width="%s" stroke-linecap="round"/>`,
		class, center, center, num(x), num(y), color, num(width))
	b.WriteByte('\n')
}

// SlicePath returns the SVG path of a wedge that starts at angle start
// (degrees clockwise from twelve) and sweeps clockwise. A sweep of 360 or
// more is a full disc; a non-positive sweep yields "".
func SlicePath(start, sweep, radius float64) string {
	if sweep <= 0 {
		return ""
	}
	if sweep >= 360 {
		// Two half arcs; a single arc cannot close on itself.
		x1, y1 := point(start, radius)
		x2, y2 := point(start+180, radius)
		r := num(radius)
		return fmt.Sprintf("M %s %s A %s %s 0 1 1 %s %s A %s %s 0 1 1 %s %s Z",
			num(x1), num(y1), r, r, num(x2), num(y2), r, r, num(x1), num(y1))
	}

	x1, y1 := point(start, radius)
	x2, y2 := point(start+sweep, radius)
	large := 0
	if sweep > 180 {
		large = 1
	}
	r := num(radius)
	return fmt.Sprintf("M %d %d L %s %s A %s %s 0 %d 1 %s %s Z",
		center, center, num(x1), num(y1), r, r, large, num(x2), num(y2))
}

// point converts a clock angle and radius to viewBox coordinates.
func point(angle, radius float64) (float64, float64) {
	rad := angle * math.Pi / 180
	return center + radius*math.Sin(rad), center - radius*math.Cos(rad)
}

func num(f float64) string {
	f = math.Round(f*100) / 100
	if f == 0 {
		f = 0 // no "-0"
	}
	return fmt.Sprintf("%g", f)
}
