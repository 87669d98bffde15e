package clock

import (
	"math"
	"time"
)

// Face holds hand angles in degrees, clockwise from twelve o'clock.
type Face struct {
	Hour   float64 `json:"hour"`
	Minute float64 `json:"minute"`
	Second float64 `json:"second"`
	// Slice is the shaded remaining-time wedge; nil outside a period.
	Slice *Slice `json:"slice,omitempty"`
}

// Slice is a wedge starting at the minute hand and sweeping clockwise to
// where the minute hand will be when the period ends. Sweeps longer than an
// hour are clamped to a full circle.
type Slice struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Sweep float64 `json:"sweep"`
}

// FaceAt computes the face for now. Unlike containment, the slice uses
// minute+second resolution.
func FaceAt(now time.Time, cur Current) Face {
	h, m, s := now.Clock()
	f := Face{
		Hour:   (float64(h%12) + float64(m)/60) * 30,
		Minute: (float64(m) + float64(s)/60) * 6,
		Second: float64(s) * 6,
	}
	if !cur.Active() {
		return f
	}
	_, end, ok := cur.Period.Bounds()
	if !ok {
		return f
	}

	left := end.On(now).Sub(now).Seconds()
	left = math.Max(0, math.Min(left, 3600))
	sweep := left / 3600 * 360
	f.Slice = &Slice{
		Start: f.Minute,
		End:   math.Mod(f.Minute+sweep, 360),
		Sweep: sweep,
	}
	return f
}
