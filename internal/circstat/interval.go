package circstat

// wrapSegmentEnd is the upper bound used for the pre-midnight segment when an
// interquartile range wraps past the day boundary. The value 23 (not the
// geometric wrap point 24) is the inherited hourly-binning convention of the
// rendered figures; changing it would shift existing plot output.
const wrapSegmentEnd = 23.0

// Segment is a non-wrapping sub-interval of the 0-24 hour axis,
// Start <= End always.
type Segment struct {
	Start float64
	End   float64
}

// PlotInterval expresses an interquartile range as one or two linear segments
// suitable for rendering on a non-periodic 0-24 axis. Second is nil unless
// the range wraps past the 24->0 boundary, so renderers can skip it
// unambiguously.
type PlotInterval struct {
	First  Segment
	Second *Segment
}

// DerivePlotInterval translates a summary's interquartile range into plot
// segments. A non-wrapping range (Q25 <= Q75) yields the single segment
// [Q25, Q75]. A wrapping range yields [0, Q75] and [Q25, 23].
func DerivePlotInterval(s Summary) PlotInterval {
	if s.Q25 <= s.Q75 {
		return PlotInterval{First: Segment{Start: s.Q25, End: s.Q75}}
	}

	end := wrapSegmentEnd
	if s.Q25 > end {
		// Fractional quantiles past hour 23 would invert the segment;
		// collapse it to zero length to keep Start <= End.
		end = s.Q25
	}
	second := Segment{Start: s.Q25, End: end}
	return PlotInterval{
		First:  Segment{Start: 0, End: s.Q75},
		Second: &second,
	}
}
