package neo

import (
	"math"
	"time"

	"github.com/Sternrassler/nasa-explorer-client/pkg/nasa"
)

// MaxSpanDays is the longest window the feed endpoint accepts.
const MaxSpanDays = 7

// Validation messages shown next to the date inputs.
const (
	WarningSpanTooLong = "Date range cannot exceed 7 days due to NASA API limitations. Please select a shorter range."
	WarningStartAfter  = "Start date must be before end date."
)

const day = 24 * time.Hour

// DateRange is the feed window selected by a user. Editing one bound
// clamps the other so the span never exceeds MaxSpanDays.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// DefaultDateRange returns the window from 7 days before now to now.
func DefaultDateRange(now time.Time) DateRange {
	end := Day(now)
	return DateRange{
		Start: end.AddDate(0, 0, -MaxSpanDays),
		End:   end,
	}
}

// ParseDateRange builds a range from YYYY-MM-DD strings without clamping.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := nasa.ParseDate(start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := nasa.ParseDate(end)
	if err != nil {
		return DateRange{}, err
	}
	return DateRange{Start: s, End: e}, nil
}

// SetStart moves the start bound. When the span would exceed MaxSpanDays
// the end bound is moved to start + MaxSpanDays.
func (r *DateRange) SetStart(start time.Time) {
	r.Start = Day(start)
	if SpanDays(r.Start, r.End) > MaxSpanDays {
		r.End = r.Start.AddDate(0, 0, MaxSpanDays)
	}
}

// SetEnd moves the end bound. When the span would exceed MaxSpanDays the
// start bound is moved to end - MaxSpanDays.
func (r *DateRange) SetEnd(end time.Time) {
	r.End = Day(end)
	if SpanDays(r.Start, r.End) > MaxSpanDays {
		r.Start = r.End.AddDate(0, 0, -MaxSpanDays)
	}
}

// Set changes both bounds. Start is applied first, so on conflict the end
// bound wins.
func (r *DateRange) Set(start, end time.Time) {
	r.SetStart(start)
	r.SetEnd(end)
}

// Warning returns the validation message for the range, or "" when valid.
func (r DateRange) Warning() string {
	switch {
	case SpanDays(r.Start, r.End) > MaxSpanDays:
		return WarningSpanTooLong
	case r.Start.After(r.End):
		return WarningStartAfter
	default:
		return ""
	}
}

// Valid reports whether the range may be requested.
func (r DateRange) Valid() bool {
	return r.Warning() == ""
}

// Params renders the range as feed parameters.
func (r DateRange) Params() nasa.NEOParams {
	return nasa.NEOParams{
		StartDate: nasa.FormatDate(r.Start),
		EndDate:   nasa.FormatDate(r.End),
	}
}

// SpanDays is the absolute distance between a and b in whole days,
// rounded up.
func SpanDays(a, b time.Time) int {
	diff := b.Sub(a)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(float64(diff) / float64(day)))
}

// Day returns midnight UTC of the calendar date of t.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
