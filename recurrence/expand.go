package recurrence

import (
	"log/slog"
	"sort"
	"time"

	"github.com/teambition/rrule-go"
)

// DefaultMaxPerComponent caps the occurrences emitted for one component so
// that dense unbounded rules stay tractable inside large windows.
const DefaultMaxPerComponent = 5000

// enumerationSlack widens the wall-clock enumeration bounds so instants
// sitting on a window edge survive the offset between wall fields and the
// absolute window; the precise half-open filter runs afterwards.
const enumerationSlack = 48 * time.Hour

// Span is one materialised (start, end) pair.
type Span struct {
	Start time.Time
	End   time.Time
}

// Expander walks a schedule inside a half-open window [begin, end) and
// produces the materialised spans, ascending by (start, end).
type Expander struct {
	logger          *slog.Logger
	maxPerComponent int
}

// NewExpander creates an expander. A nil logger means slog.Default(); a
// non-positive cap means DefaultMaxPerComponent.
func NewExpander(logger *slog.Logger, maxPerComponent int) *Expander {
	if logger == nil {
		logger = slog.Default()
	}
	if maxPerComponent <= 0 {
		maxPerComponent = DefaultMaxPerComponent
	}
	return &Expander{logger: logger, maxPerComponent: maxPerComponent}
}

// Expand enumerates the schedule inside [begin, end). Rule-generated local
// starts are re-read as wall-clock in the schedule zone per instance, so a
// 09:00 meeting stays at 09:00 local across DST transitions. Instants are
// de-duplicated at second precision, excluded times are dropped at second
// precision, and the result is sorted ascending by (start, end).
func (e *Expander) Expand(s Schedule, begin, end time.Time) []Span {
	if !begin.Before(end) {
		return nil
	}

	excluded := make(map[int64]struct{}, len(s.ExTimes))
	for _, ex := range s.ExTimes {
		excluded[ex.Unix()] = struct{}{}
	}

	starts := make(map[int64]time.Time)
	add := func(inst time.Time) {
		if _, skip := excluded[inst.Unix()]; skip {
			return
		}
		if inst.Before(begin) || !inst.Before(end) {
			return
		}
		if _, dup := starts[inst.Unix()]; dup {
			return
		}
		starts[inst.Unix()] = inst
	}

	for _, rt := range s.RTimes {
		add(rt)
	}

	if !s.OneShot && len(s.Rules) > 0 {
		base := wallClock(s.Start, time.UTC)
		lo := wallClock(begin.In(s.Zone), time.UTC).Add(-enumerationSlack)
		if lo.Before(base) {
			lo = base
		}
		hi := wallClock(end.In(s.Zone), time.UTC).Add(enumerationSlack)
		for _, text := range s.Rules {
			rule, err := rrule.StrToRRule(text)
			if err != nil {
				e.logger.Warn("dropping malformed RRULE", "uid", s.UID, "rrule", text, "error", err)
				continue
			}
			rule.DTStart(base)
			for _, local := range rule.Between(lo, hi, true) {
				add(wallClock(local, s.Zone))
			}
		}
	}

	spans := make([]Span, 0, len(starts))
	for _, st := range starts {
		spans = append(spans, Span{Start: st, End: e.endFor(s, st)})
	}
	sort.Slice(spans, func(i, j int) bool {
		if !spans[i].Start.Equal(spans[j].Start) {
			return spans[i].Start.Before(spans[j].Start)
		}
		return spans[i].End.Before(spans[j].End)
	})
	if len(spans) > e.maxPerComponent {
		e.logger.Warn("truncating occurrences at per-component cap",
			"uid", s.UID, "cap", e.maxPerComponent, "generated", len(spans))
		spans = spans[:e.maxPerComponent]
	}
	return spans
}

// endFor derives the end instant of one generated start. The base instance
// keeps its canonical end, which may sit in a different zone than the
// start. All-day spans move by calendar days; everything else by the
// absolute duration.
func (e *Expander) endFor(s Schedule, start time.Time) time.Time {
	if start.Unix() == s.Start.Unix() {
		return s.End
	}
	if s.AllDay {
		y, m, d := start.Date()
		return time.Date(y, m, d+s.DayDelta, 0, 0, 0, 0, start.Location())
	}
	return start.Add(s.Duration)
}

// wallClock rebuilds t's wall-clock fields in loc.
func wallClock(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	h, mi, sec := t.Clock()
	return time.Date(y, m, d, h, mi, sec, 0, loc)
}
