// Package timing derives the canonical (start, end) pair and the
// classification flags of a single component from its DTSTART, DTEND, DUE
// and DURATION properties.
package timing

import (
	"log/slog"
	"time"

	"github.com/emersion/go-ical"

	"github.com/mjheller/icalscan/calendar"
	"github.com/mjheller/icalscan/tz"
)

const day = 24 * time.Hour

// Timing is the canonical timing of one component. Start and End are
// always zoned instants, even for components with no usable time
// properties (those degrade to the epoch in the component zone).
type Timing struct {
	Start time.Time
	End   time.Time
	// Zone is the effective component zone the values were resolved in.
	Zone *time.Location
	// StartIsDate records whether DTSTART was a date-only value.
	StartIsDate bool
	// AllDay is true for events starting on a bare date or spanning exact
	// midnights. Tasks, journals and free-busy blocks are never all-day.
	AllDay bool
	// MultiDay is true when the component ends strictly after the start of
	// the next calendar day of Start, in the start zone.
	MultiDay bool
	// SingleTimestamp is true when Start and End coincide at second
	// precision.
	SingleTimestamp bool
}

// Duration returns End − Start.
func (t Timing) Duration() time.Duration {
	return t.End.Sub(t.Start)
}

// Compute derives the canonical timing for a component.
//
// The start is DTSTART when present, else DUE shifted back by the duration,
// else DUE itself (deadline-only), else the epoch. The end is DUE when
// present, else DTEND, else derived from DTSTART and the duration. A task
// carrying both DUE and DURATION is invalid per RFC 5545 but accepted
// here: DUE wins for the end, and the duration only shifts the start when
// DTSTART is absent.
func Compute(c *calendar.Component, r *tz.Resolver, logger *slog.Logger) Timing {
	if logger == nil {
		logger = slog.Default()
	}
	zone := r.ComponentZone(c)
	dtstart := c.DTStart()
	dtend := c.DTEnd()
	due := c.Due()
	durProp := c.Duration()

	isEvent := c.Kind() == ical.CompEvent
	startIsDate := dtstart != nil && isDateProp(dtstart)

	d, dExplicit := parseDuration(durProp, c.UID(), logger)
	if !dExplicit {
		// One-day guess for a date-only event with no other end hint.
		if isEvent && startIsDate && dtend == nil && due == nil {
			d = day
		}
	}

	var start time.Time
	switch {
	case dtstart != nil:
		start = r.ToInstant(dtstart, zone)
	case due != nil && d > 0:
		start = r.ToInstant(due, zone).Add(-d)
	case due != nil:
		start = r.ToInstant(due, zone)
	default:
		start = r.ToInstant(nil, zone)
	}

	var end time.Time
	switch {
	case due != nil:
		end = r.ToInstant(due, zone)
	case dtend != nil:
		end = r.ToInstant(dtend, zone)
	case dtstart != nil && isEvent && startIsDate:
		// Date-space arithmetic keeps all-day spans stable across DST.
		y, m, dd := start.Date()
		end = time.Date(y, m, dd+int(d/day), 0, 0, 0, 0, zone)
	case dtstart != nil:
		end = start.Add(d)
	default:
		end = r.ToInstant(nil, zone).Add(d)
	}

	t := Timing{
		Start:       start,
		End:         end,
		Zone:        zone,
		StartIsDate: startIsDate,
	}
	t.AllDay = isEvent && (startIsDate || (isMidnight(start) && isMidnight(end)))
	t.MultiDay = end.After(startOfNextDay(start))
	t.SingleTimestamp = start.Unix() == end.Unix()
	return t
}

func parseDuration(p *ical.Prop, uid string, logger *slog.Logger) (time.Duration, bool) {
	if p == nil {
		return 0, false
	}
	d, err := p.Duration()
	if err != nil {
		logger.Warn("dropping malformed DURATION", "uid", uid, "value", p.Value, "error", err)
		return 0, false
	}
	if d < 0 {
		d = -d
	}
	return d, true
}

func isDateProp(p *ical.Prop) bool {
	if p.Params != nil {
		if values := p.Params["VALUE"]; len(values) > 0 && values[0] == "DATE" {
			return true
		}
	}
	v := p.Value
	if len(v) != 8 {
		return false
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isMidnight(t time.Time) bool {
	h, m, s := t.Clock()
	return h == 0 && m == 0 && s == 0
}

func startOfNextDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}
