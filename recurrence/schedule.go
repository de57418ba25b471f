// Package recurrence assembles the combined schedule of a component from
// RRULE, RDATE, EXDATE and sibling RECURRENCE-ID overrides, and enumerates
// its occurrences inside a window.
package recurrence

import (
	"time"

	"github.com/mjheller/icalscan/calendar"
	"github.com/mjheller/icalscan/timing"
	"github.com/mjheller/icalscan/tz"
)

// Schedule describes the logical set of times a component materialises at.
// All instants are zoned; rule texts are kept verbatim for the enumerator.
type Schedule struct {
	UID      string
	Zone     *time.Location
	Start    time.Time
	End      time.Time
	Duration time.Duration

	// AllDay spans advance by calendar days instead of absolute seconds, so
	// a multi-day all-day span keeps its date delta across DST.
	AllDay   bool
	DayDelta int

	Rules  []string
	RTimes []time.Time
	// ExTimes holds EXDATE instants plus the RECURRENCE-ID of every sibling
	// override: the override suppresses the parent's instance and is
	// emitted from its own component instead.
	ExTimes []time.Time

	// OneShot marks a component that is itself an override: its schedule is
	// exactly its own start, never suppressed by its own RECURRENCE-ID.
	OneShot bool
}

// Build assembles the schedule of one component from its canonical timing
// and its recurrence properties.
func Build(c *calendar.Component, t timing.Timing, r *tz.Resolver) Schedule {
	s := Schedule{
		UID:      c.UID(),
		Zone:     t.Zone,
		Start:    t.Start,
		End:      t.End,
		Duration: t.Duration(),
		AllDay:   t.AllDay,
		DayDelta: dayDelta(t.Start, t.End),
	}

	if c.RecurrenceID() != nil {
		s.OneShot = true
		s.RTimes = []time.Time{t.Start}
		return s
	}

	s.Rules = c.RRules()

	// The base start is always the first positive time; rules and RDATEs
	// add to it and the expander de-duplicates.
	s.RTimes = append(s.RTimes, t.Start)
	for _, p := range c.RDates() {
		s.RTimes = append(s.RTimes, r.ToInstant(&p, t.Zone))
	}

	for _, p := range c.ExDates() {
		s.ExTimes = append(s.ExTimes, r.ToInstant(&p, t.Zone))
	}
	for _, sibling := range c.Siblings() {
		if rid := sibling.RecurrenceID(); rid != nil {
			s.ExTimes = append(s.ExTimes, r.ToInstant(rid, t.Zone))
		}
	}
	return s
}

// dayDelta counts whole calendar days between the start and end dates,
// each taken in its own zone.
func dayDelta(start, end time.Time) int {
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	a := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a) / (24 * time.Hour))
}
