// Package calendar wraps the go-ical object model behind the read-only view
// the expansion engine consumes: enumerate components by kind, read their
// timing and recurrence properties, and look up the enclosing calendar's
// timezone definitions.
package calendar

import (
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
)

// Calendar is a read-only view over a parsed iCalendar object.
type Calendar struct {
	raw   *ical.Calendar
	comps []*Component
	byUID map[string][]*Component
	tzids []string
}

// Wrap builds a Calendar view over an already-decoded go-ical calendar.
// Components missing a UID are assigned a generated one so that sibling
// grouping stays well-defined.
func Wrap(raw *ical.Calendar) *Calendar {
	cal := &Calendar{
		raw:   raw,
		byUID: make(map[string][]*Component),
	}
	if raw == nil {
		return cal
	}
	for _, child := range raw.Children {
		switch child.Name {
		case ical.CompTimezone:
			if p := child.Props.Get("TZID"); p != nil && p.Value != "" {
				cal.tzids = append(cal.tzids, p.Value)
			}
		case ical.CompEvent, ical.CompToDo, "VJOURNAL", "VFREEBUSY":
			comp := &Component{cal: cal, raw: child}
			if p := child.Props.Get("UID"); p != nil && p.Value != "" {
				comp.uid = p.Value
			} else {
				comp.uid = uuid.New().String()
			}
			cal.comps = append(cal.comps, comp)
			cal.byUID[comp.uid] = append(cal.byUID[comp.uid], comp)
		}
	}
	return cal
}

// Decode parses an iCalendar stream and wraps it.
func Decode(r io.Reader) (*Calendar, error) {
	raw, err := ical.NewDecoder(r).Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode calendar: %w", err)
	}
	return Wrap(raw), nil
}

// Components returns the components whose iCalendar name (VEVENT, VTODO,
// VJOURNAL, VFREEBUSY) matches kind, in document order.
func (c *Calendar) Components(kind string) []*Component {
	var out []*Component
	for _, comp := range c.comps {
		if comp.raw.Name == kind {
			out = append(out, comp)
		}
	}
	return out
}

// All returns every recognised component in document order.
func (c *Calendar) All() []*Component {
	return c.comps
}

// TimezoneIDs returns the TZID of every VTIMEZONE embedded in the calendar,
// in document order.
func (c *Calendar) TimezoneIDs() []string {
	return c.tzids
}

// Raw exposes the underlying go-ical calendar.
func (c *Calendar) Raw() *ical.Calendar {
	return c.raw
}

// splitValues explodes a comma-separated multi-value property into one
// pseudo-property per value, preserving the original parameters.
func splitValues(p ical.Prop) []ical.Prop {
	if !strings.Contains(p.Value, ",") {
		return []ical.Prop{p}
	}
	parts := strings.Split(p.Value, ",")
	out := make([]ical.Prop, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		single := p
		single.Value = part
		out = append(out, single)
	}
	return out
}
