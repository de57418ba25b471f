package calendar

import (
	"strings"

	"github.com/emersion/go-ical"
	"github.com/samber/mo"
)

// Component is a read-only view over one VEVENT, VTODO, VJOURNAL or
// VFREEBUSY inside a Calendar.
type Component struct {
	cal *Calendar
	raw *ical.Component
	uid string
}

// Kind returns the iCalendar component name (VEVENT, VTODO, ...).
func (c *Component) Kind() string {
	return c.raw.Name
}

// UID returns the component UID, or the generated fallback if the source
// component carried none.
func (c *Component) UID() string {
	return c.uid
}

// Calendar returns the enclosing calendar.
func (c *Component) Calendar() *Calendar {
	return c.cal
}

// Raw exposes the underlying go-ical component.
func (c *Component) Raw() *ical.Component {
	return c.raw
}

// Prop returns the first property with the given name, or nil.
func (c *Component) Prop(name string) *ical.Prop {
	return c.raw.Props.Get(name)
}

func (c *Component) DTStart() *ical.Prop {
	return c.raw.Props.Get(ical.PropDateTimeStart)
}

func (c *Component) DTEnd() *ical.Prop {
	return c.raw.Props.Get(ical.PropDateTimeEnd)
}

func (c *Component) Due() *ical.Prop {
	return c.raw.Props.Get(ical.PropDue)
}

func (c *Component) Duration() *ical.Prop {
	return c.raw.Props.Get(ical.PropDuration)
}

func (c *Component) RecurrenceID() *ical.Prop {
	return c.raw.Props.Get("RECURRENCE-ID")
}

// RRules returns the textual RFC 5545 rules of every RRULE property,
// trimmed, with any leading "RRULE:" prefix stripped.
func (c *Component) RRules() []string {
	var out []string
	for _, p := range c.raw.Props.Values(ical.PropRecurrenceRule) {
		v := strings.TrimSpace(p.Value)
		v = strings.TrimPrefix(v, "RRULE:")
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// RDates returns one property per RDATE value, comma lists exploded.
func (c *Component) RDates() []ical.Prop {
	return c.timeListProps(ical.PropRecurrenceDates)
}

// ExDates returns one property per EXDATE value, comma lists exploded.
func (c *Component) ExDates() []ical.Prop {
	return c.timeListProps(ical.PropExceptionDates)
}

func (c *Component) timeListProps(name string) []ical.Prop {
	var out []ical.Prop
	for _, p := range c.raw.Props.Values(name) {
		out = append(out, splitValues(p)...)
	}
	return out
}

// Siblings returns the other components of the calendar sharing this
// component's UID. Overrides of a recurring component show up here.
func (c *Component) Siblings() []*Component {
	group := c.cal.byUID[c.uid]
	if len(group) <= 1 {
		return nil
	}
	out := make([]*Component, 0, len(group)-1)
	for _, other := range group {
		if other != c {
			out = append(out, other)
		}
	}
	return out
}

// Text returns the value of the first property with the given name.
// Absent single-valued properties read as None.
func (c *Component) Text(name string) mo.Option[string] {
	p := c.raw.Props.Get(strings.ToUpper(name))
	if p == nil {
		return mo.None[string]()
	}
	return mo.Some(p.Value)
}

// TextList returns every value of a multi-valued property, comma lists
// exploded. Absent properties read as an empty list.
func (c *Component) TextList(name string) []string {
	out := []string{}
	for _, p := range c.raw.Props.Values(strings.ToUpper(name)) {
		for _, single := range splitValues(p) {
			out = append(out, single.Value)
		}
	}
	return out
}
