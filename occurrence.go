package icalscan

import (
	"fmt"
	"time"

	"github.com/samber/mo"

	"github.com/mjheller/icalscan/calendar"
)

// Occurrence is one materialised instance of a component: the base
// component plus this instance's zoned (start, end) pair. It is immutable
// and holds shared references to its base component and calendar; every
// read other than the timing pair is forwarded to the base component.
//
// Occurrences are ordered by (start, end).
type Occurrence struct {
	cal   *calendar.Calendar
	comp  *calendar.Component
	start time.Time
	end   time.Time
}

// NewOccurrence builds an occurrence over a base component. The component
// must be non-nil; the calendar reference may be nil.
func NewOccurrence(cal *calendar.Calendar, comp *calendar.Component, start, end time.Time) (*Occurrence, error) {
	if comp == nil {
		return nil, fmt.Errorf("icalscan: occurrence requires a base component")
	}
	if end.Before(start) {
		return nil, fmt.Errorf("icalscan: occurrence end %v precedes start %v", end, start)
	}
	return &Occurrence{cal: cal, comp: comp, start: start, end: end}, nil
}

// Start returns the zoned start instant of this instance.
func (o *Occurrence) Start() time.Time { return o.start }

// End returns the zoned end instant of this instance.
func (o *Occurrence) End() time.Time { return o.end }

// Component returns the base component this instance was generated from.
func (o *Occurrence) Component() *calendar.Component { return o.comp }

// Calendar returns the enclosing calendar, or nil.
func (o *Occurrence) Calendar() *calendar.Calendar { return o.cal }

// UID forwards to the base component.
func (o *Occurrence) UID() string { return o.comp.UID() }

func (o *Occurrence) Summary() mo.Option[string]     { return o.comp.Text("SUMMARY") }
func (o *Occurrence) Description() mo.Option[string] { return o.comp.Text("DESCRIPTION") }
func (o *Occurrence) Location() mo.Option[string]    { return o.comp.Text("LOCATION") }
func (o *Occurrence) Status() mo.Option[string]      { return o.comp.Text("STATUS") }
func (o *Occurrence) Organizer() mo.Option[string]   { return o.comp.Text("ORGANIZER") }
func (o *Occurrence) URL() mo.Option[string]         { return o.comp.Text("URL") }
func (o *Occurrence) Class() mo.Option[string]       { return o.comp.Text("CLASS") }
func (o *Occurrence) Contact() mo.Option[string]     { return o.comp.Text("CONTACT") }

// Categories forwards to the base component; absent reads as empty.
func (o *Occurrence) Categories() []string { return o.comp.TextList("CATEGORIES") }

// Attendees forwards to the base component; absent reads as empty.
func (o *Occurrence) Attendees() []string { return o.comp.TextList("ATTENDEE") }

// Property reads any named property of the base component, covering x-
// extensions the closed accessors above do not.
func (o *Occurrence) Property(name string) mo.Option[string] {
	return o.comp.Text(name)
}

// Properties reads every value of a multi-valued property of the base
// component.
func (o *Occurrence) Properties(name string) []string {
	return o.comp.TextList(name)
}

// SetProperty always fails: occurrences are read-only views.
func (o *Occurrence) SetProperty(name, value string) error {
	return fmt.Errorf("%w: cannot set %q", ErrUnsupportedWrite, name)
}

// Compare orders two occurrences by (start, end) at second precision.
func (o *Occurrence) Compare(other *Occurrence) int {
	switch {
	case o.start.Unix() < other.start.Unix():
		return -1
	case o.start.Unix() > other.start.Unix():
		return 1
	case o.end.Unix() < other.end.Unix():
		return -1
	case o.end.Unix() > other.end.Unix():
		return 1
	}
	return 0
}

// Before reports whether o sorts strictly before other.
func (o *Occurrence) Before(other *Occurrence) bool {
	return o.Compare(other) < 0
}

// Equal reports whether both occurrences share the same (start, end) key.
func (o *Occurrence) Equal(other *Occurrence) bool {
	return other != nil && o.Compare(other) == 0
}
