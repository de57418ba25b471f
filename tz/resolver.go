package tz

import (
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/mjheller/icalscan/calendar"
)

const (
	layoutDateTimeUTC = "20060102T150405Z"
	layoutDateTime    = "20060102T150405"
	layoutDate        = "20060102"
)

// Resolver turns time-shaped values into zoned instants and infers the
// effective timezone of a component. It never returns an error: unusable
// inputs degrade to the UNIX epoch projected into the target zone, and
// unknown zone names degrade to UTC with a warning.
type Resolver struct {
	provider Provider
	logger   *slog.Logger

	// FloatingZeroOffset controls how a bare time.Time with a zero offset
	// and a location other than the distinguished UTC is interpreted: true
	// (the default) treats it as floating wall-clock to be re-read in the
	// target zone; false treats it as an absolute UTC instant. Common
	// encoders emit offset zero when they mean wall clock, hence the
	// default.
	FloatingZeroOffset bool
}

// NewResolver creates a resolver over the given provider. A nil provider
// means StdProvider; a nil logger means slog.Default().
func NewResolver(provider Provider, logger *slog.Logger) *Resolver {
	if provider == nil {
		provider = StdProvider{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		provider:           provider,
		logger:             logger,
		FloatingZeroOffset: true,
	}
}

// Provider returns the zone provider the resolver was built with.
func (r *Resolver) Provider() Provider {
	return r.provider
}

// EnsureZone resolves a zone name, falling back to UTC with a warning when
// the name is unknown. It never returns nil.
func (r *Resolver) EnsureZone(name string) *time.Location {
	name = strings.TrimSpace(name)
	if name == "" || name == "UTC" {
		return r.provider.UTC()
	}
	loc, err := r.provider.Load(name)
	if err != nil {
		r.logger.Warn("unknown timezone, falling back to UTC", "tzid", name, "error", err)
		return r.provider.UTC()
	}
	return loc
}

// ToInstant normalises a time-shaped value to an instant, applying the
// resolution rules in priority order:
//
//  1. An iCalendar value carrying an explicit TZID parameter is read as
//     wall-clock in that zone.
//  2. An already-zoned input keeps its absolute instant; it is converted
//     to target only when the zones differ.
//  3. A floating date-time is read as wall-clock in the target zone.
//  4. A date becomes midnight in the target zone.
//  5. An integer is seconds since the UNIX epoch, projected into target.
//  6. Anything else degrades to the epoch projected into target.
//
// Accepted shapes: *ical.Prop (DATE or DATE-TIME), time.Time, iCalendar or
// RFC 3339 text, and integer UNIX seconds.
func (r *Resolver) ToInstant(v any, target *time.Location) time.Time {
	if target == nil {
		target = r.provider.UTC()
	}
	switch val := v.(type) {
	case *ical.Prop:
		if val == nil {
			break
		}
		return r.propToInstant(val, target)
	case ical.Prop:
		return r.propToInstant(&val, target)
	case time.Time:
		return r.timeToInstant(val, target)
	case string:
		return r.textToInstant(val, "", target)
	case int:
		return time.Unix(int64(val), 0).In(target)
	case int64:
		return time.Unix(val, 0).In(target)
	}
	return r.epoch(target)
}

func (r *Resolver) propToInstant(p *ical.Prop, target *time.Location) time.Time {
	value := strings.TrimSpace(p.Value)
	if tzid := TZIDParam(p); tzid != "" {
		loc := r.EnsureZone(tzid)
		if t, err := time.ParseInLocation(layoutDateTime, value, loc); err == nil {
			return t
		}
		if t, err := time.ParseInLocation(layoutDate, value, loc); err == nil {
			return t
		}
		// A TZID combined with a Z suffix is contradictory; the zone
		// parameter wins over the UTC marker.
		if t, err := time.Parse(layoutDateTimeUTC, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
		}
		r.logger.Warn("unreadable time value, degrading to epoch", "value", p.Value)
		return r.epoch(target)
	}
	return r.textToInstant(value, paramValue(p), target)
}

func (r *Resolver) timeToInstant(t time.Time, target *time.Location) time.Time {
	_, offset := t.Zone()
	if offset == 0 && t.Location() != time.UTC && r.FloatingZeroOffset {
		// Offset zero without the distinguished UTC location reads as
		// floating wall-clock in the target zone.
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, target)
	}
	if t.Location() == target {
		return t
	}
	return t.In(target)
}

func (r *Resolver) textToInstant(value, valueType string, target *time.Location) time.Time {
	value = strings.TrimSpace(value)
	if valueType == "DATE" {
		if t, err := time.ParseInLocation(layoutDate, value, target); err == nil {
			return t
		}
	}
	if t, err := time.Parse(layoutDateTimeUTC, value); err == nil {
		if target == time.UTC || target == r.provider.UTC() {
			return t
		}
		return t.In(target)
	}
	if t, err := time.ParseInLocation(layoutDateTime, value, target); err == nil {
		return t
	}
	if t, err := time.ParseInLocation(layoutDate, value, target); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return r.timeToInstant(t, target)
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", value, target); err == nil {
		return t
	}
	if t, err := time.ParseInLocation("2006-01-02", value, target); err == nil {
		return t
	}
	r.logger.Warn("unreadable time value, degrading to epoch", "value", value)
	return r.epoch(target)
}

func (r *Resolver) epoch(target *time.Location) time.Time {
	return time.Unix(0, 0).In(target)
}

// ComponentZone determines the effective timezone of a component, first
// match wins: an explicit TZID on DTEND, DTSTART or DUE; a UTC-marked
// value on one of the three; the first resolvable TZID advertised by a
// VTIMEZONE of the enclosing calendar; the detected system zone; UTC.
func (r *Resolver) ComponentZone(c *calendar.Component) *time.Location {
	props := []*ical.Prop{c.DTEnd(), c.DTStart(), c.Due()}
	for _, p := range props {
		if p == nil {
			continue
		}
		if tzid := TZIDParam(p); tzid != "" {
			return r.EnsureZone(tzid)
		}
	}
	for _, p := range props {
		if p == nil {
			continue
		}
		if strings.HasSuffix(strings.TrimSpace(p.Value), "Z") {
			return r.provider.UTC()
		}
	}
	if cal := c.Calendar(); cal != nil {
		for _, tzid := range cal.TimezoneIDs() {
			if loc, err := r.provider.Load(tzid); err == nil {
				return loc
			}
		}
	}
	return SystemZone(r.provider)
}

// TZIDParam extracts the TZID parameter of a property: quotes stripped,
// multi-valued parameters flattened to their first element.
func TZIDParam(p *ical.Prop) string {
	if p == nil || p.Params == nil {
		return ""
	}
	values := p.Params["TZID"]
	if len(values) == 0 {
		return ""
	}
	first := values[0]
	if idx := strings.Index(first, ","); idx >= 0 {
		first = first[:idx]
	}
	return strings.Trim(strings.TrimSpace(first), `"`)
}

func paramValue(p *ical.Prop) string {
	if p == nil || p.Params == nil {
		return ""
	}
	values := p.Params["VALUE"]
	if len(values) == 0 {
		return ""
	}
	return strings.ToUpper(values[0])
}
