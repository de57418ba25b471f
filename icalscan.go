// Package icalscan expands an iCalendar dataset into a concrete,
// time-ordered list of occurrences inside a half-open window [begin, end).
//
// The scanner walks every requested component of a calendar, derives its
// canonical timing, assembles its recurrence schedule from RRULE, RDATE,
// EXDATE and RECURRENCE-ID overrides, and materialises each instance as an
// immutable Occurrence whose start and end carry the correct zone.
// Problems inside the calendar data (unknown TZIDs, malformed rules,
// unreadable time values) are logged and tolerated; only call-shape errors
// surface.
package icalscan

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/mjheller/icalscan/calendar"
	"github.com/mjheller/icalscan/recurrence"
	"github.com/mjheller/icalscan/timing"
	"github.com/mjheller/icalscan/tz"
)

// Kind selects which component types a scan expands.
type Kind string

const (
	KindEvent    Kind = "VEVENT"
	KindTask     Kind = "VTODO"
	KindJournal  Kind = "VJOURNAL"
	KindFreeBusy Kind = "VFREEBUSY"
)

// ParseKind maps a user-facing kind name to a Kind.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "event", "events", "VEVENT":
		return KindEvent, nil
	case "task", "tasks", "todo", "todos", "VTODO":
		return KindTask, nil
	case "journal", "journals", "VJOURNAL":
		return KindJournal, nil
	case "freebusy", "VFREEBUSY":
		return KindFreeBusy, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, name)
}

// Config holds the scanner knobs.
type Config struct {
	// Provider resolves timezone identifiers; nil means the process
	// zoneinfo database.
	Provider tz.Provider

	// Logger receives data-level warnings; nil means slog.Default().
	Logger *slog.Logger

	// FloatingZeroOffset is copied onto the resolver: true (as in
	// DefaultConfig) reads zero-offset time.Time values not in time.UTC as
	// floating wall clock; false reads them as absolute instants.
	FloatingZeroOffset bool

	// MaxPerComponent caps the occurrences emitted per component.
	MaxPerComponent int
}

// DefaultConfig provides the documented defaults.
var DefaultConfig = Config{
	FloatingZeroOffset: true,
	MaxPerComponent:    recurrence.DefaultMaxPerComponent,
}

// Scanner is the top-level orchestrator. It is stateless between calls;
// concurrent scans over distinct calendars are race-free, and concurrent
// scans sharing a calendar are race-free as long as the calendar is not
// mutated.
type Scanner struct {
	resolver *tz.Resolver
	expander *recurrence.Expander
	logger   *slog.Logger
}

// NewScanner creates a scanner with DefaultConfig.
func NewScanner() *Scanner {
	return NewScannerWithConfig(DefaultConfig)
}

// NewScannerWithConfig creates a scanner with custom configuration.
func NewScannerWithConfig(cfg Config) *Scanner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	resolver := tz.NewResolver(cfg.Provider, logger)
	resolver.FloatingZeroOffset = cfg.FloatingZeroOffset
	return &Scanner{
		resolver: resolver,
		expander: recurrence.NewExpander(logger, cfg.MaxPerComponent),
		logger:   logger,
	}
}

// Resolver exposes the scanner's time resolver, mainly so callers can
// normalise their own values the same way the scan does.
func (s *Scanner) Resolver() *tz.Resolver {
	return s.resolver
}

// Scan expands every component of the requested kinds into the occurrences
// lying inside [begin, end), merged and sorted ascending by (start, end).
// With no kinds given, only events are scanned. An unknown kind fails with
// ErrInvalidKind; an empty or inverted window yields an empty result.
func (s *Scanner) Scan(cal *calendar.Calendar, begin, end time.Time, kinds ...Kind) ([]*Occurrence, error) {
	if len(kinds) == 0 {
		kinds = []Kind{KindEvent}
	}
	for _, kind := range kinds {
		switch kind {
		case KindEvent, KindTask, KindJournal, KindFreeBusy:
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidKind, string(kind))
		}
	}

	out := []*Occurrence{}
	if cal == nil || !begin.Before(end) {
		return out, nil
	}

	for _, kind := range kinds {
		for _, comp := range cal.Components(string(kind)) {
			t := timing.Compute(comp, s.resolver, s.logger)
			sched := recurrence.Build(comp, t, s.resolver)
			for _, span := range s.expander.Expand(sched, begin, end) {
				out = append(out, &Occurrence{
					cal:   cal,
					comp:  comp,
					start: span.Start,
					end:   span.End,
				})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Compare(out[j]) < 0
	})
	return out, nil
}

// Scan runs a one-off scan with the default configuration.
func Scan(cal *calendar.Calendar, begin, end time.Time, kinds ...Kind) ([]*Occurrence, error) {
	return NewScanner().Scan(cal, begin, end, kinds...)
}
