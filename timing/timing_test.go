package timing

import (
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjheller/icalscan/calendar"
	"github.com/mjheller/icalscan/tz"
)

func wrapComponent(t *testing.T, kind string, props map[string]ical.Prop) *calendar.Component {
	t.Helper()
	comp := ical.NewComponent(kind)
	comp.Props.SetText("UID", "timing-test")
	for name, p := range props {
		p.Name = name
		comp.Props[name] = []ical.Prop{p}
	}
	cal := ical.NewCalendar()
	cal.Children = append(cal.Children, comp)
	comps := calendar.Wrap(cal).All()
	require.Len(t, comps, 1)
	return comps[0]
}

func berlinProp(value string) ical.Prop {
	return ical.Prop{Params: ical.Params{"TZID": []string{"Europe/Berlin"}}, Value: value}
}

func TestCompute_EventWithStartAndEnd(t *testing.T) {
	r := tz.NewResolver(nil, nil)
	comp := wrapComponent(t, ical.CompEvent, map[string]ical.Prop{
		"DTSTART": berlinProp("20180423T083000"),
		"DTEND":   berlinProp("20180423T170000"),
	})

	got := Compute(comp, r, nil)
	berlin, _ := time.LoadLocation("Europe/Berlin")
	assert.True(t, got.Start.Equal(time.Date(2018, 4, 23, 8, 30, 0, 0, berlin)))
	assert.True(t, got.End.Equal(time.Date(2018, 4, 23, 17, 0, 0, 0, berlin)))
	assert.Equal(t, 8*time.Hour+30*time.Minute, got.Duration())
	assert.False(t, got.AllDay)
	assert.False(t, got.MultiDay)
	assert.False(t, got.SingleTimestamp)
}

func TestCompute_DateOnlyEventGuessesOneDay(t *testing.T) {
	t.Setenv("TZ", "Europe/Berlin")
	r := tz.NewResolver(nil, nil)
	comp := wrapComponent(t, ical.CompEvent, map[string]ical.Prop{
		"DTSTART": {Params: ical.Params{"VALUE": []string{"DATE"}}, Value: "20180704"},
	})

	got := Compute(comp, r, nil)
	berlin, _ := time.LoadLocation("Europe/Berlin")
	assert.True(t, got.Start.Equal(time.Date(2018, 7, 4, 0, 0, 0, 0, berlin)))
	assert.True(t, got.End.Equal(time.Date(2018, 7, 5, 0, 0, 0, 0, berlin)))
	assert.True(t, got.AllDay)
	assert.True(t, got.StartIsDate)
	assert.False(t, got.MultiDay, "a one-day span ends exactly at the next midnight")
}

func TestCompute_DateOnlyEventWithExplicitDuration(t *testing.T) {
	t.Setenv("TZ", "UTC")
	r := tz.NewResolver(nil, nil)
	comp := wrapComponent(t, ical.CompEvent, map[string]ical.Prop{
		"DTSTART":  {Params: ical.Params{"VALUE": []string{"DATE"}}, Value: "20180704"},
		"DURATION": {Value: "P3D"},
	})

	got := Compute(comp, r, nil)
	assert.True(t, got.End.Equal(time.Date(2018, 7, 7, 0, 0, 0, 0, time.UTC)))
	assert.True(t, got.AllDay)
	assert.True(t, got.MultiDay)
}

func TestCompute_TaskDueOnly(t *testing.T) {
	r := tz.NewResolver(nil, nil)
	comp := wrapComponent(t, ical.CompToDo, map[string]ical.Prop{
		"DUE": {Value: "20240301T120000Z"},
	})

	got := Compute(comp, r, nil)
	want := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.True(t, got.Start.Equal(want))
	assert.True(t, got.End.Equal(want))
	assert.True(t, got.SingleTimestamp)
	assert.False(t, got.AllDay, "tasks are never all-day")
}

func TestCompute_TaskDueWithDuration(t *testing.T) {
	r := tz.NewResolver(nil, nil)
	comp := wrapComponent(t, ical.CompToDo, map[string]ical.Prop{
		"DUE":      berlinProp("20180325T040000"),
		"DURATION": {Value: "PT2H"},
	})

	got := Compute(comp, r, nil)
	berlin, _ := time.LoadLocation("Europe/Berlin")
	due := time.Date(2018, 3, 25, 4, 0, 0, 0, berlin)
	assert.True(t, got.End.Equal(due))
	// 2018-03-25 is the Berlin spring-forward night; the two hours are
	// absolute, so the start lands at 01:00 CET and the wall-clock span
	// to 04:00 CEST reads as three hours.
	assert.True(t, got.Start.Equal(due.Add(-2*time.Hour)))
	assert.Equal(t, 2*time.Hour, got.Duration())
}

func TestCompute_TaskDueBeatsDurationWhenStartPresent(t *testing.T) {
	r := tz.NewResolver(nil, nil)
	comp := wrapComponent(t, ical.CompToDo, map[string]ical.Prop{
		"DTSTART":  {Value: "20240301T080000Z"},
		"DUE":      {Value: "20240301T120000Z"},
		"DURATION": {Value: "PT1H"},
	})

	got := Compute(comp, r, nil)
	assert.True(t, got.Start.Equal(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)))
	assert.True(t, got.End.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)),
		"DUE wins over DURATION")
}

func TestCompute_NoStartNoDue(t *testing.T) {
	t.Setenv("TZ", "UTC")
	r := tz.NewResolver(nil, nil)
	comp := wrapComponent(t, ical.CompEvent, nil)

	got := Compute(comp, r, nil)
	assert.Equal(t, int64(0), got.Start.Unix())
	assert.Equal(t, int64(0), got.End.Unix())
	assert.True(t, got.SingleTimestamp)
}

func TestCompute_MalformedDurationIsDropped(t *testing.T) {
	r := tz.NewResolver(nil, nil)
	comp := wrapComponent(t, ical.CompEvent, map[string]ical.Prop{
		"DTSTART":  {Value: "20240301T080000Z"},
		"DURATION": {Value: "NOT-A-DURATION"},
	})

	got := Compute(comp, r, nil)
	assert.True(t, got.End.Equal(got.Start), "unparsable duration behaves as absent")
}

func TestCompute_MidnightSpanEventIsAllDay(t *testing.T) {
	r := tz.NewResolver(nil, nil)
	comp := wrapComponent(t, ical.CompEvent, map[string]ical.Prop{
		"DTSTART": berlinProp("20180704T000000"),
		"DTEND":   berlinProp("20180706T000000"),
	})

	got := Compute(comp, r, nil)
	assert.True(t, got.AllDay)
	assert.True(t, got.MultiDay)
	assert.False(t, got.StartIsDate)
}
