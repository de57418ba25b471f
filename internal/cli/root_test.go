package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureICS = `BEGIN:VCALENDAR
PRODID:-//icalscan//NONSGML v1.0//EN
VERSION:2.0
BEGIN:VEVENT
UID:standup
DTSTART;TZID=Europe/Berlin:20180416T083000
DTEND;TZID=Europe/Berlin:20180416T170000
RRULE:FREQ=DAILY;BYDAY=MO,TU,WE,TH,FR
SUMMARY:Office hours
END:VEVENT
END:VCALENDAR`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRun_PrintsOccurrences(t *testing.T) {
	path := writeFixture(t, "work.ics", fixtureICS)

	out, err := runCommand(t, "--from", "2018-04-22", "--to", "2018-04-29", path)
	require.NoError(t, err)

	lines := nonEmptyLines(out)
	assert.Len(t, lines, 5)
	assert.Contains(t, lines[0], "Office hours")
	assert.Contains(t, lines[0], "2018-04-23 08:30")
}

func TestRun_ZoneConvertsOutput(t *testing.T) {
	path := writeFixture(t, "work.ics", fixtureICS)

	out, err := runCommand(t, "--from", "2018-04-22", "--to", "2018-04-24", "--zone", "UTC", path)
	require.NoError(t, err)

	lines := nonEmptyLines(out)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "2018-04-23 06:30 UTC")
}

func TestRun_ConfigFileSuppliesEverything(t *testing.T) {
	ics := writeFixture(t, "work.ics", fixtureICS)
	cfg := writeFixture(t, "sources.yaml", `
from: "2018-04-22"
to: "2018-04-24"
kinds: [events]
sources:
  - path: "`+ics+`"
    name: "Work"
`)

	out, err := runCommand(t, "--config", cfg)
	require.NoError(t, err)

	lines := nonEmptyLines(out)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "Work: Office hours")
}

func TestRun_Failures(t *testing.T) {
	path := writeFixture(t, "work.ics", fixtureICS)

	_, err := runCommand(t)
	assert.Error(t, err, "no inputs")

	_, err = runCommand(t, "--from", "yesterday-ish", path)
	assert.Error(t, err)

	_, err = runCommand(t, "--kinds", "meetings", path)
	assert.Error(t, err)

	_, err = runCommand(t, "--zone", "Bogus/Zone", path)
	assert.Error(t, err)

	_, err = runCommand(t, filepath.Join(t.TempDir(), "missing.ics"))
	assert.Error(t, err)
}

func TestWindowDefaults(t *testing.T) {
	begin, end, err := window("", "")
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, end.Sub(begin))

	begin, end, err = window("2018-04-22", "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2018, 4, 22, 0, 0, 0, 0, time.UTC), begin)
	assert.Equal(t, time.Date(2018, 4, 29, 0, 0, 0, 0, time.UTC), end)
}

func TestParseBound(t *testing.T) {
	got, err := parseBound("2018-04-22")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2018, 4, 22, 0, 0, 0, 0, time.UTC), got)

	got, err = parseBound("2018-04-22T06:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, int64(1524371400), got.Unix())

	_, err = parseBound("not a time")
	assert.Error(t, err)
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range bytes.Split([]byte(s), []byte("\n")) {
		if len(bytes.TrimSpace(line)) > 0 {
			out = append(out, string(line))
		}
	}
	return out
}
