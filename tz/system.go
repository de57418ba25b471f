package tz

import (
	"os"
	"strings"
	"time"
)

// SystemZone detects the host timezone: the TZ environment variable first,
// then /etc/timezone, then the /etc/localtime symlink target. Unresolvable
// hosts fall back to UTC. All reads are read-only process state.
func SystemZone(p Provider) *time.Location {
	if name := os.Getenv("TZ"); name != "" {
		if loc, err := p.Load(name); err == nil {
			return loc
		}
	}
	if data, err := os.ReadFile("/etc/timezone"); err == nil {
		if loc, err := p.Load(strings.TrimSpace(string(data))); err == nil {
			return loc
		}
	}
	if target, err := os.Readlink("/etc/localtime"); err == nil {
		if name := zoneNameFromPath(target); name != "" {
			if loc, err := p.Load(name); err == nil {
				return loc
			}
		}
	}
	return p.UTC()
}

// zoneNameFromPath extracts "Area/City" from a zoneinfo symlink target such
// as /usr/share/zoneinfo/Europe/Berlin.
func zoneNameFromPath(path string) string {
	const marker = "zoneinfo/"
	idx := strings.LastIndex(path, marker)
	if idx < 0 {
		return ""
	}
	return strings.TrimPrefix(path[idx+len(marker):], "posix/")
}
