package utils

import (
	"time"
)

// NepalTimeZone is the IANA zone NEPSE trades in.
const NepalTimeZone = "Asia/Kathmandu"

// nepalOffset is NPT (UTC+05:45), used when tzdata is unavailable on the host.
var nepalOffset = time.FixedZone("NPT", 5*60*60+45*60)

// LoadLocation resolves a time zone name, falling back to NPT when the zone
// cannot be loaded.
func LoadLocation(name string) *time.Location {
	if name == "" {
		name = NepalTimeZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nepalOffset
	}
	return loc
}

// TimeNowNPT returns the current time in Nepal.
func TimeNowNPT() time.Time {
	return time.Now().In(LoadLocation(NepalTimeZone))
}

// DateOf truncates t to midnight of its calendar day in loc.
func DateOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// PrettyDate formats t in Nepal time for human-facing messages.
func PrettyDate(t time.Time) string {
	return t.In(LoadLocation(NepalTimeZone)).Format("02 Jan 2006 15:04 MST")
}
