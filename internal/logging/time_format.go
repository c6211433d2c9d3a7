package logging

import "time"

// TimestampLayout is the local wall-clock layout shared by console log lines,
// run banners, and run listings.
const TimestampLayout = "2006-01-02 15:04:05"

// FormatTimestamp renders ts in local time, or "" for the zero time.
func FormatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.In(time.Local).Format(TimestampLayout)
}
