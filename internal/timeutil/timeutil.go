package timeutil

import "time"

// DateLayout defines the canonical date format (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// jst is fixed-offset Japan Standard Time; minimal containers may not ship
// tzdata, and JST has no DST to account for.
var jst = time.FixedZone("JST", 9*60*60)

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

// FormatDate formats a time as YYYY-MM-DD in its current location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// JST returns the Japan Standard Time location.
func JST() *time.Location {
	return jst
}

// FormatJSTDate renders an instant's date in Japan local time.
func FormatJSTDate(t time.Time) string {
	return t.In(jst).Format(DateLayout)
}

// FormatJSTClock renders an instant as HH:MM in Japan local time.
func FormatJSTClock(t time.Time) string {
	return t.In(jst).Format("15:04")
}
