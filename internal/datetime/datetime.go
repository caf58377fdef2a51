// Package datetime parses the loosely formatted date and time text found in
// admission sheets and stored records.
//
// Two layers are provided. The loose layer (ParseDate, ParseTime and their
// Normalize* variants) is used at import time and never fails: text it cannot
// read is handed back trimmed. The strict layer (Combine, ParseInstant,
// ParseReference) turns canonical stored text into comparable instants and
// reports "not parsed" instead of guessing.
//
// Instants are wall-clock values carried in time.UTC; see Wall.
package datetime

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout    = "02.01.2006"
	ClockLayout   = "15:04"
	InstantLayout = DateLayout + " " + ClockLayout
)

var (
	dayMonthRe     = regexp.MustCompile(`^(\d{1,2})[./-](\d{1,2})$`)
	dayMonthYearRe = regexp.MustCompile(`^(\d{1,2})[./-](\d{1,2})[./-](\d{2,4})`)
	isoDateRe      = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)

	clockRe        = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
	compactClockRe = regexp.MustCompile(`^(\d{2})(\d{2})$`)

	strictDateRe  = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})$`)
	strictClockRe = regexp.MustCompile(`^(\d{1,2}):(\d{1,2})$`)
)

// Date is a calendar date without time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// String renders the date as dd.mm.yyyy.
func (d Date) String() string {
	return fmt.Sprintf("%02d.%02d.%04d", d.Day, int(d.Month), d.Year)
}

// Time returns midnight of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Clock is a time of day. ParseTime does not range-check it; Valid does.
type Clock struct {
	Hour   int
	Minute int
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Valid reports whether c is a real time of day.
func (c Clock) Valid() bool {
	return c.Hour >= 0 && c.Hour < 24 && c.Minute >= 0 && c.Minute < 60
}

func makeDate(year, month, day int) (Date, bool) {
	if month < 1 || month > 12 || day < 1 || year < 1 {
		return Date{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return Date{}, false
	}
	return Date{Year: year, Month: time.Month(month), Day: day}, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// ParseDate reads dd.mm (year taken from ref), dd.mm.yy(yy) or yyyy-mm-dd.
// The first pattern that matches decides the outcome: an impossible calendar
// date under a matching pattern is not retried with the later ones.
func ParseDate(text string, ref time.Time) (Date, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Date{}, false
	}
	if m := dayMonthRe.FindStringSubmatch(s); m != nil {
		return makeDate(ref.Year(), atoi(m[2]), atoi(m[1]))
	}
	if m := dayMonthYearRe.FindStringSubmatch(s); m != nil {
		year := atoi(m[3])
		if year < 100 {
			year += 2000
		}
		return makeDate(year, atoi(m[2]), atoi(m[1]))
	}
	if m := isoDateRe.FindStringSubmatch(s); m != nil {
		return makeDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	return Date{}, false
}

// NormalizeDate returns the canonical dd.mm.yyyy form of text, or text
// trimmed when it cannot be read as a date. Blank input stays blank.
func NormalizeDate(text string, ref time.Time) string {
	if d, ok := ParseDate(text, ref); ok {
		return d.String()
	}
	return strings.TrimSpace(text)
}

// ParseTime extracts the first H:MM or HH:MM found anywhere in text, falling
// back to a bare four digit HHMM.
func ParseTime(text string) (Clock, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Clock{}, false
	}
	if m := clockRe.FindStringSubmatch(s); m != nil {
		return Clock{Hour: atoi(m[1]), Minute: atoi(m[2])}, true
	}
	if m := compactClockRe.FindStringSubmatch(s); m != nil {
		return Clock{Hour: atoi(m[1]), Minute: atoi(m[2])}, true
	}
	return Clock{}, false
}

// NormalizeTime returns HH:MM, or text trimmed when no time can be found.
func NormalizeTime(text string) string {
	if c, ok := ParseTime(text); ok {
		return c.String()
	}
	return strings.TrimSpace(text)
}

func parseStrictDate(s string) (Date, bool) {
	m := strictDateRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Date{}, false
	}
	return makeDate(atoi(m[3]), atoi(m[2]), atoi(m[1]))
}

func parseStrictClock(s string) (Clock, bool) {
	m := strictClockRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Clock{}, false
	}
	c := Clock{Hour: atoi(m[1]), Minute: atoi(m[2])}
	return c, c.Valid()
}

func at(d Date, c Clock) time.Time {
	return time.Date(d.Year, d.Month, d.Day, c.Hour, c.Minute, 0, 0, time.UTC)
}

// Combine builds an instant from a stored dd.mm.yyyy date and an optional
// HH:MM time. A blank or unreadable time means midnight; a blank or
// unreadable date means no instant at all.
func Combine(date, clock string) (time.Time, bool) {
	d, ok := parseStrictDate(date)
	if !ok {
		return time.Time{}, false
	}
	c, ok := parseStrictClock(clock)
	if !ok {
		c = Clock{}
	}
	return at(d, c), true
}

// ParseInstant reads "dd.mm.yyyy HH:MM" or "dd.mm.yyyy" (midnight).
func ParseInstant(text string) (time.Time, bool) {
	parts := strings.Fields(text)
	switch len(parts) {
	case 1:
		d, ok := parseStrictDate(parts[0])
		if !ok {
			return time.Time{}, false
		}
		return d.Time(), true
	case 2:
		d, ok := parseStrictDate(parts[0])
		if !ok {
			return time.Time{}, false
		}
		c, ok := parseStrictClock(parts[1])
		if !ok {
			return time.Time{}, false
		}
		return at(d, c), true
	default:
		return time.Time{}, false
	}
}

// ParseReference reads an "as of" value, falling back to now.
func ParseReference(text string, now time.Time) time.Time {
	if t, ok := ParseInstant(text); ok {
		return t
	}
	return now
}

// FormatInstant renders t as dd.mm.yyyy HH:MM.
func FormatInstant(t time.Time) string {
	return t.Format(InstantLayout)
}

// Wall re-expresses t as the wall clock of loc, carried in UTC, so that it
// compares directly with parsed instants.
func Wall(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
