package render

import (
	"fmt"
	"strings"
	"time"
)

// Clock and calendar helpers shared by the document generators. Work times
// arrive as "HH:mm-HH:mm" spans, multi-day Regieberichte additionally carry a
// "YYYY-MM-DD - YYYY-MM-DD" date range.

const dateLayout = "2006-01-02"

// parseClock converts "HH:mm" into minutes since midnight.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatMinutes(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// SpanDuration computes the worked duration of a "HH:mm-HH:mm" span as a
// zero-padded "HH:mm" string. An end before the start means the shift ran
// over midnight and 24h are added.
func SpanDuration(span string) (string, error) {
	parts := strings.SplitN(span, "-", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time span %q", span)
	}
	start, err := parseClock(parts[0])
	if err != nil {
		return "", err
	}
	end, err := parseClock(parts[1])
	if err != nil {
		return "", err
	}
	minutes := end - start
	if minutes < 0 {
		minutes += 24 * 60
	}
	return formatMinutes(minutes), nil
}

// InclusiveDays counts the days of a "YYYY-MM-DD - YYYY-MM-DD" range, both
// endpoints included. A single date (no separator) counts as one day.
func InclusiveDays(dateRange string) (int, error) {
	parts := strings.SplitN(dateRange, " - ", 2)
	if len(parts) == 1 {
		if _, err := time.Parse(dateLayout, strings.TrimSpace(parts[0])); err != nil {
			return 0, fmt.Errorf("invalid date %q: %w", dateRange, err)
		}
		return 1, nil
	}
	from, err := time.Parse(dateLayout, strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid range start %q: %w", parts[0], err)
	}
	to, err := time.Parse(dateLayout, strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, fmt.Errorf("invalid range end %q: %w", parts[1], err)
	}
	if to.Before(from) {
		return 0, fmt.Errorf("date range %q ends before it starts", dateRange)
	}
	return int(to.Sub(from).Hours()/24) + 1, nil
}

// RangeDuration multiplies a daily "HH:mm" duration by the inclusive day
// count of the date range. Hours are not capped at 24.
func RangeDuration(daily, dateRange string) (string, error) {
	perDay, err := parseClock(daily)
	if err != nil {
		return "", err
	}
	days, err := InclusiveDays(dateRange)
	if err != nil {
		return "", err
	}
	return formatMinutes(perDay * days), nil
}

// YearWeek returns the ISO-8601 year and calendar week of a "YYYY-MM-DD"
// date. Week 1 is the week containing the first Thursday of the year.
func YearWeek(date string) (int, int, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(date))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid date %q: %w", date, err)
	}
	year, week := t.ISOWeek()
	return year, week, nil
}

var germanWeekdays = [...]string{"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag"}

// GermanDate renders a "YYYY-MM-DD" date as "Montag, 02.01.2006". Dates that
// do not parse are passed through unchanged so a sloppy form entry still
// shows up on the document.
func GermanDate(date string) string {
	t, err := time.Parse(dateLayout, strings.TrimSpace(date))
	if err != nil {
		return date
	}
	return fmt.Sprintf("%s, %s", germanWeekdays[t.Weekday()], t.Format("02.01.2006"))
}
