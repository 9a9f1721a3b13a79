package d2l

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var referenceMonths = []string{
	"january",
	"february",
	"march",
	"april",
	"may",
	"june",
	"july",
	"august",
	"september",
	"october",
	"november",
	"december",
}

func parseMonth(text string) time.Month {
	text = strings.ToLower(strings.TrimSuffix(text, "."))
	if len(text) < 3 {
		return -1
	}
	for i, month := range referenceMonths {
		if strings.HasPrefix(month, text[:3]) {
			return time.January + time.Month(i)
		}
	}
	return -1
}

const monthNames = `jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?`

var (
	monthWordRegex = regexp.MustCompile(`(?i)\b(?:` + monthNames + `)\b`)
	clockRegex     = regexp.MustCompile(`\b\d{1,2}:\d{2}\b`)

	// "Mon, Oct 20, 2026 11:59 PM", "October 20 at 9:00 AM", "Oct. 20th"
	monthDayRegex = regexp.MustCompile(
		`(?i)\b(` + monthNames + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b(?:,?\s+(\d{4}))?` +
			`(?:,?\s+(?:at\s+)?(\d{1,2}):(\d{2})\s*([ap]\.?m\.?)?)?`,
	)
	// "2026-10-20", "10/20/2026 11:59 PM"
	numericDateRegex = regexp.MustCompile(
		`\d{1,4}[-/.]\d{1,2}[-/.]\d{1,4}(?:[ T]\d{1,2}:\d{2}(?::\d{2})?(?:\s*[AaPp][Mm])?)?`,
	)
)

// looksLikeDate is true for fragments that mention a month or a clock time.
func looksLikeDate(text string) bool {
	return monthWordRegex.MatchString(text) || clockRegex.MatchString(text)
}

// resolveYear picks the year for a date that did not specify one, assuming the calendar
// shows dates around the reference.
func resolveYear(month time.Month, day int, ref time.Time) int {
	year := ref.Year()
	candidate := time.Date(year, month, day, 0, 0, 0, 0, ref.Location())
	if candidate.Before(ref.AddDate(0, -6, 0)) {
		year++
	}
	return year
}

func parseMonthDay(text string, ref time.Time) (time.Time, bool) {
	m := monthDayRegex.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	month := parseMonth(m[1])
	if month < 0 {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(m[2])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}

	year := 0
	if m[3] != "" {
		year, err = strconv.Atoi(m[3])
		if err != nil {
			return time.Time{}, false
		}
	} else {
		year = resolveYear(month, day, ref)
	}

	hour, minute := 0, 0
	if m[4] != "" {
		hour, _ = strconv.Atoi(m[4])
		minute, _ = strconv.Atoi(m[5])
		meridiem := strings.ToLower(strings.ReplaceAll(m[6], ".", ""))
		switch {
		case meridiem == "pm" && hour < 12:
			hour += 12
		case meridiem == "am" && hour == 12:
			hour = 0
		}
		if hour > 23 || minute > 59 {
			return time.Time{}, false
		}
	}

	parsed := time.Date(year, month, day, hour, minute, 0, 0, ref.Location())
	if parsed.Day() != day {
		// Feb 30 and friends normalize into the next month
		return time.Time{}, false
	}
	return parsed, true
}

func parseNumericDate(text string, ref time.Time) (time.Time, bool) {
	fragment := numericDateRegex.FindString(text)
	if fragment == "" {
		return time.Time{}, false
	}
	parsed, err := dateparse.ParseIn(fragment, ref.Location())
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

var dateCascade = []matcher[dateInput, time.Time]{
	func(in dateInput) (time.Time, bool) { return parseMonthDay(in.text, in.ref) },
	func(in dateInput) (time.Time, bool) { return parseNumericDate(in.text, in.ref) },
}

type dateInput struct {
	text string
	ref  time.Time
}

// parseLooseDate reads a calendar date out of free text, resolving missing years and the time
// zone against ref. Clock times without a date do not parse.
func parseLooseDate(text string, ref time.Time) (time.Time, bool) {
	return firstMatch(dateInput{text: text, ref: ref}, dateCascade)
}
