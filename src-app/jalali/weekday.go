package jalali

import (
	"strconv"
	"strings"
	"time"

	ptime "github.com/yaa110/go-persian-calendar"
)

// Jalali weeks open on Saturday: index 0 is شنبه and 6 is جمعه.
var weekdays = []ptime.Weekday{
	ptime.Shanbeh,
	ptime.Yekshanbeh,
	ptime.Doshanbeh,
	ptime.Seshanbeh,
	ptime.Charshanbeh,
	ptime.Panjshanbeh,
	ptime.Jomeh,
}

// ptime spells یکشنبه with a zero-width non-joiner; the calendar shows it joined.
var weekdayNames = map[ptime.Weekday]string{
	ptime.Shanbeh:     "شنبه",
	ptime.Yekshanbeh:  "یکشنبه",
	ptime.Doshanbeh:   "دوشنبه",
	ptime.Seshanbeh:   "سه\u200cشنبه",
	ptime.Charshanbeh: "چهارشنبه",
	ptime.Panjshanbeh: "پنج\u200cشنبه",
	ptime.Jomeh:       "جمعه",
}

var englishWeekdays = []string{"saturday", "sunday", "monday", "tuesday", "wednesday", "thursday", "friday"}

// Weekdays lists the Persian weekday names in Jalali order.
func Weekdays() []string {
	names := make([]string, len(weekdays))
	for i, wd := range weekdays {
		names[i] = weekdayNames[wd]
	}
	return names
}

// WeekdayName returns "" for an index outside 0..6.
func WeekdayName(i int) string {
	if i < 0 || i >= len(weekdays) {
		return ""
	}
	return weekdayNames[weekdays[i]]
}

// WeekdayIndex resolves a Persian name (with or without the zero-width
// non-joiner), an English name or three letter abbreviation, or a digit 0..6.
func WeekdayIndex(name string) (int, bool) {
	key := normalizeWeekday(name)
	if key == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(key); err == nil {
		return n, n >= 0 && n < len(weekdays)
	}
	for i, wd := range weekdays {
		if normalizeWeekday(weekdayNames[wd]) == key {
			return i, true
		}
	}
	for i, en := range englishWeekdays {
		if key == en || (len(key) == 3 && strings.HasPrefix(en, key)) {
			return i, true
		}
	}
	return 0, false
}

func normalizeWeekday(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("\u200c", "", " ", "", "ي", "ی", "ك", "ک").Replace(s)
}

// Weekday is the Jalali weekday index of t.
func Weekday(t time.Time) int {
	return int(ptime.New(t).Weekday())
}

// GoWeekday maps a Jalali weekday index to time.Weekday.
func GoWeekday(i int) time.Weekday {
	return time.Weekday((i + 6) % 7)
}
