// Package jalali converts between the Jalali (Persian) calendar used for
// display and the Gregorian YYYY-MM-DD strings kept in the database.
package jalali

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"rooydad/src-app/utils"

	ptime "github.com/yaa110/go-persian-calendar"
)

const (
	// GregorianLayout is the storage format of dates.
	GregorianLayout = "2006-01-02"
	// TimeLayout is the storage format of times of day.
	TimeLayout = "15:04"
	// MaxYear is the last Jalali year accepted as input.
	MaxYear = 9377
)

var (
	ErrDateFormat  = errors.New("date must look like YYYY-MM-DD")
	ErrInvalidDate = errors.New("not a valid jalali date")
	ErrTimeFormat  = errors.New("time must look like HH:MM")
)

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern = regexp.MustCompile(`^\d{2}:\d{2}$`)

	// numbers joined by - / or . with any digit counts
	dateLikePattern = regexp.MustCompile(`^\d+(\s*[-/.]\s*\d+)+$`)
)

// Parse reads a Jalali YYYY-MM-DD date and returns midnight of that day in loc.
func Parse(s string, loc *time.Location) (time.Time, error) {
	s = utils.NormalizeDigits(strings.TrimSpace(s))
	if !datePattern.MatchString(s) {
		return time.Time{}, fmt.Errorf("jalali.Parse: %q: %w", s, ErrDateFormat)
	}
	year, _ := strconv.Atoi(s[0:4])
	month, _ := strconv.Atoi(s[5:7])
	day, _ := strconv.Atoi(s[8:10])
	if year < 1 || year > MaxYear || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("jalali.Parse: %q: %w", s, ErrInvalidDate)
	}

	pt := ptime.Date(year, ptime.Month(month), day, 0, 0, 0, 0, loc)
	// out of range days roll over into the next month
	if pt.Year() != year || int(pt.Month()) != month || pt.Day() != day {
		return time.Time{}, fmt.Errorf("jalali.Parse: %q: %w", s, ErrInvalidDate)
	}
	return pt.Time(), nil
}

// Valid reports whether s is a real Jalali date in YYYY-MM-DD form.
func Valid(s string) bool {
	_, err := Parse(s, time.UTC)
	return err == nil
}

// LooksLikeDate reports whether s is shaped like a numeric date, real or not.
func LooksLikeDate(s string) bool {
	return dateLikePattern.MatchString(utils.NormalizeDigits(strings.TrimSpace(s)))
}

// ValidTime accepts an empty string (no time) or a real HH:MM.
func ValidTime(s string) bool {
	s = utils.NormalizeDigits(strings.TrimSpace(s))
	if s == "" {
		return true
	}
	if !timePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse(TimeLayout, s)
	return err == nil
}

// ToGregorian converts a Jalali YYYY-MM-DD into the Gregorian storage form.
func ToGregorian(s string) (string, error) {
	t, err := Parse(s, time.UTC)
	if err != nil {
		return "", err
	}
	return t.Format(GregorianLayout), nil
}

// FromGregorian converts a stored Gregorian date into Jalali YYYY-MM-DD.
func FromGregorian(s string) (string, error) {
	t, err := time.Parse(GregorianLayout, s)
	if err != nil {
		return "", fmt.Errorf("jalali.FromGregorian: %w", err)
	}
	return Format(t), nil
}

func Format(t time.Time) string {
	pt := ptime.New(t)
	return fmt.Sprintf("%04d-%02d-%02d", pt.Year(), int(pt.Month()), pt.Day())
}

// FormatWithWeekday renders "1403-01-01 (چهارشنبه)".
func FormatWithWeekday(t time.Time) string {
	return fmt.Sprintf("%s (%s)", Format(t), WeekdayName(Weekday(t)))
}

// FormatClock renders the header clock, e.g. "1403/01/01 09:30:00 - چهارشنبه".
func FormatClock(t time.Time) string {
	pt := ptime.New(t)
	return fmt.Sprintf("%04d/%02d/%02d %02d:%02d:%02d - %s",
		pt.Year(), int(pt.Month()), pt.Day(),
		t.Hour(), t.Minute(), t.Second(),
		WeekdayName(Weekday(t)),
	)
}

// MonthName is the Persian name of the Jalali month t falls in.
func MonthName(t time.Time) string {
	return ptime.New(t).Month().String()
}

// WeekStart is midnight of the Saturday that opens t's Jalali week.
func WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -Weekday(day))
}
