package validation

import (
	"regexp"
	"unicode/utf8"
)

const (
	MaxTitleLength = 30
	MaxMemoLength  = 200
)

var (
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dateTimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T([01]\d|2[0-3]):([0-5]\d)$`)
	timePattern     = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)
	clockPattern    = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)(:([0-5]\d))?$`)
)

// CheckTitle accepts a non-nil title of at most 30 characters.
func CheckTitle(title *string) bool {
	if title == nil {
		return false
	}
	return utf8.RuneCountInString(*title) <= MaxTitleLength
}

// CheckMemo accepts a nil memo or one of at most 200 characters.
func CheckMemo(memo *string) bool {
	if memo == nil {
		return true
	}
	return utf8.RuneCountInString(*memo) <= MaxMemoLength
}

// CheckDate accepts yyyy-MM-dd.
func CheckDate(date string) bool {
	return datePattern.MatchString(date)
}

// CheckDateTime accepts yyyy-MM-ddTHH:mm with a valid 24h clock.
func CheckDateTime(dateTime string) bool {
	return dateTimePattern.MatchString(dateTime)
}

// CheckTime accepts HH:mm with a valid 24h clock.
func CheckTime(t string) bool {
	return timePattern.MatchString(t)
}

// CheckClock accepts HH:mm or HH:mm:ss, the departure-time filter of the
// transit queries.
func CheckClock(t string) bool {
	return clockPattern.MatchString(t)
}
