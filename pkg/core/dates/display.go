package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// UnknownDateLabel is shown for selections with no date
const UnknownDateLabel = "날짜 미정"

var weekdays = [...]string{"일", "월", "화", "수", "목", "금", "토"}

// FormatDateDisplay renders a canonical date as MM-DD(weekday).
// Empty input and the no-date sentinel render as UnknownDateLabel; input that
// does not split into numeric year, month and day is returned unchanged.
func FormatDateDisplay(date string) string {
	if date == "" || date == NoDate {
		return UnknownDateLabel
	}

	parts := strings.Split(date, "-")
	if len(parts) < 3 {
		return date
	}
	var fields [3]int
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(parts[i])
		if err != nil || n == 0 {
			return date
		}
		fields[i] = n
	}

	// time.Date normalises overflowing days the same way a calendar would
	t := time.Date(fields[0], time.Month(fields[1]), fields[2], 0, 0, 0, 0, time.UTC)
	return fmt.Sprintf("%02d-%02d(%s)", int(t.Month()), t.Day(), weekdays[t.Weekday()])
}

// Less orders canonical dates ascending with the no-date bucket last
func Less(a, b string) bool {
	if a == NoDate {
		return false
	}
	if b == NoDate {
		return true
	}
	return a < b
}

// DisplayFormatter renders canonical dates for display
type DisplayFormatter interface {
	Format(date string) string
}

// FormatFunc adapts a plain function to DisplayFormatter
type FormatFunc func(date string) string

func (f FormatFunc) Format(date string) string {
	return f(date)
}

// Formatter memoizes FormatDateDisplay in a bounded LRU cache.
// It is safe for concurrent use.
type Formatter struct {
	cache *lru.Cache[string, string]
}

// NewFormatter creates a formatter caching up to size rendered dates.
// A size of zero or less disables caching.
func NewFormatter(size int) *Formatter {
	if size <= 0 {
		return &Formatter{}
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return &Formatter{}
	}
	return &Formatter{cache: cache}
}

// Format returns the display form of date
func (f *Formatter) Format(date string) string {
	if f.cache == nil {
		return FormatDateDisplay(date)
	}
	if v, ok := f.cache.Get(date); ok {
		return v
	}
	v := FormatDateDisplay(date)
	f.cache.Add(date, v)
	return v
}

// Cached returns the number of rendered dates held in the cache
func (f *Formatter) Cached() int {
	if f.cache == nil {
		return 0
	}
	return f.cache.Len()
}
