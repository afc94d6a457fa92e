// Package dates parses user-supplied date text, either strict layouts
// or natural language ("tomorrow", "in 6 days").
package dates

import (
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// Amsterdam is the facility's local timezone. Slot windows and command
// dates are interpreted in it.
var Amsterdam = mustLoadLocation("Europe/Amsterdam")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

var strictLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

var parser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// Parse interprets text as a date, trying strict layouts first and
// natural language second. The second return value reports whether a
// date was recognized.
func Parse(text string, now time.Time) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}

	for _, layout := range strictLayouts {
		if t, err := time.ParseInLocation(layout, text, Amsterdam); err == nil {
			return t, true
		}
	}

	r, err := parser.Parse(text, now.In(Amsterdam))
	if err != nil || r == nil {
		return time.Time{}, false
	}
	return r.Time, true
}

// DayString formats a date the way user-facing day headers expect it.
func DayString(t time.Time) string {
	return t.In(Amsterdam).Format("Monday 2006-01-02")
}
