// Package availability models weekly availability windows and matches activity start times against them.
package availability

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"rowmatch/internal/apperr"
)

var ErrMalformed = apperr.Validation("availability is not in the correct format")

// TimeOfDay is minutes since local midnight.
type TimeOfDay int

// EndOfDay is written "24:00" and is only valid as an interval end.
const EndOfDay TimeOfDay = 24 * 60

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if s == "24:00" {
		return EndOfDay, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: time %q", ErrMalformed, s)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

func (t TimeOfDay) Duration() time.Duration {
	return time.Duration(t) * time.Minute
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

var weekdays = map[string]time.Weekday{
	"SUNDAY":    time.Sunday,
	"MONDAY":    time.Monday,
	"TUESDAY":   time.Tuesday,
	"WEDNESDAY": time.Wednesday,
	"THURSDAY":  time.Thursday,
	"FRIDAY":    time.Friday,
	"SATURDAY":  time.Saturday,
}

func ParseWeekday(s string) (time.Weekday, error) {
	d, ok := weekdays[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%w: day %q", ErrMalformed, s)
	}
	return d, nil
}

// Interval is a recurring weekly window. End is strictly after Start.
type Interval struct {
	Day   time.Weekday
	Start TimeOfDay
	End   TimeOfDay
}

func Parse(day, start, end string) (Interval, error) {
	d, err := ParseWeekday(day)
	if err != nil {
		return Interval{}, err
	}
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return Interval{}, err
	}
	iv := Interval{Day: d, Start: s, End: e}
	if err := iv.Validate(); err != nil {
		return Interval{}, err
	}
	return iv, nil
}

func (iv Interval) Validate() error {
	if iv.Day < time.Sunday || iv.Day > time.Saturday {
		return fmt.Errorf("%w: day out of range", ErrMalformed)
	}
	if iv.Start < 0 || iv.End > EndOfDay || iv.End <= iv.Start {
		return fmt.Errorf("%w: end must be after start", ErrMalformed)
	}
	return nil
}

// Contains reports whether t falls strictly inside the interval on the same weekday, in local time.
func (iv Interval) Contains(t time.Time) bool {
	local := t.Local()
	if local.Weekday() != iv.Day {
		return false
	}
	h, m, s := local.Clock()
	sinceMidnight := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second + time.Duration(local.Nanosecond())
	return iv.Start.Duration() < sinceMidnight && sinceMidnight < iv.End.Duration()
}

type intervalJSON struct {
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

func (iv Interval) MarshalJSON() ([]byte, error) {
	return json.Marshal(intervalJSON{
		Day:   strings.ToUpper(iv.Day.String()),
		Start: iv.Start.String(),
		End:   iv.End.String(),
	})
}

func (iv *Interval) UnmarshalJSON(data []byte) error {
	var raw intervalJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	parsed, err := Parse(raw.Day, raw.Start, raw.End)
	if err != nil {
		return err
	}
	*iv = parsed
	return nil
}

// IsAvailable reports whether start lies inside at least one of the intervals.
func IsAvailable(start time.Time, intervals []Interval) bool {
	for _, iv := range intervals {
		if iv.Contains(start) {
			return true
		}
	}
	return false
}

// Intervals is stored as a jsonb column.
type Intervals []Interval

func (is Intervals) Value() (driver.Value, error) {
	if is == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(is)
}

func (is *Intervals) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*is = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("availability: unsupported column type")
	}
	var out []Interval
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*is = out
	return nil
}

func (is Intervals) Index(iv Interval) int {
	for i, cur := range is {
		if cur == iv {
			return i
		}
	}
	return -1
}

// Add appends iv unless an identical interval already exists.
func (is Intervals) Add(iv Interval) Intervals {
	if is.Index(iv) >= 0 {
		return is
	}
	return append(is, iv)
}

func (is Intervals) Remove(iv Interval) (Intervals, bool) {
	i := is.Index(iv)
	if i < 0 {
		return is, false
	}
	out := make(Intervals, 0, len(is)-1)
	out = append(out, is[:i]...)
	return append(out, is[i+1:]...), true
}

// Replace swaps old for repl in place. It fails when old is absent or repl already exists.
func (is Intervals) Replace(old, repl Interval) (Intervals, bool) {
	i := is.Index(old)
	if i < 0 || (old != repl && is.Index(repl) >= 0) {
		return is, false
	}
	out := make(Intervals, len(is))
	copy(out, is)
	out[i] = repl
	return out, true
}
