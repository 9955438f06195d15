package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

var weekdayCodes = [...]string{"SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"}

// ParseWeekday accepts SUN..SAT (any case) or full English names.
func ParseWeekday(s string) (time.Weekday, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	for i, code := range weekdayCodes {
		if v == code || v == strings.ToUpper(time.Weekday(i).String()) {
			return time.Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

// WeekdayCode returns the three-letter code used in storage and JSON.
func WeekdayCode(d time.Weekday) string {
	return weekdayCodes[d]
}

// Weekdays is a set of eligible days stored as a comma separated column ("MON,WED").
type Weekdays []time.Weekday

// ParseWeekdays parses and de-duplicates codes; the result is sorted Sunday first.
func ParseWeekdays(codes []string) (Weekdays, error) {
	seen := make(map[time.Weekday]bool, len(codes))
	out := make(Weekdays, 0, len(codes))
	for _, c := range codes {
		if strings.TrimSpace(c) == "" {
			continue
		}
		d, err := ParseWeekday(c)
		if err != nil {
			return nil, err
		}
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (w Weekdays) Contains(d time.Weekday) bool {
	for _, v := range w {
		if v == d {
			return true
		}
	}
	return false
}

func (w Weekdays) Codes() []string {
	out := make([]string, len(w))
	for i, d := range w {
		out[i] = WeekdayCode(d)
	}
	return out
}

func (w Weekdays) Value() (driver.Value, error) {
	return strings.Join(w.Codes(), ","), nil
}

func (w *Weekdays) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*w = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("weekdays: unsupported type %T", src)
	}
	parsed, err := ParseWeekdays(strings.Split(raw, ","))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

func (Weekdays) GormDataType() string {
	return "varchar(32)"
}

func (w Weekdays) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.Codes())
}

func (w *Weekdays) UnmarshalJSON(b []byte) error {
	var codes []string
	if err := json.Unmarshal(b, &codes); err != nil {
		return err
	}
	parsed, err := ParseWeekdays(codes)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}
