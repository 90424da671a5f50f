package model

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeeklyHours converts the request form (lowercase weekday names)
// into WeeklyHours. Slots are de-duplicated and sorted chronologically;
// "HH:MM" strings sort correctly as text.
func ParseWeeklyHours(raw map[string][]string) (WeeklyHours, error) {
	wh := make(WeeklyHours, len(raw))
	for name, slots := range raw {
		day, ok := weekdayNames[strings.ToLower(name)]
		if !ok {
			return nil, errors.Errorf("unknown weekday %q", name)
		}
		seen := make(map[string]struct{}, len(slots))
		ordered := make([]string, 0, len(slots))
		for _, slot := range slots {
			slot = strings.TrimSpace(slot)
			if _, err := time.Parse("15:04", slot); err != nil {
				return nil, errors.Errorf("invalid time slot %q", slot)
			}
			if _, dup := seen[slot]; dup {
				continue
			}
			seen[slot] = struct{}{}
			ordered = append(ordered, slot)
		}
		sort.Strings(ordered)
		wh[day] = ordered
	}
	return wh, nil
}

func (wh WeeklyHours) MarshalJSON() ([]byte, error) {
	out := make(map[string][]string, len(wh))
	for name, day := range weekdayNames {
		if slots, ok := wh[day]; ok && len(slots) > 0 {
			out[name] = slots
		}
	}
	return json.Marshal(out)
}

func (wh *WeeklyHours) UnmarshalJSON(data []byte) error {
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseWeeklyHours(raw)
	if err != nil {
		return err
	}
	*wh = parsed
	return nil
}
