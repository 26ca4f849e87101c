// internal/codec/schedule.go
package codec

import (
	"encoding/json"
	"fmt"
)

// Week schedule geometry: 7 days x 3 words, one bit per half hour.
const (
	scheduleDays        = 7
	scheduleWordsPerDay = 3
	scheduleSlotsPerDay = scheduleWordsPerDay * 16

	// ScheduleWidth is the register count of one week schedule.
	ScheduleWidth = scheduleDays * scheduleWordsPerDay
)

type weekSchedule struct {
	Monday    []string `json:"monday"`
	Tuesday   []string `json:"tuesday"`
	Wednesday []string `json:"wednesday"`
	Thursday  []string `json:"thursday"`
	Friday    []string `json:"friday"`
	Saturday  []string `json:"saturday"`
	Sunday    []string `json:"sunday"`
}

// WeekSchedule decodes a 21-word program into JSON, one list of
// "HH:MM-HH:MM" comfort periods per day.
// Slot n of a day is bit n%16 (LSB first) of word n/16.
func WeekSchedule(words []uint16) (string, error) {
	if err := need(words, ScheduleWidth, "week_schedule"); err != nil {
		return "", err
	}

	var s weekSchedule
	days := []*[]string{
		&s.Monday, &s.Tuesday, &s.Wednesday, &s.Thursday,
		&s.Friday, &s.Saturday, &s.Sunday,
	}
	for d, day := range days {
		*day = dayPeriods(words[d*scheduleWordsPerDay : (d+1)*scheduleWordsPerDay])
	}

	out, err := json.Marshal(s)
	if err != nil {
		return "", decodeErr("week_schedule: %v", err)
	}
	return string(out), nil
}

func dayPeriods(words []uint16) []string {
	periods := []string{}
	start := -1

	for slot := 0; slot <= scheduleSlotsPerDay; slot++ {
		on := slot < scheduleSlotsPerDay && words[slot/16]&(1<<uint(slot%16)) != 0
		switch {
		case on && start < 0:
			start = slot
		case !on && start >= 0:
			periods = append(periods, slotTime(start)+"-"+slotTime(slot))
			start = -1
		}
	}
	return periods
}

func slotTime(slot int) string {
	return fmt.Sprintf("%02d:%02d", slot/2, (slot%2)*30)
}
