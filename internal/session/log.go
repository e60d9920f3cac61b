// Package session keeps the append-only record of completed work
// intervals and derives the per-day totals behind the stats views.
package session

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the calendar-day key format, local time.
const DateLayout = "2006-01-02"

// Session is one completed work interval. Immutable once recorded.
// Multiple entries per day are expected; consumers sum them.
type Session struct {
	Date     string `json:"date"`     // YYYY-MM-DD, local time
	Duration int    `json:"duration"` // seconds of completed work
}

// Log is the append-only session record.
type Log struct {
	sessions []Session
}

func NewLog() *Log {
	return &Log{}
}

// Record appends one session. This is the only mutator.
func (l *Log) Record(s Session) {
	l.sessions = append(l.sessions, s)
}

// All returns a copy of the recorded sessions.
func (l *Log) All() []Session {
	out := make([]Session, len(l.sessions))
	copy(out, l.sessions)
	return out
}

// Len returns the number of recorded sessions.
func (l *Log) Len() int {
	return len(l.sessions)
}

// DayMinutes sums durations per calendar day and converts to minutes,
// rounding to the nearest integer.
func (l *Log) DayMinutes() map[string]int {
	secs := make(map[string]int)
	for _, s := range l.sessions {
		secs[s.Date] += s.Duration
	}
	mins := make(map[string]int, len(secs))
	for date, total := range secs {
		mins[date] = (total + 30) / 60
	}
	return mins
}

// TodaySeconds sums the durations recorded for the given day.
func (l *Log) TodaySeconds(date string) int {
	total := 0
	for _, s := range l.sessions {
		if s.Date == date {
			total += s.Duration
		}
	}
	return total
}

// Level buckets summed minutes into the five heatmap intensities.
func Level(minutes int) int {
	switch {
	case minutes > 240:
		return 4
	case minutes > 120:
		return 3
	case minutes > 60:
		return 2
	case minutes > 0:
		return 1
	default:
		return 0
	}
}

// Day is one heatmap cell.
type Day struct {
	Date    string
	Minutes int
	Level   int
}

// Calendar returns the rolling 365-day window ending today, one entry
// per day in chronological order.
func (l *Log) Calendar(today time.Time) []Day {
	mins := l.DayMinutes()
	days := make([]Day, 0, 365)
	start := today.AddDate(0, 0, -364)
	for d := start; !d.After(today); d = d.AddDate(0, 0, 1) {
		date := d.Format(DateLayout)
		m := mins[date]
		days = append(days, Day{Date: date, Minutes: m, Level: Level(m)})
	}
	return days
}

// Snapshot serializes the log as one JSON array.
func (l *Log) Snapshot() (string, error) {
	sessions := l.sessions
	if sessions == nil {
		sessions = []Session{}
	}
	data, err := json.Marshal(sessions)
	if err != nil {
		return "", fmt.Errorf("marshal sessions: %w", err)
	}
	return string(data), nil
}

// Restore replaces the log contents from a JSON snapshot.
func (l *Log) Restore(data string) error {
	var sessions []Session
	if err := json.Unmarshal([]byte(data), &sessions); err != nil {
		return fmt.Errorf("unmarshal sessions: %w", err)
	}
	l.sessions = sessions
	return nil
}
