package operators

import (
	"fmt"
	"time"
)

// Level is the severity of a Report.
type Level int

const (
	LevelInfo Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "ERROR"
	}
	return "INFO"
}

// Report is the short message an operator leaves for the user.
type Report struct {
	Operator string
	Level    Level
	Message  string
	// Err is set on error reports.
	Err  error
	Time time.Time
}

func (r Report) Failed() bool {
	return r.Level == LevelError
}

func (r Report) String() string {
	return fmt.Sprintf("[%s] %s: %s", r.Level, r.Operator, r.Message)
}
