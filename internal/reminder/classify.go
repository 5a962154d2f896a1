// Package reminder decides which reminder, if any, a control review needs and
// renders the comment that is posted on its ticket.
package reminder

import (
	"fmt"
	"time"
)

// Bucket is the due-date category that drives message selection.
type Bucket int

const (
	// None means no action: either enough time remains or the due date
	// passed too recently to escalate.
	None Bucket = iota
	// Upcoming means the due date is later this month.
	Upcoming
	// DueToday means the due date is today.
	DueToday
	// OverdueWeek means one to two weeks overdue; the manager is looped in.
	OverdueWeek
	// OverdueEscalate means far enough overdue to be tracked in the risk log.
	OverdueEscalate
)

var bucketNames = map[Bucket]string{
	None:            "none",
	Upcoming:        "upcoming",
	DueToday:        "due_today",
	OverdueWeek:     "overdue_week",
	OverdueEscalate: "overdue_escalate",
}

func (b Bucket) String() string {
	if name, ok := bucketNames[b]; ok {
		return name
	}
	return fmt.Sprintf("bucket(%d)", int(b))
}

// Thresholds are the day offsets that separate the overdue buckets. They are
// negative numbers of days relative to today.
type Thresholds struct {
	// WeekFrom and WeekTo bound the OverdueWeek range, inclusive.
	WeekFrom int
	WeekTo   int
	// EscalateAt is the day offset at or below which a risk is logged.
	EscalateAt int
}

// DefaultThresholds returns the -13..-7 week window and escalation at -14.
func DefaultThresholds() Thresholds {
	return Thresholds{
		WeekFrom:   -13,
		WeekTo:     -7,
		EscalateAt: -14,
	}
}

// Validate checks that the thresholds describe past days in a sane order.
func (t Thresholds) Validate() error {
	if t.WeekTo >= 0 {
		return fmt.Errorf("overdue week upper bound must be negative, got %d", t.WeekTo)
	}
	if t.WeekFrom > t.WeekTo {
		return fmt.Errorf("overdue week range is inverted: %d..%d", t.WeekFrom, t.WeekTo)
	}
	if t.EscalateAt >= 0 {
		return fmt.Errorf("escalation threshold must be negative, got %d", t.EscalateAt)
	}
	return nil
}

// Classify returns the bucket for a due date relative to today.
func Classify(due, today time.Time, t Thresholds) Bucket {
	return BucketFor(Delta(due, today), t)
}

// BucketFor maps a delta to a bucket. Rules are evaluated in order and the
// first match wins.
func BucketFor(d DateDelta, t Thresholds) Bucket {
	switch {
	case d.Months == 0 && d.Days > 0:
		return Upcoming
	case d.Months == 0 && d.Days == 0:
		return DueToday
	case d.Months == 0 && d.Days >= t.WeekFrom && d.Days <= t.WeekTo:
		return OverdueWeek
	case d.Months < 0 || d.Days <= t.EscalateAt:
		return OverdueEscalate
	default:
		return None
	}
}

// Passed reports whether a delta lies in the past. Callers use it to explain
// a None bucket as "recently passed" rather than "time remaining".
func (d DateDelta) Passed() bool {
	return d.Months < 0 || (d.Months == 0 && d.Days < 0)
}
