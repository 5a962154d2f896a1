package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday.
var today = time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDelta(t *testing.T) {
	testCases := []struct {
		name  string
		due   time.Time
		today time.Time
		want  DateDelta
	}{
		{name: "same day", due: today, today: today, want: DateDelta{}},
		{name: "later this month", due: date(2026, 10, 29), today: today, want: DateDelta{Days: 10}},
		{name: "early next month", due: date(2026, 11, 5), today: today, want: DateDelta{Days: 17}},
		{name: "one month ahead", due: date(2026, 11, 19), today: today, want: DateDelta{Months: 1}},
		{name: "ten days ago", due: date(2026, 10, 9), today: today, want: DateDelta{Days: -10}},
		{name: "twenty days ago across month", due: date(2026, 9, 29), today: today, want: DateDelta{Days: -20}},
		{name: "two months ago", due: date(2026, 8, 19), today: today, want: DateDelta{Months: -2}},
		{name: "two months and three days ago", due: date(2026, 8, 16), today: today, want: DateDelta{Months: -2, Days: -3}},
		{name: "clips to shorter month", due: date(2027, 2, 28), today: date(2027, 1, 31), want: DateDelta{Months: 1}},
		{name: "one year ahead counts total months", due: date(2027, 10, 19), today: today, want: DateDelta{Months: 12}},
		{name: "ignores clock time", due: time.Date(2026, 10, 20, 1, 0, 0, 0, time.UTC), today: time.Date(2026, 10, 19, 23, 0, 0, 0, time.UTC), want: DateDelta{Days: 1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Delta(tc.due, tc.today))
		})
	}
}

func TestClassifyUpcoming(t *testing.T) {
	for _, n := range []int{1, 5, 10} {
		due := today.AddDate(0, 0, n)
		require.Equal(t, today.Month(), due.Month())
		assert.Equal(t, Upcoming, Classify(due, today, DefaultThresholds()), "due in %d days", n)
	}
}

func TestClassify(t *testing.T) {
	th := DefaultThresholds()

	testCases := []struct {
		name string
		due  time.Time
		want Bucket
	}{
		{name: "due today", due: today, want: DueToday},
		{name: "ten days overdue", due: today.AddDate(0, 0, -10), want: OverdueWeek},
		{name: "seven days overdue", due: today.AddDate(0, 0, -7), want: OverdueWeek},
		{name: "thirteen days overdue", due: today.AddDate(0, 0, -13), want: OverdueWeek},
		{name: "fourteen days overdue", due: today.AddDate(0, 0, -14), want: OverdueEscalate},
		{name: "twenty days overdue", due: today.AddDate(0, 0, -20), want: OverdueEscalate},
		{name: "two months overdue", due: today.AddDate(0, -2, 0), want: OverdueEscalate},
		{name: "two months and a day overdue", due: today.AddDate(0, -2, -1), want: OverdueEscalate},
		{name: "recently passed", due: today.AddDate(0, 0, -3), want: None},
		{name: "more than a month ahead", due: today.AddDate(0, 1, 2), want: None},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.due, today, th))
		})
	}
}

func TestClassifyTwentyDaysFromAnyToday(t *testing.T) {
	for _, ref := range []time.Time{date(2026, 1, 5), date(2026, 3, 1), date(2026, 12, 31)} {
		assert.Equal(t, OverdueEscalate, Classify(ref.AddDate(0, 0, -20), ref, DefaultThresholds()), ref.String())
	}
}

func TestBucketForCustomThresholds(t *testing.T) {
	th := Thresholds{WeekFrom: -13, WeekTo: -6, EscalateAt: -25}

	assert.Equal(t, OverdueWeek, BucketFor(DateDelta{Days: -6}, th))
	assert.Equal(t, None, BucketFor(DateDelta{Days: -20}, th))
	assert.Equal(t, OverdueEscalate, BucketFor(DateDelta{Days: -25}, th))
	assert.Equal(t, OverdueEscalate, BucketFor(DateDelta{Months: -1}, th))
}

func TestThresholdsValidate(t *testing.T) {
	testCases := []struct {
		name    string
		th      Thresholds
		wantErr bool
	}{
		{name: "defaults", th: DefaultThresholds()},
		{name: "non-negative week bound", th: Thresholds{WeekFrom: -13, WeekTo: 0, EscalateAt: -14}, wantErr: true},
		{name: "inverted range", th: Thresholds{WeekFrom: -5, WeekTo: -9, EscalateAt: -14}, wantErr: true},
		{name: "non-negative escalation", th: Thresholds{WeekFrom: -13, WeekTo: -7, EscalateAt: 3}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.th.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDeltaPassed(t *testing.T) {
	assert.True(t, DateDelta{Days: -3}.Passed())
	assert.True(t, DateDelta{Months: -1, Days: 0}.Passed())
	assert.False(t, DateDelta{Days: 3}.Passed())
	assert.False(t, DateDelta{Months: 1, Days: -2}.Passed())
}

func TestBucketString(t *testing.T) {
	assert.Equal(t, "overdue_escalate", OverdueEscalate.String())
	assert.Equal(t, "bucket(42)", Bucket(42).String())
}

func TestWorkingDays(t *testing.T) {
	testCases := []struct {
		name string
		from time.Time
		to   time.Time
		want int
	}{
		{name: "same weekday", from: today, to: today, want: 1},
		{name: "monday to tuesday", from: today, to: date(2026, 10, 20), want: 2},
		{name: "monday to saturday", from: today, to: date(2026, 10, 24), want: 5},
		{name: "across a weekend", from: today, to: date(2026, 10, 29), want: 9},
		{name: "two full weeks", from: today, to: date(2026, 11, 1), want: 10},
		{name: "weekend only", from: date(2026, 10, 24), to: date(2026, 10, 25), want: 0},
		{name: "reversed range", from: date(2026, 10, 29), to: today, want: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, WorkingDays(tc.from, tc.to))
		})
	}
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, -20, DaysBetween(today, date(2026, 9, 29)))
	assert.Equal(t, 10, DaysBetween(today, date(2026, 10, 29)))
}

func TestStatusSet(t *testing.T) {
	set := NewStatusSet()

	for _, s := range []string{"Open", "OPEN", "open", " open ", "To Do", "IN REVIEW", "Open Nonconformity(s)", "open nonconformity(s) and SI"} {
		assert.True(t, set.Tracks(s), s)
	}
	for _, s := range []string{"", "Done", "Closed", "opened"} {
		assert.False(t, set.Tracks(s), s)
	}

	custom := NewStatusSet("Pending", "  ")
	assert.True(t, custom.Tracks("pending"))
	assert.False(t, custom.Tracks("open"))
	assert.Len(t, custom, 1)
}
