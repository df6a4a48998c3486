package schedule

import "errors"

var (
	// ErrInvalidClock is returned when a clock text is not H:MM within a day.
	ErrInvalidClock = errors.New("schedule: invalid clock")
	// ErrInvalidSegment is returned when a segment does not satisfy start < end.
	ErrInvalidSegment = errors.New("schedule: invalid segment")
	// ErrEmptySchedule is returned when rebuilding from no breakpoints.
	ErrEmptySchedule = errors.New("schedule: empty schedule")
	// ErrNotEndOfDay is returned when the last breakpoint is not 24:00.
	ErrNotEndOfDay = errors.New("schedule: last segment must end at 24:00")
	// ErrNotContiguous is returned when breakpoints do not increase.
	ErrNotContiguous = errors.New("schedule: segments not contiguous")
)

var (
	// ErrEmptyStationID is returned when a plan has no station.
	ErrEmptyStationID = errors.New("schedule: empty station id")
	// ErrIncompletePlan is returned when plan segments do not cover the day once.
	ErrIncompletePlan = errors.New("schedule: plan does not cover the whole day")
	// ErrPlanNotFound is returned when no plan exists for a station and month.
	ErrPlanNotFound = errors.New("schedule: plan not found")
	// ErrRuleNotFound is returned when no rule of a plan covers a minute.
	ErrRuleNotFound = errors.New("schedule: rule not found")
)
