package model

import "fmt"

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	From Date `json:"from"`
	To   Date `json:"to"`
}

// NewDateRange builds a range, rejecting From after To.
func NewDateRange(from, to Date) (DateRange, error) {
	r := DateRange{From: from, To: to}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// QuarterOf returns the calendar quarter containing d.
func QuarterOf(d Date) DateRange {
	return DateRange{From: d.StartOfQuarter(), To: d.EndOfQuarter()}
}

// Validate reports ErrInvalidDateRange when From is after To.
func (r DateRange) Validate() error {
	if r.From.After(r.To) {
		return fmt.Errorf("%w: %s is after %s", ErrInvalidDateRange, r.From, r.To)
	}
	return nil
}

// Contains reports whether d lies within the range, bounds included.
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.From) && !d.After(r.To)
}

// Days is the whole-day difference between To and From.
func (r DateRange) Days() int {
	return r.From.DaysUntil(r.To)
}

// Shift moves both bounds by n days.
func (r DateRange) Shift(n int) DateRange {
	return DateRange{From: r.From.AddDays(n), To: r.To.AddDays(n)}
}

func (r DateRange) String() string {
	return r.From.String() + ".." + r.To.String()
}
