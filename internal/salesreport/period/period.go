// Package period turns named report periods and explicit date ranges into
// half-open time ranges with their bucket boundaries.
package period

import (
	"errors"
	"strings"
	"time"
)

type Period string

const (
	Today  Period = "today"
	Week   Period = "week"
	Month  Period = "month"
	Year   Period = "year"
	Custom Period = "custom"
)

type Granularity string

const (
	GranularityHour  Granularity = "hour"
	GranularityDay   Granularity = "day"
	GranularityMonth Granularity = "month"
)

const (
	DateLayout = "2006-01-02"

	hourLabelLayout = "2006-01-02 15:00"

	// yearStrideDays approximates a month when building the year series.
	yearStrideDays = 30
	yearBuckets    = 12
)

var (
	ErrInvalidPeriod = errors.New("invalid_period")
	ErrMissingRange  = errors.New("missing_range")
	ErrInvalidDate   = errors.New("invalid_date")
	ErrStartAfterEnd = errors.New("start_after_end")
	ErrRangeTooLong  = errors.New("range_too_long")
)

// Bucket is the half-open interval [Start, End).
type Bucket struct {
	Label string
	Start time.Time
	End   time.Time
}

type Range struct {
	Period      Period
	Granularity Granularity
	Start       time.Time
	End         time.Time
	Buckets     []Bucket
}

type Request struct {
	Period  string
	Start   string
	End     string
	MaxDays int
}

// Resolve computes the range for req relative to now. Calendar boundaries are
// taken in loc; every returned instant is UTC. An empty period with both
// dates set is treated as custom.
func Resolve(now time.Time, loc *time.Location, req Request) (Range, error) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)

	p := Period(strings.ToLower(strings.TrimSpace(req.Period)))
	if p == "" && (strings.TrimSpace(req.Start) != "" || strings.TrimSpace(req.End) != "") {
		p = Custom
	}

	switch p {
	case Today:
		return hourly(local), nil
	case Week:
		return daily(Week, startOfDay(local), 7), nil
	case Month:
		return daily(Month, startOfDay(local), 30), nil
	case Year:
		return yearly(local), nil
	case Custom:
		return custom(loc, req)
	default:
		return Range{}, ErrInvalidPeriod
	}
}

// Day returns the calendar day containing now.
func Day(now time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	start := startOfDay(now.In(loc))
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}

// CalendarMonth returns the calendar month containing now.
func CalendarMonth(now time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	return start.UTC(), start.AddDate(0, 1, 0).UTC()
}

// TrailingDays is the daily series of n days ending with today.
func TrailingDays(now time.Time, loc *time.Location, n int) Range {
	if loc == nil {
		loc = time.UTC
	}
	return daily(Week, startOfDay(now.In(loc)), n)
}

func hourly(local time.Time) Range {
	current := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), 0, 0, 0, local.Location())
	buckets := make([]Bucket, 0, 24)
	for i := 23; i >= 0; i-- {
		start := current.Add(-time.Duration(i) * time.Hour)
		buckets = append(buckets, Bucket{
			Label: start.Format(hourLabelLayout),
			Start: start.UTC(),
			End:   start.Add(time.Hour).UTC(),
		})
	}
	return newRange(Today, GranularityHour, buckets)
}

// daily builds n day buckets, the last one being the day starting at today.
func daily(p Period, today time.Time, n int) Range {
	first := today.AddDate(0, 0, -(n - 1))
	return newRange(p, GranularityDay, dayBuckets(first, n))
}

func yearly(local time.Time) Range {
	tomorrow := startOfDay(local).AddDate(0, 0, 1)
	buckets := make([]Bucket, 0, yearBuckets)
	for i := yearBuckets - 1; i >= 0; i-- {
		end := tomorrow.AddDate(0, 0, -i*yearStrideDays)
		start := end.AddDate(0, 0, -yearStrideDays)
		buckets = append(buckets, Bucket{
			Label: start.Format(DateLayout),
			Start: start.UTC(),
			End:   end.UTC(),
		})
	}
	return newRange(Year, GranularityMonth, buckets)
}

func custom(loc *time.Location, req Request) (Range, error) {
	rawStart, rawEnd := strings.TrimSpace(req.Start), strings.TrimSpace(req.End)
	if rawStart == "" || rawEnd == "" {
		return Range{}, ErrMissingRange
	}
	start, err := time.ParseInLocation(DateLayout, rawStart, loc)
	if err != nil {
		return Range{}, ErrInvalidDate
	}
	end, err := time.ParseInLocation(DateLayout, rawEnd, loc)
	if err != nil {
		return Range{}, ErrInvalidDate
	}
	if start.After(end) {
		return Range{}, ErrStartAfterEnd
	}

	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days++
		if req.MaxDays > 0 && days > req.MaxDays {
			return Range{}, ErrRangeTooLong
		}
	}
	return newRange(Custom, GranularityDay, dayBuckets(start, days)), nil
}

func dayBuckets(first time.Time, n int) []Bucket {
	buckets := make([]Bucket, 0, n)
	for i := 0; i < n; i++ {
		start := first.AddDate(0, 0, i)
		buckets = append(buckets, Bucket{
			Label: start.Format(DateLayout),
			Start: start.UTC(),
			End:   start.AddDate(0, 0, 1).UTC(),
		})
	}
	return buckets
}

func newRange(p Period, g Granularity, buckets []Bucket) Range {
	r := Range{Period: p, Granularity: g, Buckets: buckets}
	if len(buckets) > 0 {
		r.Start = buckets[0].Start
		r.End = buckets[len(buckets)-1].End
	}
	return r
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
