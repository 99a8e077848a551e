package services

import (
	"fmt"
	"time"

	"staffhub-report/internal/models"

	"github.com/robfig/cron/v3"
)

// cronParser accepts standard 5-field cron with an optional leading seconds
// field, plus descriptors like "@daily".
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ComputeNextRun maps a schedule specification plus "now" to the next
// execution instant. It is a pure function: identical inputs yield identical
// outputs, and a later now never yields an earlier instant.
//
// All frequencies anchor to schedule.Time in schedule.Timezone; the result
// is always strictly after now.
func ComputeNextRun(s models.Schedule, now time.Time) (time.Time, error) {
	loc := time.UTC
	if s.Timezone != "" {
		var err error
		loc, err = time.LoadLocation(s.Timezone)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid timezone %q: %w", s.Timezone, err)
		}
	}
	local := now.In(loc)

	anchor := func(year int, month time.Month, day int) time.Time {
		return time.Date(year, month, day, s.Time.Hour, s.Time.Minute, 0, 0, loc)
	}

	switch s.Frequency {
	case models.FrequencyDaily:
		next := anchor(local.Year(), local.Month(), local.Day())
		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}
		return next, nil

	case models.FrequencyWeekly:
		days := (s.DayOfWeek - int(local.Weekday()) + 7) % 7
		next := anchor(local.Year(), local.Month(), local.Day()+days)
		if !next.After(now) {
			next = next.AddDate(0, 0, 7)
		}
		return next, nil

	case models.FrequencyMonthly:
		next := monthlyAnchor(local.Year(), local.Month(), s.DayOfMonth, s.Time, loc)
		if !next.After(now) {
			year, month := local.Year(), local.Month()+1
			if month > time.December {
				year++
				month = time.January
			}
			next = monthlyAnchor(year, month, s.DayOfMonth, s.Time, loc)
		}
		return next, nil

	case models.FrequencyQuarterly:
		// Quarter boundaries are the first days of January, April, July, October
		quarter := (int(local.Month())-1)/3 + 1
		year, month := local.Year(), time.Month(quarter*3+1)
		if month > time.December {
			year++
			month -= 12
		}
		next := anchor(year, month, 1)
		if !next.After(now) {
			next = next.AddDate(0, 3, 0)
		}
		return next, nil

	case models.FrequencyYearly:
		next := anchor(local.Year(), time.January, 1)
		if !next.After(now) {
			next = anchor(local.Year()+1, time.January, 1)
		}
		return next, nil

	case models.FrequencyCustom:
		sched, err := cronParser.Parse(s.CronExpression)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid cron expression %q: %w", s.CronExpression, err)
		}
		return sched.Next(now.In(loc)), nil
	}

	return time.Time{}, fmt.Errorf("unknown frequency %q", s.Frequency)
}

// monthlyAnchor clamps the day to the last valid day of the month, so a
// day-31 schedule fires on Feb 28/29, Apr 30, and so on.
func monthlyAnchor(year int, month time.Month, day int, tod models.TimeOfDay, loc *time.Location) time.Time {
	last := time.Date(year, month+1, 1, 0, 0, 0, 0, loc).AddDate(0, 0, -1).Day()
	if day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(year, month, day, tod.Hour, tod.Minute, 0, 0, loc)
}

// ValidateSchedule checks frequency-specific requirements before a scheduled
// report is saved
func ValidateSchedule(s models.Schedule) error {
	if s.Time.Hour < 0 || s.Time.Hour > 23 || s.Time.Minute < 0 || s.Time.Minute > 59 {
		return fmt.Errorf("invalid anchor time %02d:%02d", s.Time.Hour, s.Time.Minute)
	}
	if s.Timezone != "" {
		if _, err := time.LoadLocation(s.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", s.Timezone, err)
		}
	}

	switch s.Frequency {
	case models.FrequencyDaily, models.FrequencyQuarterly, models.FrequencyYearly:
		return nil
	case models.FrequencyWeekly:
		if s.DayOfWeek < 0 || s.DayOfWeek > 6 {
			return fmt.Errorf("WEEKLY schedule requires dayOfWeek between 0 and 6, got %d", s.DayOfWeek)
		}
		return nil
	case models.FrequencyMonthly:
		if s.DayOfMonth < 1 || s.DayOfMonth > 31 {
			return fmt.Errorf("MONTHLY schedule requires dayOfMonth between 1 and 31, got %d", s.DayOfMonth)
		}
		return nil
	case models.FrequencyCustom:
		if _, err := cronParser.Parse(s.CronExpression); err != nil {
			return fmt.Errorf("invalid cron expression %q: %w", s.CronExpression, err)
		}
		return nil
	}
	return fmt.Errorf("unknown frequency %q", s.Frequency)
}
