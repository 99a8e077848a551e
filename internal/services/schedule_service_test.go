package services

import (
	"testing"
	"time"

	"staffhub-report/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func TestComputeNextRunDaily(t *testing.T) {
	s := models.Schedule{
		Frequency: models.FrequencyDaily,
		Time:      models.TimeOfDay{Hour: 8, Minute: 0},
	}

	// Before today's anchor: fires today
	next, err := ComputeNextRun(s, at(2026, time.March, 9, 6, 0))
	require.NoError(t, err)
	assert.Equal(t, at(2026, time.March, 9, 8, 0), next)

	// After today's anchor: fires tomorrow
	next, err = ComputeNextRun(s, at(2026, time.March, 9, 10, 0))
	require.NoError(t, err)
	assert.Equal(t, at(2026, time.March, 10, 8, 0), next)

	// At the exact anchor instant: strictly after now
	next, err = ComputeNextRun(s, at(2026, time.March, 9, 8, 0))
	require.NoError(t, err)
	assert.Equal(t, at(2026, time.March, 10, 8, 0), next)
}

func TestComputeNextRunIsPure(t *testing.T) {
	s := models.Schedule{
		Frequency: models.FrequencyWeekly,
		DayOfWeek: 1,
		Time:      models.TimeOfDay{Hour: 9, Minute: 30},
	}
	now := at(2026, time.March, 11, 12, 0)

	first, err := ComputeNextRun(s, now)
	require.NoError(t, err)
	second, err := ComputeNextRun(s, now)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeNextRunWeekly(t *testing.T) {
	// 2026-03-11 is a Wednesday; dayOfWeek 1 is Monday
	s := models.Schedule{
		Frequency: models.FrequencyWeekly,
		DayOfWeek: 1,
		Time:      models.TimeOfDay{Hour: 8, Minute: 0},
	}

	next, err := ComputeNextRun(s, at(2026, time.March, 11, 10, 0))
	require.NoError(t, err)
	assert.Equal(t, at(2026, time.March, 16, 8, 0), next)
	assert.Equal(t, time.Monday, next.Weekday())

	// Same weekday before the anchor time: fires today
	next, err = ComputeNextRun(s, at(2026, time.March, 16, 6, 0))
	require.NoError(t, err)
	assert.Equal(t, at(2026, time.March, 16, 8, 0), next)

	// Same weekday after the anchor time: fires next week
	next, err = ComputeNextRun(s, at(2026, time.March, 16, 9, 0))
	require.NoError(t, err)
	assert.Equal(t, at(2026, time.March, 23, 8, 0), next)
}

func TestComputeNextRunMonthlyClampsDay(t *testing.T) {
	s := models.Schedule{
		Frequency:  models.FrequencyMonthly,
		DayOfMonth: 31,
		Time:       models.TimeOfDay{Hour: 7, Minute: 0},
	}

	// February has no day 31; clamp to the 28th
	next, err := ComputeNextRun(s, at(2026, time.February, 10, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, at(2026, time.February, 28, 7, 0), next)

	// After January 31 fired, the next occurrence rolls into February
	next, err = ComputeNextRun(s, at(2026, time.January, 31, 9, 0))
	require.NoError(t, err)
	assert.Equal(t, at(2026, time.February, 28, 7, 0), next)
}

func TestComputeNextRunQuarterly(t *testing.T) {
	s := models.Schedule{
		Frequency: models.FrequencyQuarterly,
		Time:      models.TimeOfDay{Hour: 6, Minute: 0},
	}

	next, err := ComputeNextRun(s, at(2026, time.February, 15, 12, 0))
	require.NoError(t, err)
	assert.Equal(t, at(2026, time.April, 1, 6, 0), next)

	next, err = ComputeNextRun(s, at(2026, time.November, 20, 12, 0))
	require.NoError(t, err)
	assert.Equal(t, at(2027, time.January, 1, 6, 0), next)
}

func TestComputeNextRunYearly(t *testing.T) {
	s := models.Schedule{
		Frequency: models.FrequencyYearly,
		Time:      models.TimeOfDay{Hour: 0, Minute: 0},
	}

	next, err := ComputeNextRun(s, at(2026, time.June, 1, 12, 0))
	require.NoError(t, err)
	assert.Equal(t, at(2027, time.January, 1, 0, 0), next)
}

func TestComputeNextRunCustomCron(t *testing.T) {
	s := models.Schedule{
		Frequency:      models.FrequencyCustom,
		CronExpression: "0 9 * * 1",
	}

	// 2026-03-11 is a Wednesday; next Monday 09:00
	next, err := ComputeNextRun(s, at(2026, time.March, 11, 10, 0))
	require.NoError(t, err)
	assert.Equal(t, at(2026, time.March, 16, 9, 0), next)
}

func TestComputeNextRunTimezone(t *testing.T) {
	s := models.Schedule{
		Frequency: models.FrequencyDaily,
		Time:      models.TimeOfDay{Hour: 8, Minute: 0},
		Timezone:  "America/New_York",
	}
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	next, err := ComputeNextRun(s, at(2026, time.March, 9, 23, 0))
	require.NoError(t, err)
	assert.Equal(t, 8, next.In(loc).Hour())
	assert.True(t, next.After(at(2026, time.March, 9, 23, 0)))
}

func TestComputeNextRunAlwaysAfterNow(t *testing.T) {
	schedules := []models.Schedule{
		{Frequency: models.FrequencyDaily, Time: models.TimeOfDay{Hour: 12, Minute: 0}},
		{Frequency: models.FrequencyWeekly, DayOfWeek: 5, Time: models.TimeOfDay{Hour: 23, Minute: 59}},
		{Frequency: models.FrequencyMonthly, DayOfMonth: 15, Time: models.TimeOfDay{Hour: 0, Minute: 0}},
		{Frequency: models.FrequencyQuarterly},
		{Frequency: models.FrequencyYearly},
	}
	nows := []time.Time{
		at(2026, time.January, 1, 0, 0),
		at(2026, time.June, 15, 12, 0),
		at(2026, time.December, 31, 23, 59),
	}

	for _, s := range schedules {
		for _, now := range nows {
			next, err := ComputeNextRun(s, now)
			require.NoError(t, err)
			assert.True(t, next.After(now), "frequency %s at %s gave %s", s.Frequency, now, next)
		}
	}
}

func TestComputeNextRunErrors(t *testing.T) {
	_, err := ComputeNextRun(models.Schedule{Frequency: "HOURLY"}, at(2026, time.March, 1, 0, 0))
	assert.Error(t, err)

	_, err = ComputeNextRun(models.Schedule{
		Frequency: models.FrequencyDaily, Timezone: "Mars/Olympus",
	}, at(2026, time.March, 1, 0, 0))
	assert.Error(t, err)

	_, err = ComputeNextRun(models.Schedule{
		Frequency: models.FrequencyCustom, CronExpression: "not a cron",
	}, at(2026, time.March, 1, 0, 0))
	assert.Error(t, err)
}

func TestValidateSchedule(t *testing.T) {
	cases := []struct {
		name  string
		s     models.Schedule
		valid bool
	}{
		{"daily", models.Schedule{Frequency: models.FrequencyDaily}, true},
		{"weekly valid", models.Schedule{Frequency: models.FrequencyWeekly, DayOfWeek: 6}, true},
		{"weekly out of range", models.Schedule{Frequency: models.FrequencyWeekly, DayOfWeek: 7}, false},
		{"monthly valid", models.Schedule{Frequency: models.FrequencyMonthly, DayOfMonth: 31}, true},
		{"monthly zero", models.Schedule{Frequency: models.FrequencyMonthly}, false},
		{"custom valid", models.Schedule{Frequency: models.FrequencyCustom, CronExpression: "*/5 * * * *"}, true},
		{"custom descriptor", models.Schedule{Frequency: models.FrequencyCustom, CronExpression: "@daily"}, true},
		{"custom invalid", models.Schedule{Frequency: models.FrequencyCustom, CronExpression: "bad"}, false},
		{"bad hour", models.Schedule{Frequency: models.FrequencyDaily, Time: models.TimeOfDay{Hour: 24}}, false},
		{"bad minute", models.Schedule{Frequency: models.FrequencyDaily, Time: models.TimeOfDay{Minute: 60}}, false},
		{"bad timezone", models.Schedule{Frequency: models.FrequencyDaily, Timezone: "Nowhere"}, false},
		{"unknown frequency", models.Schedule{Frequency: "HOURLY"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSchedule(tc.s)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
