package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/steveandroulakis/money-transfer-demo/internal/domain"
)

// ErrEmptySpec — spec не содержит ни интервалов, ни cron-выражений.
var ErrEmptySpec = errors.New("schedule spec has neither intervals nor cron expressions")

// cronParser — парсер cron-выражений.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// NextDue вычисляет ближайшее время срабатывания spec после from.
// Из всех интервалов и cron-выражений выбирается самое раннее.
// Результат в UTC.
func NextDue(spec domain.ScheduleSpec, from time.Time) (time.Time, error) {
	if spec.IsEmpty() {
		return time.Time{}, ErrEmptySpec
	}

	var next time.Time
	pick := func(t time.Time) {
		if next.IsZero() || t.Before(next) {
			next = t
		}
	}

	for _, interval := range spec.Intervals {
		if interval <= 0 {
			return time.Time{}, fmt.Errorf("interval must be positive, got %s", interval)
		}
		pick(calculateNextInterval(interval, from))
	}

	for _, expr := range spec.CronExpressions {
		t, err := calculateNextCron(expr, from)
		if err != nil {
			return time.Time{}, err
		}
		pick(t)
	}

	return next, nil
}

// calculateNextCron вычисляет следующее время по cron-выражению.
func calculateNextCron(cronExpr string, from time.Time) (time.Time, error) {
	schedule, err := cronParser.Parse(cronExpr)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse cron expression %q: %w", cronExpr, err)
	}

	return schedule.Next(from).UTC(), nil
}

// calculateNextInterval вычисляет следующее время по интервалу.
func calculateNextInterval(interval time.Duration, from time.Time) time.Time {
	return from.Add(interval).UTC()
}

// ValidateCronExpr проверяет валидность cron-выражения.
func ValidateCronExpr(cronExpr string) error {
	_, err := cronParser.Parse(cronExpr)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", cronExpr, err)
	}
	return nil
}

// ValidateSpec проверяет spec целиком: хотя бы одно повторение,
// положительные интервалы, корректные cron-выражения.
func ValidateSpec(spec domain.ScheduleSpec) error {
	_, err := NextDue(spec, time.Now())
	return err
}
