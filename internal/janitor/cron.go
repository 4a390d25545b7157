package janitor

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shaiso/todos/internal/config"
)

// cronParser — стандартный 5-полевой формат (минута, час, день, месяц, день недели).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSchedule разбирает cron-выражение.
// Расписание, которое никогда не срабатывает, отклоняется с config.ErrCronNeverFires.
func ParseSchedule(expr string) (cron.Schedule, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parse cron expression %q: %w", expr, err)
	}
	if NextRun(sched, time.Now()).IsZero() {
		return nil, fmt.Errorf("cron expression %q: %w", expr, config.ErrCronNeverFires)
	}
	return sched, nil
}

// NextRun возвращает следующее время запуска после from.
// Нулевое время означает, что расписание больше не сработает.
func NextRun(sched cron.Schedule, from time.Time) time.Time {
	return sched.Next(from)
}
