package service

import (
	"context"
	"time"
)

func (e *ScheduleExecutor) SetSleep(fn func(ctx context.Context, d time.Duration) error) {
	e.sleep = fn
}
