package job

import (
	"context"
	"log"

	"market-pulse/internal/domain"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/trace"
)

type CalendarRunner interface {
	Refresh(ctx context.Context) ([]domain.EconomicIndicatorRow, error)
}

// CalendarJob refreshes the economic calendar on a cron schedule. It
// also runs one refresh at startup so the table is populated before
// the first scheduled tick.
type CalendarJob struct {
	tracer   trace.Tracer
	runner   CalendarRunner
	schedule string
}

func NewCalendarJob(tracer trace.Tracer, runner CalendarRunner, schedule string) *CalendarJob {
	return &CalendarJob{tracer: tracer, runner: runner, schedule: schedule}
}

func (j *CalendarJob) Start(ctx context.Context) {
	if j.runner == nil || j.schedule == "" {
		log.Println("Calendar job disabled")
		<-ctx.Done()
		return
	}

	j.runOnce(ctx)

	c := cron.New()
	if _, err := c.AddFunc(j.schedule, func() { j.runOnce(ctx) }); err != nil {
		log.Printf("Calendar job schedule %q invalid: %v", j.schedule, err)
		<-ctx.Done()
		return
	}
	c.Start()
	defer c.Stop()

	<-ctx.Done()
}

func (j *CalendarJob) runOnce(ctx context.Context) {
	ctx, span := j.tracer.Start(ctx, "calendar-job.run-once")
	defer span.End()

	rows, err := j.runner.Refresh(ctx)
	if err != nil {
		log.Printf("Calendar refresh error: %v", err)
		return
	}
	log.Printf("Calendar refresh complete, %d rows", len(rows))
}
