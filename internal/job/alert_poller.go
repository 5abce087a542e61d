package job

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel/trace"
)

type AlertRunner interface {
	CheckAlertsWindow(ctx context.Context, window time.Duration) (map[string]map[string]string, error)
}

// AlertPoller polls the mailbox on a fixed interval. The first cycle
// looks further back to catch alerts delivered while the process was
// down; every later cycle uses the regular window.
type AlertPoller struct {
	tracer       trace.Tracer
	runner       AlertRunner
	pollInterval time.Duration
	window       time.Duration
	backfill     time.Duration
}

func NewAlertPoller(tracer trace.Tracer, runner AlertRunner, pollInterval, window, backfill time.Duration) *AlertPoller {
	return &AlertPoller{
		tracer:       tracer,
		runner:       runner,
		pollInterval: pollInterval,
		window:       window,
		backfill:     backfill,
	}
}

func (p *AlertPoller) Start(ctx context.Context) {
	if p.runner == nil || p.pollInterval <= 0 {
		log.Println("Alert poller disabled")
		<-ctx.Done()
		return
	}

	p.runOnce(ctx, p.backfill)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.runOnce(ctx, p.window)
		}
	}
}

func (p *AlertPoller) runOnce(ctx context.Context, window time.Duration) {
	ctx, span := p.tracer.Start(ctx, "alert-poller.run-once")
	defer span.End()

	alerts, err := p.runner.CheckAlertsWindow(ctx, window)
	if err != nil {
		log.Printf("Alert polling cycle error: %v", err)
		return
	}
	if len(alerts) > 0 {
		log.Printf("Alert polling cycle merged updates for %d symbols", len(alerts))
	}
}
