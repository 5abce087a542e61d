package job

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"market-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

func TestCalendarJobRunsAtStartup(t *testing.T) {
	var calls int32
	runner := &calendarRunnerTestStub{calls: &calls}
	job := NewCalendarJob(trace.NewNoopTracerProvider().Tracer("test"), runner, "0 */6 * * *")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	if atomic.LoadInt32(&calls) == 0 {
		t.Fatal("expected a refresh at startup")
	}
}

func TestCalendarJobDisabledWithoutSchedule(t *testing.T) {
	var calls int32
	runner := &calendarRunnerTestStub{calls: &calls}
	job := NewCalendarJob(trace.NewNoopTracerProvider().Tracer("test"), runner, "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	if atomic.LoadInt32(&calls) != 0 {
		t.Fatal("disabled job must not refresh")
	}
}

type calendarRunnerTestStub struct {
	calls *int32
}

func (s *calendarRunnerTestStub) Refresh(ctx context.Context) ([]domain.EconomicIndicatorRow, error) {
	atomic.AddInt32(s.calls, 1)
	return nil, nil
}
