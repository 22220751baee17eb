package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ndelgado/cargotrack/internal/domain/model"
	testhelpers "github.com/ndelgado/cargotrack/internal/test"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestRateMaintainerSweeps(t *testing.T) {
	facade := &testhelpers.RateFacadeStub{}
	retention := 30 * 24 * time.Hour

	var gotCutoff time.Time
	facade.SweepFn = func(_ context.Context, cutoff time.Time) (int64, error) {
		gotCutoff = cutoff
		return 2, nil
	}

	m := NewRateMaintainer(facade, 10*time.Millisecond, retention, 0, testLogger())
	m.Start(context.Background())
	time.Sleep(60 * time.Millisecond)
	m.Stop()

	if facade.SweepCalls() == 0 {
		t.Fatal("expected at least one sweep")
	}
	if facade.ResolveCalls() != 0 {
		t.Fatalf("refresh disabled, but ResolveRate ran %d times", facade.ResolveCalls())
	}
	wantCutoff := time.Now().Add(-retention)
	if gotCutoff.Before(wantCutoff.Add(-time.Minute)) || gotCutoff.After(wantCutoff.Add(time.Minute)) {
		t.Fatalf("cutoff %v not near retention horizon %v", gotCutoff, wantCutoff)
	}
}

func TestRateMaintainerRefreshLoop(t *testing.T) {
	facade := &testhelpers.RateFacadeStub{}

	m := NewRateMaintainer(facade, time.Hour, time.Hour, 10*time.Millisecond, testLogger())
	m.Start(context.Background())
	time.Sleep(60 * time.Millisecond)
	m.Stop()

	if facade.ResolveCalls() == 0 {
		t.Fatal("expected at least one background refresh")
	}
}

func TestRateMaintainerSurvivesFacadeErrors(t *testing.T) {
	facade := &testhelpers.RateFacadeStub{
		SweepFn: func(context.Context, time.Time) (int64, error) {
			return 0, errors.New("db down")
		},
		ResolveFn: func(context.Context) (*model.RateResolution, error) {
			return nil, errors.New("providers down")
		},
	}

	m := NewRateMaintainer(facade, 10*time.Millisecond, time.Hour, 10*time.Millisecond, testLogger())
	m.Start(context.Background())
	time.Sleep(60 * time.Millisecond)
	m.Stop()

	if facade.SweepCalls() < 2 {
		t.Fatalf("expected sweeps to keep running after errors, got %d", facade.SweepCalls())
	}
	if facade.ResolveCalls() < 2 {
		t.Fatalf("expected refreshes to keep running after errors, got %d", facade.ResolveCalls())
	}
}

func TestRateMaintainerStopIsIdempotent(t *testing.T) {
	m := NewRateMaintainer(&testhelpers.RateFacadeStub{}, time.Hour, time.Hour, 0, testLogger())
	m.Start(context.Background())
	m.Stop()
	m.Stop()
}
