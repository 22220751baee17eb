package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ndelgado/cargotrack/internal/adapter/rates"
	domainErrors "github.com/ndelgado/cargotrack/internal/domain/errors"
	"github.com/ndelgado/cargotrack/internal/domain/model"
	testhelpers "github.com/ndelgado/cargotrack/internal/test"
)

type stubSource struct {
	name  string
	value float64
	err   error
	calls int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(ctx context.Context) (float64, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	return s.value, nil
}

var testPair = rates.PairConfig{Base: "USD", Quote: "VES", Min: 1, Max: 1000}

func newTestResolver(sources []rates.Source, history *testhelpers.RateRepositoryStub, defaultRate float64) *RateResolver {
	return NewRateResolver(sources, testPair, history, time.Second, 24*time.Hour, defaultRate, testLogger())
}

func TestResolveFirstSuccessWins(t *testing.T) {
	failing := &stubSource{name: "BCV", err: errors.New("timeout")}
	winner := &stubSource{name: "DolarAPI", value: 36.5}
	unused := &stubSource{name: "ExchangeRate-API", value: 99}
	history := testhelpers.NewRateRepositoryStub()

	r := newTestResolver([]rates.Source{failing, winner, unused}, history, 40)

	res, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Rate != 36.5 || res.Source != "DolarAPI" {
		t.Fatalf("expected DolarAPI 36.5, got %s %v", res.Source, res.Rate)
	}
	if res.IsFromHistory || res.Warning != "" {
		t.Fatalf("fresh value must carry no degradation markers: %+v", res)
	}
	if unused.calls != 0 {
		t.Fatalf("remaining providers must not be tried after first success")
	}
	if len(history.Records) != 1 {
		t.Fatalf("expected exactly 1 persisted record, got %d", len(history.Records))
	}
	rec := history.Records[0]
	if rec.IsFallback || rec.Source != "DolarAPI" || rec.Rate != 36.5 {
		t.Fatalf("unexpected persisted record %+v", rec)
	}
}

func TestResolveImplausibleValueSkipsProvider(t *testing.T) {
	implausible := &stubSource{name: "BCV", value: 1e6}
	sane := &stubSource{name: "DolarAPI", value: 36.1}
	history := testhelpers.NewRateRepositoryStub()

	r := newTestResolver([]rates.Source{implausible, sane}, history, 40)

	res, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Source != "DolarAPI" {
		t.Fatalf("expected implausible value to be skipped, got source %s", res.Source)
	}
}

func TestResolveFallsBackToFreshHistory(t *testing.T) {
	history := testhelpers.NewRateRepositoryStub()
	now := time.Now()

	if err := history.Insert(context.Background(), &model.ExchangeRateRecord{
		Rate: 36.2, Source: "BCV", Timestamp: now.Add(-30 * time.Minute),
	}); err != nil {
		t.Fatalf("seed history: %v", err)
	}

	down := &stubSource{name: "BCV", err: errors.New("network down")}
	r := newTestResolver([]rates.Source{down}, history, 40)
	r.now = func() time.Time { return now }

	res, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Rate != 36.2 || !res.IsFromHistory {
		t.Fatalf("expected history replay, got %+v", res)
	}
	if res.AgeMinutes < 29 || res.AgeMinutes > 31 {
		t.Fatalf("expected age of about 30 minutes, got %v", res.AgeMinutes)
	}
	if res.Warning == "" {
		t.Fatal("history replay must carry a warning")
	}
	if len(history.Records) != 2 {
		t.Fatalf("expected a fallback record to be appended, got %d records", len(history.Records))
	}
	if !history.Records[1].IsFallback {
		t.Fatal("appended record must be marked fallback")
	}
}

func TestResolveFallsThroughToAnyRecordWhenHistoryStale(t *testing.T) {
	history := testhelpers.NewRateRepositoryStub()
	now := time.Now()

	if err := history.Insert(context.Background(), &model.ExchangeRateRecord{
		Rate: 35.0, Source: "BCV", Timestamp: now.Add(-48 * time.Hour),
	}); err != nil {
		t.Fatalf("seed history: %v", err)
	}

	down := &stubSource{name: "BCV", err: errors.New("boom")}
	r := newTestResolver([]rates.Source{down}, history, 40)
	r.now = func() time.Time { return now }

	res, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Rate != 35.0 || !res.IsFromHistory {
		t.Fatalf("expected stale record replay, got %+v", res)
	}
	if !strings.Contains(res.Warning, "stale") {
		t.Fatalf("expected staleness warning, got %q", res.Warning)
	}
}

func TestSweepNeverDeletesLastKnownRecord(t *testing.T) {
	history := testhelpers.NewRateRepositoryStub()
	now := time.Now()

	if err := history.Insert(context.Background(), &model.ExchangeRateRecord{
		Rate: 35.5, Source: "BCV", Timestamp: now.Add(-40 * 24 * time.Hour),
	}); err != nil {
		t.Fatalf("seed history: %v", err)
	}

	deleted, err := history.DeleteOlderThan(context.Background(), now.Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("the only record must survive the sweep, %d deleted", deleted)
	}

	rec, err := history.LatestAny(context.Background())
	if err != nil {
		t.Fatalf("last known record must stay queryable: %v", err)
	}
	if rec.Rate != 35.5 {
		t.Fatalf("unexpected record %+v", rec)
	}

	// A resolver with every provider down still serves the survivor.
	down := &stubSource{name: "BCV", err: errors.New("boom")}
	r := newTestResolver([]rates.Source{down}, history, 0)
	r.now = func() time.Time { return now }

	res, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Rate != 35.5 || !res.IsFromHistory {
		t.Fatalf("expected survivor replay, got %+v", res)
	}
}

func TestResolveUsesHardcodedDefaultOnEmptyStore(t *testing.T) {
	history := testhelpers.NewRateRepositoryStub()
	down := &stubSource{name: "BCV", err: errors.New("boom")}

	r := newTestResolver([]rates.Source{down}, history, 40)

	res, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Rate != 40 || res.Source != model.RateSourceDefault {
		t.Fatalf("expected hardcoded default, got %+v", res)
	}
	if res.Warning == "" {
		t.Fatal("default must carry a warning")
	}
	if len(history.Records) != 1 {
		t.Fatalf("expected 1 fallback record, got %d", len(history.Records))
	}
	if !history.Records[0].IsFallback {
		t.Fatal("persisted default must be marked fallback")
	}
}

func TestResolveFailsOnlyWhenChainIsExhausted(t *testing.T) {
	history := testhelpers.NewRateRepositoryStub()
	r := newTestResolver(nil, history, 0)

	if _, err := r.Resolve(context.Background()); !errors.Is(err, domainErrors.ErrNoRateAvailable) {
		t.Fatalf("expected ErrNoRateAvailable, got %v", err)
	}
}

func TestResolveSurvivesPersistFailure(t *testing.T) {
	history := testhelpers.NewRateRepositoryStub()
	history.InsertErr = errors.New("db down")
	ok := &stubSource{name: "BCV", value: 36.9}

	r := newTestResolver([]rates.Source{ok}, history, 40)

	res, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("resolved rate must survive persistence failure: %v", err)
	}
	if res.Rate != 36.9 {
		t.Fatalf("unexpected rate %v", res.Rate)
	}
}
