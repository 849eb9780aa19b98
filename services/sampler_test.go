package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"sensor-dashboard/models"
)

type recordingSink struct {
	mu    sync.Mutex
	name  string
	saved []models.Reading
	err   error
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Save(_ context.Context, r models.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, r)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

func newTestSampler(t *testing.T, capacity int, readings []models.Reading, cfg SamplerConfig) *Sampler {
	t.Helper()
	buf, err := NewRollingBuffer(capacity)
	if err != nil {
		t.Fatalf("NewRollingBuffer: %v", err)
	}
	cfg.Buffer = buf
	cfg.Generator = NewSequenceGenerator(readings, false)
	s, err := NewSampler(cfg)
	if err != nil {
		t.Fatalf("NewSampler: %v", err)
	}
	return s
}

func TestNewSamplerValidation(t *testing.T) {
	buf, _ := NewRollingBuffer(2)
	gen := NewSequenceGenerator(nil, false)

	if _, err := NewSampler(SamplerConfig{Generator: gen}); err == nil {
		t.Fatalf("expected error without buffer")
	}
	if _, err := NewSampler(SamplerConfig{Buffer: buf}); err == nil {
		t.Fatalf("expected error without generator")
	}
	if _, err := NewSampler(SamplerConfig{Buffer: buf, Generator: gen, Interval: -time.Second}); err == nil {
		t.Fatalf("expected error for negative interval")
	}

	s, err := NewSampler(SamplerConfig{Buffer: buf, Generator: gen})
	if err != nil {
		t.Fatalf("NewSampler: %v", err)
	}
	if s.Interval() != DefaultInterval {
		t.Fatalf("interval = %v, want %v", s.Interval(), DefaultInterval)
	}
}

func TestSamplerTickRecordsAndReportsTrend(t *testing.T) {
	s := newTestSampler(t, 3, []models.Reading{reading(1), reading(2), reading(3), reading(4)},
		SamplerConfig{TrendField: "temperature"})
	ctx := context.Background()

	u, err := s.Tick(ctx)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if u.Length != 1 || u.Trend.Available {
		t.Fatalf("first tick: length=%d available=%v", u.Length, u.Trend.Available)
	}
	if u.Trend.Reason == "" {
		t.Fatalf("expected a warm-up reason")
	}

	for i := 0; i < 3; i++ {
		if u, err = s.Tick(ctx); err != nil {
			t.Fatalf("Tick %d: %v", i, err)
		}
	}
	if u.Length != 3 {
		t.Fatalf("length = %d, want 3", u.Length)
	}
	if !u.Trend.Available || u.Trend.Trend == nil {
		t.Fatalf("expected an available trend, got %#v", u.Trend)
	}
	// window holds 2,3,4: slope 1, intercept 2
	if d := u.Trend.Trend.Slope - 1; d > eps || d < -eps {
		t.Fatalf("slope = %v, want 1", u.Trend.Trend.Slope)
	}
	if d := u.Trend.Trend.Intercept - 2; d > eps || d < -eps {
		t.Fatalf("intercept = %v, want 2", u.Trend.Trend.Intercept)
	}
	if u.Reading.Timestamp != reading(4).Timestamp {
		t.Fatalf("update carries %s, want newest reading", u.Reading.Timestamp)
	}
}

func TestSamplerTickGeneratorError(t *testing.T) {
	s := newTestSampler(t, 2, nil, SamplerConfig{})
	if _, err := s.Tick(context.Background()); !errors.Is(err, ErrSequenceExhausted) {
		t.Fatalf("expected ErrSequenceExhausted, got %v", err)
	}
}

func TestSamplerSinkFailureDoesNotAbortTick(t *testing.T) {
	bad := &recordingSink{name: "bad", err: errors.New("disk full")}
	good := &recordingSink{name: "good"}
	s := newTestSampler(t, 2, []models.Reading{reading(1)}, SamplerConfig{Sinks: []ReadingSink{bad, good}})

	u, err := s.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if u.Length != 1 {
		t.Fatalf("reading not recorded: length=%d", u.Length)
	}
	if bad.count() != 1 || good.count() != 1 {
		t.Fatalf("sinks called bad=%d good=%d, want 1 each", bad.count(), good.count())
	}
}

func TestSamplerSubscribers(t *testing.T) {
	s := newTestSampler(t, 2, []models.Reading{reading(1), reading(2)}, SamplerConfig{})

	var got []models.Update
	s.Subscribe(func(u models.Update) { got = append(got, u) })

	for i := 0; i < 2; i++ {
		if _, err := s.Tick(context.Background()); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}
	if len(got) != 2 || got[1].Length != 2 {
		t.Fatalf("unexpected updates: %#v", got)
	}
}

func TestSamplerHistorySaveAndRestore(t *testing.T) {
	kv := newFakeKV()
	history := NewHistoryCache(kv, time.Minute)

	first := newTestSampler(t, 2, []models.Reading{reading(1), reading(2), reading(3)}, SamplerConfig{History: history})
	for i := 0; i < 3; i++ {
		if _, err := first.Tick(context.Background()); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}

	second := newTestSampler(t, 2, nil, SamplerConfig{History: history})
	n, err := second.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if n != 2 {
		t.Fatalf("restored %d readings, want 2", n)
	}
	snap := second.buffer.Snapshot()
	if snap[0].Timestamp != reading(2).Timestamp || snap[1].Timestamp != reading(3).Timestamp {
		t.Fatalf("unexpected restored window: %#v", snap)
	}
}

func TestSamplerRestoreWithoutHistory(t *testing.T) {
	s := newTestSampler(t, 2, nil, SamplerConfig{})
	if n, err := s.Restore(context.Background()); n != 0 || err != nil {
		t.Fatalf("Restore = %d, %v; want 0, nil", n, err)
	}
}

func TestSamplerStartStop(t *testing.T) {
	readings := make([]models.Reading, 0, 50)
	for i := 0; i < 50; i++ {
		readings = append(readings, reading(i%60))
	}
	s := newTestSampler(t, 5, readings, SamplerConfig{Interval: time.Millisecond})

	ticked := make(chan struct{}, 64)
	s.Subscribe(func(models.Update) {
		select {
		case ticked <- struct{}{}:
		default:
		}
	})

	s.Start(context.Background())
	for i := 0; i < 3; i++ {
		select {
		case <-ticked:
		case <-time.After(2 * time.Second):
			t.Fatalf("sampler did not tick")
		}
	}
	s.Stop()
	s.Stop()

	n := s.buffer.Len()
	time.Sleep(10 * time.Millisecond)
	if s.buffer.Len() != n {
		t.Fatalf("buffer still growing after Stop")
	}
	if n < 3 {
		t.Fatalf("len = %d, want at least 3", n)
	}
}

func TestSamplerConcurrentTicksSaveNewestHistory(t *testing.T) {
	kv := newFakeKV()
	history := NewHistoryCache(kv, time.Minute)

	readings := make([]models.Reading, 0, 40)
	for i := 0; i < 40; i++ {
		readings = append(readings, reading(i))
	}
	s := newTestSampler(t, 5, readings, SamplerConfig{History: history, TrendField: "temperature"})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				if _, err := s.Tick(context.Background()); err != nil {
					t.Errorf("Tick: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	saved, err := history.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	snap := s.buffer.Snapshot()
	if len(saved) != len(snap) {
		t.Fatalf("saved %d readings, buffer holds %d", len(saved), len(snap))
	}
	for i := range snap {
		if saved[i].Timestamp != snap[i].Timestamp {
			t.Fatalf("saved history is stale at %d: %s vs %s", i, saved[i].Timestamp, snap[i].Timestamp)
		}
	}
	// the sequence is consumed in order, so the newest reading is the last one
	if snap[len(snap)-1].Timestamp != reading(39).Timestamp {
		t.Fatalf("newest = %s, want %s", snap[len(snap)-1].Timestamp, reading(39).Timestamp)
	}
}

func TestSamplerConcurrentStartStop(t *testing.T) {
	readings := make([]models.Reading, 0, 20)
	for i := 0; i < 20; i++ {
		readings = append(readings, reading(i))
	}
	s := newTestSampler(t, 5, readings, SamplerConfig{Interval: time.Millisecond})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Start(context.Background())
		}()
		go func() {
			defer wg.Done()
			s.Stop()
		}()
	}
	wg.Wait()
	s.Stop()

	n := s.buffer.Len()
	time.Sleep(10 * time.Millisecond)
	if s.buffer.Len() != n {
		t.Fatalf("buffer still growing after Stop")
	}
}
