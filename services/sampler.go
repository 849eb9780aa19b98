package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"sensor-dashboard/metrics"
	"sensor-dashboard/models"
	"sensor-dashboard/utils"
)

// DefaultInterval is the sampling cadence of the dashboards.
const DefaultInterval = 3 * time.Second

type SamplerConfig struct {
	Buffer     *RollingBuffer
	Generator  Generator
	Interval   time.Duration
	TrendField string
	Sinks      []ReadingSink
	History    *HistoryCache // optional
}

// Sampler is the periodic task behind the dashboards: every interval it
// generates one reading, records it and fans the result out.
type Sampler struct {
	buffer     *RollingBuffer
	generator  Generator
	interval   time.Duration
	trendField string
	sinks      []ReadingSink
	history    *HistoryCache

	mu        sync.RWMutex
	listeners []func(models.Update)

	// tickMu serialises ticks so history is always saved newest last.
	tickMu sync.Mutex

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSampler(cfg SamplerConfig) (*Sampler, error) {
	if cfg.Buffer == nil {
		return nil, errors.New("sampler: buffer is required")
	}
	if cfg.Generator == nil {
		return nil, errors.New("sampler: generator is required")
	}
	if cfg.Interval < 0 {
		return nil, fmt.Errorf("sampler: interval must be positive, got %s", cfg.Interval)
	}
	if cfg.Interval == 0 {
		cfg.Interval = DefaultInterval
	}
	return &Sampler{
		buffer:     cfg.Buffer,
		generator:  cfg.Generator,
		interval:   cfg.Interval,
		trendField: cfg.TrendField,
		sinks:      cfg.Sinks,
		history:    cfg.History,
	}, nil
}

// Subscribe registers fn to receive every Update. fn runs on the ticking
// goroutine and must not block.
func (s *Sampler) Subscribe(fn func(models.Update)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Sampler) Interval() time.Duration { return s.interval }

func (s *Sampler) TrendField() string { return s.trendField }

// Restore loads the saved window into the buffer. It returns how many
// readings were restored.
func (s *Sampler) Restore(ctx context.Context) (int, error) {
	if s.history == nil {
		return 0, nil
	}
	readings, err := s.history.Restore(ctx)
	if err != nil {
		return 0, err
	}
	if len(readings) == 0 {
		return 0, nil
	}
	s.buffer.Reset(readings)
	return s.buffer.Len(), nil
}

// Tick generates and records one reading. Concurrent calls run one at a
// time.
func (s *Sampler) Tick(ctx context.Context) (models.Update, error) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	r, err := s.generator.Generate(ctx)
	if err != nil {
		metrics.IncrementGenerateErrors()
		return models.Update{}, fmt.Errorf("sampler: generate: %w", err)
	}

	s.buffer.Append(r)
	snapshot := s.buffer.Snapshot()

	update := models.Update{Reading: r.Clone(), Length: len(snapshot)}
	metrics.ObserveTick(len(snapshot), r.Values)

	if s.trendField != "" {
		update.Trend = DescribeTrend(s.trendField, snapshot)
		var slope float64
		if update.Trend.Trend != nil {
			slope = update.Trend.Trend.Slope
		}
		metrics.ObserveTrend(s.trendField, update.Trend.Available, slope)
	}

	for _, sink := range s.sinks {
		if err := sink.Save(ctx, r); err != nil {
			metrics.IncrementSinkErrors(sink.Name())
			utils.LogSinkFailure(sink.Name(), r.Timestamp, err)
		}
	}

	s.saveHistory(ctx, snapshot)
	s.notify(update)

	utils.Debug("recorded reading at %s (%d/%d)", r.Timestamp, update.Length, s.buffer.Capacity())
	return update, nil
}

func (s *Sampler) saveHistory(ctx context.Context, snapshot []models.Reading) {
	if s.history == nil {
		return
	}
	if err := s.history.Save(ctx, snapshot); err != nil {
		metrics.IncrementSinkErrors("redis")
		utils.Warn("history save failed: %v", err)
	}
}

func (s *Sampler) notify(u models.Update) {
	s.mu.RLock()
	listeners := append([]func(models.Update){}, s.listeners...)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(u)
	}
}

// Run ticks once immediately and then every interval until ctx is done.
// A failed tick is logged and the loop carries on.
func (s *Sampler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.Tick(ctx); err != nil {
			utils.Error("%v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Start runs the loop in the background. Call Stop to end it; starting a
// running sampler does nothing.
func (s *Sampler) Start(ctx context.Context) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	go func() {
		defer close(done)
		s.Run(ctx)
	}()
}

// Stop ends the loop started by Start and saves the final window.
func (s *Sampler) Stop() {
	s.runMu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.runMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	ctx, timeout := context.WithTimeout(context.Background(), 5*time.Second)
	defer timeout()

	s.tickMu.Lock()
	defer s.tickMu.Unlock()
	s.saveHistory(ctx, s.buffer.Snapshot())
}
