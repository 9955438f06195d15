// Package scheduler periodically tops up OFFERED sessions for every ACTIVE
// template so the generation horizon keeps rolling forward.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Generator is the slice of the generator usecase the scheduler drives.
type Generator interface {
	GenerateAll(ctx context.Context, horizonDays int) (int, error)
}

type Config struct {
	Interval    time.Duration
	HorizonDays int
}

type Scheduler struct {
	gen    Generator
	cfg    Config
	log    *zap.SugaredLogger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	lastRun  time.Time
	lastErr  error
	runs     int64
	lastMade int
}

func New(gen Generator, cfg Config, log *zap.SugaredLogger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = 14
	}
	return &Scheduler{gen: gen, cfg: cfg, log: log}
}

// Start runs one pass immediately and then one per interval until Stop.
func (s *Scheduler) Start(parent context.Context) {
	s.ctx, s.cancel = context.WithCancel(parent)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		s.tick()
		for {
			select {
			case <-s.ctx.Done():
				s.log.Debugw("Scheduler stopping")
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
	s.log.Infow("Scheduler started", "interval", s.cfg.Interval, "horizon_days", s.cfg.HorizonDays)
}

func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) tick() {
	made, err := s.gen.GenerateAll(s.ctx, s.cfg.HorizonDays)

	s.mu.Lock()
	s.lastRun = time.Now()
	s.lastErr = err
	s.lastMade = made
	s.runs++
	s.mu.Unlock()

	if err != nil {
		s.log.Warnw("Scheduled generation finished with errors", "created", made, "error", err)
		return
	}
	if made > 0 {
		s.log.Infow("Scheduled generation", "created", made)
	}
}

type Status struct {
	LastRun     time.Time `json:"last_run"`
	LastCreated int       `json:"last_created"`
	LastError   string    `json:"last_error,omitempty"`
	Runs        int64     `json:"runs"`
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{LastRun: s.lastRun, LastCreated: s.lastMade, Runs: s.runs}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}
