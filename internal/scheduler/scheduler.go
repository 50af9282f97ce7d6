package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"SignalSentinel/internal/collector"
	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/notifier"
	"SignalSentinel/internal/recorder"
	"SignalSentinel/internal/strategy"
)

// historyRows is how many recent signal rows /history shows.
const historyRows = 10

// Sender delivers formatted reports.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the analysis pipeline on a cron schedule and on demand.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Params    strategy.Params
	Notifier  Sender // nil disables delivery
	Recorder  recorder.Recorder
	Metrics   *metrics.Metrics
	Ctx       context.Context

	runMu  sync.Mutex // serializes pipeline runs
	mu     sync.RWMutex
	latest *model.Analysis
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, params strategy.Params, n Sender, rec recorder.Recorder, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Params:    params,
		Notifier:  n,
		Recorder:  rec,
		Metrics:   m,
		Ctx:       ctx,
	}
}

// Register adds the daily analysis job.
func (s *Scheduler) Register(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// Latest returns the most recent successful analysis, or nil before the first run.
func (s *Scheduler) Latest() *model.Analysis {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

func (s *Scheduler) dailyTask() {
	log.Println("[INFO] running daily analysis")
	if _, err := s.RunNow(s.Ctx); err != nil {
		log.Printf("[ERROR] daily analysis: %v", err)
	}
}

// RunNow executes the pipeline immediately: collect, analyze, publish,
// notify and record.
func (s *Scheduler) RunNow(ctx context.Context) (*model.Analysis, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	start := time.Now()
	series, err := s.Collector.Collect(ctx)
	if s.Metrics != nil {
		s.Metrics.ObserveFetch(time.Since(start))
	}
	if err != nil {
		s.fail()
		s.trySend(ctx, fmt.Sprintf("❌ %s data collection failed: %v", s.Collector.Symbol, err))
		return nil, fmt.Errorf("collect: %w", err)
	}

	a, err := strategy.Analyze(series, s.Params)
	if err != nil {
		s.fail()
		return nil, fmt.Errorf("analyze: %w", err)
	}

	s.mu.Lock()
	s.latest = a
	s.mu.Unlock()

	last := a.Latest()
	log.Printf("[INFO] %s analysis done: %d bars, momentum=%s mean_reversion=%s",
		a.Symbol, a.Len(), last.Momentum, last.MeanReversion)

	s.trySend(ctx, notifier.FormatSignalReport(a))

	if s.Recorder != nil {
		if _, err := s.Recorder.RecordAnalysis(a); err != nil {
			log.Printf("[ERROR] record analysis: %v", err)
		}
	}
	if s.Metrics != nil {
		s.Metrics.RunSucceeded(a)
	}
	return a, nil
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	name, _, _ := strings.Cut(strings.Fields(command + " /")[0], "@")
	switch strings.ToLower(name) {
	case "/signals":
		if _, err := s.RunNow(ctx); err != nil {
			return fmt.Sprintf("❌ analysis failed: %v", err)
		}
		return ""
	case "/latest":
		return notifier.FormatSignalReport(s.Latest())
	case "/history":
		return notifier.FormatHistory(s.Latest(), historyRows)
	default:
		return "Available commands:\n• /signals - run the analysis now\n• /latest - show the latest signals\n• /history - recent buy/sell signals"
	}
}

func (s *Scheduler) fail() {
	if s.Metrics != nil {
		s.Metrics.RunFailed()
	}
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
