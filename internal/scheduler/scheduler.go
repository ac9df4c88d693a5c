// Package scheduler polls the store for due reminders and hands them to a
// notification sink.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sandeepkv93/stickynotes/internal/storage"
)

const DefaultInterval = time.Minute

var (
	ErrStopped        = errors.New("scheduler: stopped")
	ErrAlreadyRunning = errors.New("scheduler: already running")
)

type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// DueLister is the part of the store the scheduler reads from.
type DueLister interface {
	ListDueReminders(ctx context.Context, q storage.DueQuery) ([]storage.DueReminder, error)
}

type Config struct {
	Interval   time.Duration
	BatchLimit int
	Logger     *slog.Logger
	Now        func() time.Time
}

type Stats struct {
	Polls         uint64
	FailedPolls   uint64
	Published     uint64
	FailedPublish uint64
}

// Scheduler moves Idle -> Running -> Stopped. A stopped scheduler stays
// stopped.
type Scheduler struct {
	store  DueLister
	sink   Sink
	cfg    Config
	logger *slog.Logger

	mu     sync.Mutex
	state  State
	stopCh chan struct{}
	doneCh chan struct{}

	polls         atomic.Uint64
	failedPolls   atomic.Uint64
	published     atomic.Uint64
	failedPublish atomic.Uint64
}

func New(store DueLister, sink Sink, cfg Config) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		store:  store,
		sink:   sink,
		cfg:    cfg,
		logger: logger.With("component", "scheduler"),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start launches the poll loop. The first poll runs immediately. Cancelling
// ctx ends the loop the same way Stop does.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateRunning:
		return ErrAlreadyRunning
	case StateStopped:
		return ErrStopped
	}
	s.state = StateRunning
	s.logger.Info("scheduler started", "interval", s.cfg.Interval)
	go s.loop(ctx)
	return nil
}

// Stop signals the loop and waits for it to exit. A poll already in flight
// finishes first.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	switch s.state {
	case StateIdle:
		s.state = StateStopped
		close(s.stopCh)
		close(s.doneCh)
		s.mu.Unlock()
		return
	case StateStopped:
		s.mu.Unlock()
		<-s.doneCh
		return
	}
	s.state = StateStopped
	close(s.stopCh)
	s.mu.Unlock()
	<-s.doneCh
}

// Done is closed once the loop has exited.
func (s *Scheduler) Done() <-chan struct{} { return s.doneCh }

func (s *Scheduler) Stats() Stats {
	return Stats{
		Polls:         s.polls.Load(),
		FailedPolls:   s.failedPolls.Load(),
		Published:     s.published.Load(),
		FailedPublish: s.failedPublish.Load(),
	}
}

func (s *Scheduler) loop(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		s.state = StateStopped
		s.mu.Unlock()
		close(s.doneCh)
		s.logger.Info("scheduler stopped")
	}()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		if _, err := s.Poll(ctx); err != nil {
			s.logger.Error("reminder poll failed", "err", err)
		}

		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Poll runs one check and publishes every due reminder. It returns how many
// notifications were published. Reminders are not marked triggered; the
// consumer acknowledges them.
func (s *Scheduler) Poll(ctx context.Context) (int, error) {
	s.polls.Add(1)
	due, err := s.store.ListDueReminders(ctx, storage.DueQuery{
		Until: s.cfg.Now().Unix(),
		Limit: s.cfg.BatchLimit,
	})
	if err != nil {
		s.failedPolls.Add(1)
		return 0, err
	}

	sent := 0
	ids := make([]int64, 0, len(due))
	for _, item := range due {
		ids = append(ids, item.Reminder.ID)
		n := NotificationFrom(item)
		if err := s.sink.Publish(ctx, n); err != nil {
			s.failedPublish.Add(1)
			s.logger.Warn("publish reminder failed", "reminder_id", n.ReminderID, "note_id", n.NoteID, "err", err)
			continue
		}
		s.published.Add(1)
		sent++
	}
	if r, ok := s.sink.(Retainer); ok {
		r.Retain(ids)
	}
	if len(due) > 0 {
		s.logger.Debug("reminders published", "due", len(due), "sent", sent)
	}
	return sent, nil
}
