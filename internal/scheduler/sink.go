package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sandeepkv93/stickynotes/internal/storage"
)

var (
	ErrSinkClosed = errors.New("scheduler: sink closed")
	ErrSinkFull   = errors.New("scheduler: sink buffer full")
)

// Notification is the payload delivered for a due reminder.
type Notification struct {
	ReminderID  int64  `json:"reminder_id"`
	NoteID      int64  `json:"note_id"`
	RemindAt    int64  `json:"remind_at"`
	Triggered   bool   `json:"triggered"`
	CreatedAt   int64  `json:"created_at"`
	NoteContent string `json:"note_content"`
}

func NotificationFrom(d storage.DueReminder) Notification {
	return Notification{
		ReminderID:  d.Reminder.ID,
		NoteID:      d.Reminder.NoteID,
		RemindAt:    d.Reminder.RemindAt,
		Triggered:   d.Reminder.Triggered,
		CreatedAt:   d.Reminder.CreatedAt,
		NoteContent: d.Note.Content,
	}
}

// Title is the first line of the note, shortened for notification popups.
func (n Notification) Title() string {
	line, _, _ := strings.Cut(strings.TrimSpace(n.NoteContent), "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return fmt.Sprintf("Reminder for note %d", n.NoteID)
	}
	const maxTitle = 60
	if r := []rune(line); len(r) > maxTitle {
		return string(r[:maxTitle-1]) + "…"
	}
	return line
}

type Sink interface {
	Publish(ctx context.Context, n Notification) error
}

type SinkFunc func(ctx context.Context, n Notification) error

func (f SinkFunc) Publish(ctx context.Context, n Notification) error { return f(ctx, n) }

// ChannelSink buffers notifications for a single consumer. Publish never
// blocks; notifications that do not fit are counted and dropped.
type ChannelSink struct {
	mu      sync.RWMutex
	out     chan Notification
	closed  bool
	dropped atomic.Uint64
}

func NewChannelSink(bufferSize int) *ChannelSink {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &ChannelSink{out: make(chan Notification, bufferSize)}
}

func (c *ChannelSink) C() <-chan Notification { return c.out }

func (c *ChannelSink) Publish(_ context.Context, n Notification) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrSinkClosed
	}
	select {
	case c.out <- n:
		return nil
	default:
		c.dropped.Add(1)
		return ErrSinkFull
	}
}

func (c *ChannelSink) Dropped() uint64 { return c.dropped.Load() }

// Close closes the channel. Publish after Close returns ErrSinkClosed.
func (c *ChannelSink) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.out)
}

type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Publish(ctx context.Context, n Notification) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "reminder due",
		"reminder_id", n.ReminderID,
		"note_id", n.NoteID,
		"remind_at", time.Unix(n.RemindAt, 0).Format(time.RFC3339),
		"title", n.Title(),
	)
	return nil
}

// Runner executes an external command. It is replaced in tests.
type Runner func(ctx context.Context, name string, args ...string) error

func execRunner(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// DesktopSink shows a desktop notification through notify-send on linux and
// osascript on macOS. Other platforms are ignored.
type DesktopSink struct {
	GOOS string
	Run  Runner
}

func NewDesktopSink() DesktopSink {
	return DesktopSink{GOOS: runtime.GOOS, Run: execRunner}
}

func (s DesktopSink) Publish(ctx context.Context, n Notification) error {
	run := s.Run
	if run == nil {
		run = execRunner
	}
	goos := s.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	title := "Sticky note reminder"
	body := n.Title()
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return run(ctx, "notify-send", "--app-name=stickynotes", title, body)
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(body), escapeAppleScript(title))
		return run(ctx, "osascript", "-e", script)
	default:
		return nil
	}
}

func escapeAppleScript(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// MultiSink publishes to every sink and joins their errors.
type MultiSink []Sink

func (m MultiSink) Publish(ctx context.Context, n Notification) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Publish(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Retainer is implemented by sinks that keep per-reminder state. After every
// successful poll the scheduler calls Retain with the ids that were due, so
// acknowledged or deleted reminders can be dropped.
type Retainer interface {
	Retain(due []int64)
}

// Retain forwards to every sink that implements Retainer.
func (m MultiSink) Retain(due []int64) {
	for _, s := range m {
		if r, ok := s.(Retainer); ok {
			r.Retain(due)
		}
	}
}

// OnceSink forwards each reminder to Next the first time it is seen. The
// scheduler redelivers a reminder every poll until it is acknowledged; OnceSink
// keeps a long running process from announcing it over and over. A failed
// publish is not remembered, so it is retried on the next poll. The zero value
// is ready to use once Next is set.
type OnceSink struct {
	Next Sink

	mu   sync.Mutex
	seen map[int64]struct{}
}

func NewOnceSink(next Sink) *OnceSink {
	return &OnceSink{Next: next}
}

func (s *OnceSink) Publish(ctx context.Context, n Notification) error {
	s.mu.Lock()
	if _, ok := s.seen[n.ReminderID]; ok {
		s.mu.Unlock()
		return nil
	}
	if s.seen == nil {
		s.seen = make(map[int64]struct{})
	}
	s.seen[n.ReminderID] = struct{}{}
	s.mu.Unlock()

	if err := s.Next.Publish(ctx, n); err != nil {
		s.Forget(n.ReminderID)
		return err
	}
	return nil
}

// Forget lets a reminder through again.
func (s *OnceSink) Forget(reminderID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, reminderID)
}

// Retain drops every remembered reminder that is no longer due.
func (s *OnceSink) Retain(due []int64) {
	keep := make(map[int64]struct{}, len(due))
	for _, id := range due {
		keep[id] = struct{}{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.seen {
		if _, ok := keep[id]; !ok {
			delete(s.seen, id)
		}
	}
	if r, ok := s.Next.(Retainer); ok {
		r.Retain(due)
	}
}

// Len reports how many reminders are remembered.
func (s *OnceSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
