// Package scheduler owns the per-task reminder timers: a heads-up before a
// task's planned start, one before its deadline, and a periodic nag while a
// work session is running. It subscribes to task events so completion and
// deletion cancel pending notifications instead of anything polling the store.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/focushub/backend/domain"
	"github.com/focushub/backend/internal/events"
)

// Notifier delivers a reminder to the user. The default implementation just
// logs; a push or websocket transport can be dropped in without touching the
// scheduling logic.
type Notifier interface {
	Notify(userID, title, body string)
}

type logNotifier struct {
	logger *zap.Logger
}

func (n *logNotifier) Notify(userID, title, body string) {
	n.logger.Info("reminder",
		zap.String("user_id", userID),
		zap.String("title", title),
		zap.String("body", body))
}

// NewLogNotifier returns a Notifier that writes reminders to the log.
func NewLogNotifier(logger *zap.Logger) Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &logNotifier{logger: logger}
}

type Config struct {
	StartLead       time.Duration
	DeadlineLead    time.Duration
	WorkNagInterval time.Duration
}

func (c *Config) applyDefaults() {
	if c.StartLead <= 0 {
		c.StartLead = 5 * time.Minute
	}
	if c.DeadlineLead <= 0 {
		c.DeadlineLead = 5 * time.Minute
	}
	if c.WorkNagInterval <= 0 {
		c.WorkNagInterval = 10 * time.Second
	}
}

type taskReminders struct {
	start    *time.Timer
	deadline *time.Timer
	workNag  cron.EntryID
}

type Scheduler struct {
	cron     *cron.Cron
	notifier Notifier
	logger   *zap.Logger
	cfg      Config
	now      func() time.Time

	mu        sync.Mutex
	reminders map[string]*taskReminders
	wg        sync.WaitGroup
}

func New(notifier Notifier, logger *zap.Logger, cfg Config) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	cfg.applyDefaults()
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		notifier:  notifier,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
		reminders: make(map[string]*taskReminders),
	}
}

// WithClock replaces the time source, used by tests.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	if now != nil {
		s.now = now
	}
	return s
}

// Start begins consuming task events from the channel until it is closed.
func (s *Scheduler) Start(ch <-chan events.Event) {
	s.cron.Start()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for ev := range ch {
			s.handle(ev)
		}
	}()
}

// Stop cancels every pending reminder and waits for the event loop to drain.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()

	s.mu.Lock()
	for id := range s.reminders {
		s.cancelLocked(id)
	}
	s.mu.Unlock()
}

// Wait blocks until the event loop has exited. Call after the event bus is
// closed.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) handle(ev events.Event) {
	switch ev.Kind {
	case events.TaskCompleted, events.TaskDeleted:
		s.Cancel(ev.Task.ID)
	case events.TaskCreated, events.TaskUpdated:
		s.Schedule(ev.Task)
	}
}

// Schedule replaces the task's reminders based on its current state.
func (s *Scheduler) Schedule(task domain.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked(task.ID)
	if task.Completed {
		return
	}

	now := s.now()
	r := &taskReminders{}
	title := truncate(task.Text, 30)

	if task.StartTime != nil {
		if at := task.StartTime.Add(-s.cfg.StartLead); at.After(now) {
			r.start = time.AfterFunc(at.Sub(now), func() {
				s.notifier.Notify(task.UserID, "Reminder",
					fmt.Sprintf("Task %q starts in %s!", title, s.cfg.StartLead))
			})
		}
	}

	if task.Deadline != nil {
		if at := task.Deadline.Add(-s.cfg.DeadlineLead); at.After(now) {
			r.deadline = time.AfterFunc(at.Sub(now), func() {
				s.notifier.Notify(task.UserID, "Deadline reminder",
					fmt.Sprintf("Task %q is due in %s!", title, s.cfg.DeadlineLead))
			})
		}
	}

	if task.HasWorkSession() {
		spec := fmt.Sprintf("@every %ds", int(s.cfg.WorkNagInterval.Seconds()))
		entryID, err := s.cron.AddFunc(spec, func() {
			s.notifier.Notify(task.UserID, "Working", fmt.Sprintf("You are working on: %q", title))
		})
		if err != nil {
			s.logger.Error("failed to schedule work-session reminder",
				zap.String("task_id", task.ID), zap.Error(err))
		} else {
			r.workNag = entryID
		}
	}

	if r.start != nil || r.deadline != nil || r.workNag != 0 {
		s.reminders[task.ID] = r
	}
}

// Cancel drops every pending reminder for the task.
func (s *Scheduler) Cancel(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(taskID)
}

func (s *Scheduler) cancelLocked(taskID string) {
	r, ok := s.reminders[taskID]
	if !ok {
		return
	}
	if r.start != nil {
		r.start.Stop()
	}
	if r.deadline != nil {
		r.deadline.Stop()
	}
	if r.workNag != 0 {
		s.cron.Remove(r.workNag)
	}
	delete(s.reminders, taskID)
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
