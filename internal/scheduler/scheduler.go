package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"

	"PriceBoard/internal/collector"
	"PriceBoard/internal/config"
	"PriceBoard/internal/model"
	"PriceBoard/internal/notifier"
	"PriceBoard/internal/recorder"
	"PriceBoard/internal/session"

	"github.com/robfig/cron/v3"
)

// Messenger delivers messages to the configured chat.
type Messenger interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages the digest cron task and answers chat commands.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Sessions  *session.Manager
	Notifier  Messenger
	Recorder  recorder.Recorder
	Digest    model.Selection
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler. digest is the watchlist sent by
// the daily task.
func NewScheduler(ctx context.Context, col *collector.Collector, sm *session.Manager, msg Messenger, rec recorder.Recorder, digest model.Selection) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Sessions:  sm,
		Notifier:  msg,
		Recorder:  rec,
		Digest:    digest,
		Ctx:       ctx,
	}
}

// RegisterAll registers the daily digest task.
func (s *Scheduler) RegisterAll(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyDigest); err != nil {
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

// RunDigestNow executes the daily digest immediately (for RUN_ON_START).
func (s *Scheduler) RunDigestNow() {
	s.dailyDigest()
}

func (s *Scheduler) dailyDigest() {
	log.Println("[INFO] running daily digest")
	s.trySend(s.render("", s.Digest, recorder.TriggerDigest))
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(chatID, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.HelpText
	}
	name := strings.ToLower(fields[0])
	if i := strings.IndexByte(name, '@'); i > 0 {
		name = name[:i] // /prices@PriceBoardBot in group chats
	}
	args := fields[1:]

	switch name {
	case "/prices":
		sel := s.Sessions.Get(chatID)
		if len(args) > 0 {
			sel.Symbols = config.SplitSymbols(strings.Join(args, " "))
		}
		return s.render(chatID, sel, recorder.TriggerCommand)
	case "/symbols":
		sel, err := s.Sessions.SetSymbols(chatID, config.SplitSymbols(strings.Join(args, " ")))
		if err != nil {
			return notifier.FormatError(err)
		}
		return notifier.FormatSelection(sel)
	case "/period":
		if len(args) != 1 {
			return "Usage: /period 1mo|3mo|6mo|1y|2y|5y"
		}
		sel, err := s.Sessions.SetPeriod(chatID, args[0])
		if err != nil {
			return notifier.FormatError(err)
		}
		return notifier.FormatSelection(sel)
	case "/view":
		if len(args) != 1 {
			return "Usage: /view price|rebased|pct_change|cumulative"
		}
		sel, err := s.Sessions.SetMode(chatID, args[0])
		if err != nil {
			return notifier.FormatError(err)
		}
		return notifier.FormatSelection(sel)
	case "/selection":
		return notifier.FormatSelection(s.Sessions.Get(chatID))
	case "/reset":
		return notifier.FormatSelection(s.Sessions.Reset(chatID))
	case "/history":
		renders, err := s.Recorder.History(chatID, 10)
		if err != nil {
			log.Printf("[ERROR] load history: %v", err)
			return notifier.FormatError(err)
		}
		return notifier.FormatHistory(renders)
	default:
		return notifier.HelpText
	}
}

// render runs one render cycle, records it and formats the reply.
func (s *Scheduler) render(chatID string, sel model.Selection, trigger string) string {
	snap, err := s.Collector.Render(s.Ctx, sel)
	if rerr := s.Recorder.RecordRender(&recorder.RenderEvent{
		Snapshot:  snap,
		Selection: sel,
		ChatID:    chatID,
		Trigger:   trigger,
		Err:       err,
	}); rerr != nil {
		log.Printf("[ERROR] record render: %v", rerr)
	}
	if err != nil {
		return notifier.FormatError(err)
	}
	return notifier.FormatSnapshot(snap)
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
