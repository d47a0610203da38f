package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/robfig/cron/v3"

	"CompSim/internal/ledger"
	"CompSim/internal/notifier"
	"CompSim/internal/recorder"
)

// Sender delivers a report to the operator chat.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages the season cron task and chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   *Runner
	Ledger   *ledger.Manager
	Notifier Sender
	Recorder recorder.Recorder
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, runner *Runner, tn Sender) *Scheduler {
	rec := runner.Recorder
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Runner:   runner,
		Ledger:   runner.Ledger,
		Notifier: tn,
		Recorder: rec,
		Ctx:      ctx,
	}
}

// RegisterAll registers the season task.
func (s *Scheduler) RegisterAll(seasonCron string) error {
	if _, err := s.Cron.AddFunc(seasonCron, s.seasonTask); err != nil {
		return fmt.Errorf("register season task: %w", err)
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

// RunSeasonNow executes the season task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunSeasonNow() {
	s.seasonTask()
}

func (s *Scheduler) seasonTask() {
	log.Println("[INFO] running season task")
	out, err := s.Runner.RunSeason(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] season run: %v", err)
		s.trySend(fmt.Sprintf("❌ Season run failed: %v", err))
		return
	}
	s.trySend(notifier.FormatSeasonReport(out.RunID, out.Result))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return help()
	}
	switch fields[0] {
	case "/season":
		s.seasonTask()
		return ""
	case "/summary":
		if s.Ledger == nil {
			return "Ledger is not configured."
		}
		state := s.Ledger.GetState()
		return notifier.FormatLedger(&state)
	case "/history":
		runs, err := s.Recorder.RecentSeasons(5)
		if err != nil {
			log.Printf("[ERROR] load history: %v", err)
			return fmt.Sprintf("❌ History unavailable: %v", err)
		}
		return notifier.FormatHistory(runs)
	case "/member":
		if len(fields) < 2 {
			return "Usage: /member <name>"
		}
		recs, err := s.Recorder.MemberHistory(fields[1], 5)
		if err != nil {
			log.Printf("[ERROR] load member history: %v", err)
			return fmt.Sprintf("❌ History unavailable: %v", err)
		}
		return notifier.FormatMemberHistory(fields[1], recs)
	default:
		return help()
	}
}

func help() string {
	return "Commands:\n• /season run the next season now\n• /summary last season and lifetime totals\n• /history recent seasons\n• /member <name> one member's recent seasons"
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
