package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"hireloop/internal/judge"
	"hireloop/internal/logger"
	"hireloop/internal/mailbox"
	"hireloop/internal/notify"
	"hireloop/internal/store"
	"hireloop/internal/utils"
)

// Store is the candidate persistence surface the pipeline consumes.
type Store interface {
	Ping(ctx context.Context) error
	UngradedCandidates(ctx context.Context) ([]*store.Candidate, error)
	AwaitingVisaReply(ctx context.Context) ([]*store.Candidate, error)
	TopGraded(ctx context.Context, minScore int) ([]*store.Candidate, error)
	FormCompleted(ctx context.Context) ([]*store.Candidate, error)
	Round2Due(ctx context.Context, now time.Time) ([]*store.Candidate, error)
	ReminderCandidates(ctx context.Context) ([]*store.Candidate, error)
	SetStatus(ctx context.Context, id int64, status store.Status) error
	RecordGrade(ctx context.Context, id int64, score int, reasoning string, status store.Status) error
	MarkReminderSent(ctx context.Context, id int64, at time.Time) error
	CandidateExists(ctx context.Context, email string) (bool, error)
	CreateCandidate(ctx context.Context, nc *store.NewCandidate) (int64, error)
	Jobs(ctx context.Context) ([]*store.Job, error)
	EmailTemplates(ctx context.Context, names []string) (map[string]string, error)
}

// Inbox is the mailbox surface the pipeline consumes.
type Inbox interface {
	Ping(ctx context.Context) error
	UnreadFrom(ctx context.Context, email string) ([]string, error)
	Search(ctx context.Context, query string) ([]string, error)
	Envelope(ctx context.Context, id string) (*mailbox.Envelope, error)
	ReplyText(ctx context.Context, id string) (string, error)
	BodyText(ctx context.Context, id string) (string, error)
	MarkRead(ctx context.Context, id string) error
}

// templateRefresher lets the orchestrator hand the notifier fresh overrides
// each cycle without the Notifier interface growing a store dependency.
type templateRefresher interface {
	RefreshTemplates(ctx context.Context, src notify.TemplateSource)
}

// Orchestrator runs the funnel as a single-threaded polling loop. Stages run
// in fixed order every cycle; a failing stage logs and yields to the next.
type Orchestrator struct {
	store    Store
	inbox    Inbox
	judge    judge.Judge
	notifier notify.Notifier
	settings Settings
	logger   *zap.Logger

	// now is swapped in tests to pin reminder and round-2 clocks.
	now func() time.Time
}

// Deps collects the orchestrator's collaborators.
type Deps struct {
	Store    Store
	Inbox    Inbox
	Judge    judge.Judge
	Notifier notify.Notifier
}

func New(deps Deps, settings Settings, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		store:    deps.Store,
		inbox:    deps.Inbox,
		judge:    deps.Judge,
		notifier: deps.Notifier,
		settings: settings.WithDefaults(),
		logger:   log,
		now:      time.Now,
	}
}

// CheckConnections verifies the database and mailbox before the loop starts.
// Failures here are fatal; failures later are per-cycle noise.
func (o *Orchestrator) CheckConnections(ctx context.Context) error {
	ctx, cancel := o.bounded(ctx)
	defer cancel()

	if err := o.store.Ping(ctx); err != nil {
		return fmt.Errorf("database connectivity: %w", err)
	}
	if err := o.inbox.Ping(ctx); err != nil {
		return fmt.Errorf("mailbox connectivity: %w", err)
	}
	return nil
}

// Run polls until the context is canceled.
func (o *Orchestrator) Run(ctx context.Context) error {
	if err := o.CheckConnections(ctx); err != nil {
		return err
	}

	o.logger.Info("pipeline started",
		zap.Duration("interval", o.settings.Interval),
		zap.Int("pass_threshold", o.settings.PassThreshold),
	)

	for {
		o.RunCycle(ctx)

		if err := utils.WaitFor(ctx, o.settings.Interval); err != nil {
			o.logger.Info("pipeline stopped", zap.Error(err))
			return nil
		}
	}
}

type stage struct {
	name    string
	enabled bool
	run     func(context.Context) (int, error)
}

// RunCycle executes every stage once. Stage order matters: replies are
// processed before new mail is ingested, and grading lands before outreach so
// a passing candidate can be contacted in the same cycle.
func (o *Orchestrator) RunCycle(ctx context.Context) {
	if refresher, ok := o.notifier.(templateRefresher); ok {
		rctx, cancel := o.bounded(ctx)
		refresher.RefreshTemplates(rctx, o.store)
		cancel()
	}

	stages := []stage{
		{name: "listener", enabled: true, run: o.runListener},
		{name: "ingest", enabled: !o.settings.DisableIngest, run: o.runIngest},
		{name: "grade", enabled: true, run: o.runGrade},
		{name: "outreach", enabled: !o.settings.DisableOutreach, run: o.runOutreach},
		{name: "round2", enabled: !o.settings.DisableOutreach, run: o.runRound2},
		{name: "reminders", enabled: !o.settings.DisableOutreach, run: o.runReminders},
	}

	for _, s := range stages {
		if ctx.Err() != nil {
			return
		}
		if !s.enabled {
			continue
		}

		processed, err := s.run(ctx)
		log := o.stageLogger(s.name)
		if err != nil {
			log.Error("stage failed", zap.Error(err))
			continue
		}
		if processed > 0 {
			log.Info("stage completed", zap.Int("processed", processed))
		} else {
			log.Debug("stage completed", zap.Int("processed", processed))
		}
	}
}

// bounded derives a per-operation context so one stuck call cannot stall the
// whole cycle.
func (o *Orchestrator) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, o.settings.CallTimeout)
}

func (o *Orchestrator) stageLogger(name string) *zap.Logger {
	return o.logger.With(zap.String(logger.FieldStage, name))
}
