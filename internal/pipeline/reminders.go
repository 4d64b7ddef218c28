package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"hireloop/internal/notify"
	"hireloop/internal/store"
	"hireloop/internal/utils"
)

// runReminders nudges at most ONE overdue candidate per cycle. The global cap
// keeps reminder volume to a trickle and makes a template or clock mistake
// cost one email instead of a blast.
func (o *Orchestrator) runReminders(ctx context.Context) (int, error) {
	log := o.stageLogger("reminders")

	qctx, cancel := o.bounded(ctx)
	candidates, err := o.store.ReminderCandidates(qctx)
	cancel()
	if err != nil {
		return 0, err
	}

	now := o.now()
	for _, c := range candidates {
		if !ReminderDue(c, now, o.settings.ReminderAfter) {
			continue
		}
		if c.InterviewToken == "" {
			log.Warn("candidate has no interview token, skipping",
				zap.Int64("candidate_id", c.ID),
			)
			continue
		}

		if err := o.sendReminder(ctx, c, now); err != nil {
			log.Error("sending reminder failed",
				zap.Int64("candidate_id", c.ID),
				zap.Error(err),
			)
			continue
		}
		return 1, nil
	}
	return 0, nil
}

func (o *Orchestrator) sendReminder(ctx context.Context, c *store.Candidate, now time.Time) error {
	link := o.settings.InterviewLink(c.InterviewToken)
	duration := "15-20 minutes"
	if c.Status == store.StatusRound2Invited {
		link = o.settings.Round2Link(c.InterviewToken)
		duration = "30-40 minutes"
	}

	ctx, cancel := o.bounded(ctx)
	defer cancel()

	vars := map[string]string{
		"first_name":     utils.FirstName(c.FullName),
		"interview_link": link,
		"duration":       duration,
	}
	if err := o.notifier.Send(ctx, notify.KindReminder, c.Email, vars); err != nil {
		return err
	}
	if err := o.store.MarkReminderSent(ctx, c.ID, now); err != nil {
		return err
	}

	o.stageLogger("reminders").Info("reminder sent",
		zap.Int64("candidate_id", c.ID),
		zap.String("email", c.Email),
	)
	return nil
}
