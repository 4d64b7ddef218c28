package pipeline

import (
	"context"

	"go.uber.org/zap"

	"hireloop/internal/notify"
	"hireloop/internal/store"
	"hireloop/internal/utils"
)

// runRound2 dispatches technical-round invites once their human-set send time
// has passed. Approval itself happens out of band; this stage only honors the
// schedule.
func (o *Orchestrator) runRound2(ctx context.Context) (int, error) {
	log := o.stageLogger("round2")

	qctx, cancel := o.bounded(ctx)
	due, err := o.store.Round2Due(qctx, o.now())
	cancel()
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, c := range due {
		if err := o.sendRound2Invite(ctx, c); err != nil {
			log.Error("sending round-2 invite failed",
				zap.Int64("candidate_id", c.ID),
				zap.Error(err),
			)
			continue
		}
		sent++
	}
	return sent, nil
}

func (o *Orchestrator) sendRound2Invite(ctx context.Context, c *store.Candidate) error {
	log := o.stageLogger("round2").With(zap.Int64("candidate_id", c.ID))

	if c.InterviewToken == "" {
		log.Warn("candidate has no interview token, skipping")
		return nil
	}

	jobTitle := "the role"
	if c.Job != nil && c.Job.Title != "" {
		jobTitle = c.Job.Title
	}

	ctx, cancel := o.bounded(ctx)
	defer cancel()

	vars := map[string]string{
		"first_name":  utils.FirstName(c.FullName),
		"job_title":   jobTitle,
		"round2_link": o.settings.Round2Link(c.InterviewToken),
	}
	if err := o.notifier.Send(ctx, notify.KindRound2Invite, c.Email, vars); err != nil {
		return err
	}
	if err := o.store.SetStatus(ctx, c.ID, store.StatusRound2Invited); err != nil {
		return err
	}

	log.Info("round-2 invite sent", zap.String("email", c.Email))
	return nil
}
