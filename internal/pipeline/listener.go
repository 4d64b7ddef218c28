package pipeline

import (
	"context"

	"go.uber.org/zap"

	"hireloop/internal/notify"
	"hireloop/internal/store"
	"hireloop/internal/utils"
)

// runListener checks the mailbox for replies from candidates who were sent the
// eligibility questionnaire. A reply is judged for work authorization; eligible
// candidates get their interview invite, the rest are closed out. Each message
// is marked read only after the outcome is fully committed, so a crash mid-way
// retries the same reply next cycle.
func (o *Orchestrator) runListener(ctx context.Context) (int, error) {
	log := o.stageLogger("listener")

	qctx, cancel := o.bounded(ctx)
	candidates, err := o.store.AwaitingVisaReply(qctx)
	cancel()
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, c := range candidates {
		handled, err := o.handleVisaReply(ctx, c)
		if err != nil {
			log.Error("processing visa reply failed",
				zap.Int64("candidate_id", c.ID),
				zap.Error(err),
			)
			continue
		}
		if handled {
			processed++
		}
	}
	return processed, nil
}

func (o *Orchestrator) handleVisaReply(ctx context.Context, c *store.Candidate) (bool, error) {
	log := o.stageLogger("listener").With(zap.Int64("candidate_id", c.ID))

	if c.InterviewToken == "" {
		log.Warn("candidate has no interview token, skipping")
		return false, nil
	}

	ctx, cancel := o.bounded(ctx)
	defer cancel()

	ids, err := o.inbox.UnreadFrom(ctx, c.Email)
	if err != nil {
		return false, err
	}
	if len(ids) == 0 {
		return false, nil
	}

	messageID := ids[0]
	reply, err := o.inbox.ReplyText(ctx, messageID)
	if err != nil {
		return false, err
	}
	if reply == "" {
		log.Warn("reply has no readable text, leaving unread")
		return false, nil
	}

	eligible, err := o.judge.Classify(ctx, reply)
	if err != nil {
		return false, err
	}

	if eligible {
		vars := map[string]string{
			"full_name":      c.FullName,
			"interview_link": o.settings.InterviewLink(c.InterviewToken),
		}
		if err := o.notifier.Send(ctx, notify.KindVisaApproval, c.Email, vars); err != nil {
			return false, err
		}
		if err := o.store.SetStatus(ctx, c.ID, store.StatusInviteSent); err != nil {
			return false, err
		}
		log.Info("visa confirmed, invite sent")
	} else {
		vars := map[string]string{"full_name": c.FullName}
		if err := o.notifier.Send(ctx, notify.KindVisaRejection, c.Email, vars); err != nil {
			return false, err
		}
		if err := o.store.SetStatus(ctx, c.ID, store.StatusRejectedVisa); err != nil {
			return false, err
		}
		log.Info("visa requirement not met, candidate closed",
			zap.String("reply", utils.TruncateForLog(reply, 120)),
		)
	}

	if err := o.inbox.MarkRead(ctx, messageID); err != nil {
		// The status already advanced, so the stale unread flag is harmless:
		// the candidate no longer matches the awaiting-reply query.
		log.Warn("marking reply as read failed", zap.Error(err))
	}
	return true, nil
}
