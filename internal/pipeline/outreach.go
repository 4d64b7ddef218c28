package pipeline

import (
	"context"

	"go.uber.org/zap"

	"hireloop/internal/notify"
	"hireloop/internal/store"
	"hireloop/internal/utils"
)

// runOutreach sends the next email for candidates sitting at a sendable
// status. Form completions are handled before fresh grades so a candidate who
// cleared the questionnaire is never kept waiting behind new arrivals.
func (o *Orchestrator) runOutreach(ctx context.Context) (int, error) {
	log := o.stageLogger("outreach")
	sent := 0

	qctx, cancel := o.bounded(ctx)
	completed, err := o.store.FormCompleted(qctx)
	cancel()
	if err != nil {
		return sent, err
	}
	for _, c := range completed {
		if err := o.sendInterviewInvite(ctx, c); err != nil {
			log.Error("inviting form-completed candidate failed",
				zap.Int64("candidate_id", c.ID),
				zap.Error(err),
			)
			continue
		}
		sent++
	}

	qctx, cancel = o.bounded(ctx)
	graded, err := o.store.TopGraded(qctx, o.settings.PassThreshold)
	cancel()
	if err != nil {
		return sent, err
	}
	for _, c := range graded {
		var err error
		switch RouteAfterGrading(c.Job) {
		case RouteEligibilityForm:
			err = o.sendEligibilityForm(ctx, c)
		default:
			err = o.sendInterviewInvite(ctx, c)
		}
		if err != nil {
			log.Error("contacting graded candidate failed",
				zap.Int64("candidate_id", c.ID),
				zap.Error(err),
			)
			continue
		}
		sent++
	}

	return sent, nil
}

// sendInterviewInvite emails the round-1 link and advances the candidate to
// INVITE_SENT. The status write doubles as the at-most-once guard: the
// candidate leaves the sendable queries before the next cycle.
func (o *Orchestrator) sendInterviewInvite(ctx context.Context, c *store.Candidate) error {
	log := o.stageLogger("outreach").With(zap.Int64("candidate_id", c.ID))

	if c.InterviewToken == "" {
		log.Warn("candidate has no interview token, skipping")
		return nil
	}

	ctx, cancel := o.bounded(ctx)
	defer cancel()

	vars := map[string]string{
		"first_name":     utils.FirstName(c.FullName),
		"interview_link": o.settings.InterviewLink(c.InterviewToken),
	}
	if err := o.notifier.Send(ctx, notify.KindInterviewInvite, c.Email, vars); err != nil {
		return err
	}
	if err := o.store.SetStatus(ctx, c.ID, store.StatusInviteSent); err != nil {
		return err
	}

	log.Info("interview invite sent", zap.String("email", c.Email))
	return nil
}

func (o *Orchestrator) sendEligibilityForm(ctx context.Context, c *store.Candidate) error {
	log := o.stageLogger("outreach").With(zap.Int64("candidate_id", c.ID))

	if c.InterviewToken == "" {
		log.Warn("candidate has no interview token, skipping")
		return nil
	}

	roleTitle := "the role"
	if c.Job != nil && c.Job.Title != "" {
		roleTitle = c.Job.Title
	}

	ctx, cancel := o.bounded(ctx)
	defer cancel()

	vars := map[string]string{
		"first_name": utils.FirstName(c.FullName),
		"role_title": roleTitle,
		"form_url":   o.settings.FormURL(c.InterviewToken, c.FullName),
	}
	if err := o.notifier.Send(ctx, notify.KindEligibilityForm, c.Email, vars); err != nil {
		return err
	}
	if err := o.store.SetStatus(ctx, c.ID, store.StatusQuestionnaireSent); err != nil {
		return err
	}

	log.Info("eligibility questionnaire sent", zap.String("email", c.Email))
	return nil
}
