package pipeline

import (
	"context"

	"go.uber.org/zap"

	"hireloop/internal/store"
)

// runGrade scores every new application against its job description. The score
// and status land in one update, so a crash between judging and recording
// simply re-grades the candidate next cycle.
func (o *Orchestrator) runGrade(ctx context.Context) (int, error) {
	log := o.stageLogger("grade")

	qctx, cancel := o.bounded(ctx)
	candidates, err := o.store.UngradedCandidates(qctx)
	cancel()
	if err != nil {
		return 0, err
	}

	graded := 0
	for _, c := range candidates {
		if err := o.gradeCandidate(ctx, c); err != nil {
			log.Error("grading candidate failed",
				zap.Int64("candidate_id", c.ID),
				zap.Error(err),
			)
			continue
		}
		graded++
	}
	return graded, nil
}

func (o *Orchestrator) gradeCandidate(ctx context.Context, c *store.Candidate) error {
	log := o.stageLogger("grade").With(zap.Int64("candidate_id", c.ID))

	if c.ResumeText == "" {
		log.Warn("candidate has no resume text, skipping")
		return nil
	}

	ctx, cancel := o.bounded(ctx)
	defer cancel()

	grade, err := o.judge.Score(ctx, c.ResumeText, c.JobDescription)
	if err != nil {
		return err
	}

	status := GradeOutcome(grade.Score, o.settings.PassThreshold)
	if err := o.store.RecordGrade(ctx, c.ID, grade.Score, grade.Reasoning, status); err != nil {
		return err
	}

	log.Info("candidate graded",
		zap.Int("score", grade.Score),
		zap.String("status", string(status)),
	)
	return nil
}
