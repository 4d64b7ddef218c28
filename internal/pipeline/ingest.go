package pipeline

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"hireloop/internal/store"
)

// Job-board notification subjects look like
// "Backend Engineer candidate - Jane Doe applied via Betterteam".
var (
	jobTitleRe      = regexp.MustCompile(`(?i)^(.+?)\s+candidate\s+-\s+`)
	candidateNameRe = regexp.MustCompile(`(?i)candidate\s+-\s+(.+?)\s+applied\s+via\s+`)

	// labeledEmailRes try explicit "Email:" style lines first; the bare
	// pattern is a last resort filtered against relay addresses.
	labeledEmailRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)e-?mail\s*:?\s*([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`),
		regexp.MustCompile(`(?i)contact\s*:?\s*([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`),
	}
	bareEmailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	// relayFragments mark sender and notification addresses that must never
	// be mistaken for a candidate's contact email.
	relayFragments = []string{"noreply", "no-reply", "betterteam", "donotreply"}
)

// ParseJobTitle extracts the role title from a job-board notification subject.
func ParseJobTitle(subject string) string {
	m := jobTitleRe.FindStringSubmatch(subject)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// ParseCandidateName extracts the applicant's name from the subject.
func ParseCandidateName(subject string) string {
	m := candidateNameRe.FindStringSubmatch(subject)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// ParseCandidateEmail finds the applicant's contact address in the message
// body. Labeled addresses win; otherwise the first address that is not a
// board relay is used.
func ParseCandidateEmail(body string) string {
	for _, re := range labeledEmailRes {
		if m := re.FindStringSubmatch(body); m != nil {
			return strings.ToLower(m[1])
		}
	}
	for _, addr := range bareEmailRe.FindAllString(body, -1) {
		if !isRelayAddress(addr) {
			return strings.ToLower(addr)
		}
	}
	return ""
}

func isRelayAddress(addr string) bool {
	lower := strings.ToLower(addr)
	for _, fragment := range relayFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// runIngest turns unread job-board notifications into candidate rows. Messages
// that cannot be parsed or matched to a job stay unread so an operator can see
// them; duplicates are marked read and dropped.
func (o *Orchestrator) runIngest(ctx context.Context) (int, error) {
	log := o.stageLogger("ingest")

	qctx, cancel := o.bounded(ctx)
	ids, err := o.inbox.Search(qctx, o.settings.InboxQuery)
	cancel()
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	jctx, cancel := o.bounded(ctx)
	jobs, err := o.store.Jobs(jctx)
	cancel()
	if err != nil {
		return 0, err
	}

	created := 0
	for _, id := range ids {
		ok, err := o.ingestMessage(ctx, id, jobs)
		if err != nil {
			log.Error("ingesting application failed",
				zap.String("message_id", id),
				zap.Error(err),
			)
			continue
		}
		if ok {
			created++
		}
	}
	return created, nil
}

func (o *Orchestrator) ingestMessage(ctx context.Context, id string, jobs []*store.Job) (bool, error) {
	log := o.stageLogger("ingest").With(zap.String("message_id", id))

	ctx, cancel := o.bounded(ctx)
	defer cancel()

	env, err := o.inbox.Envelope(ctx, id)
	if err != nil {
		return false, err
	}

	title := ParseJobTitle(env.Subject)
	if title == "" {
		log.Warn("subject does not look like an application, leaving unread",
			zap.String("subject", env.Subject),
		)
		return false, nil
	}

	job := matchJob(jobs, title)
	if job == nil {
		log.Warn("no job matches the applied role, leaving unread",
			zap.String("role_title", title),
		)
		return false, nil
	}

	name := ParseCandidateName(env.Subject)
	if name == "" {
		name = env.FromName
	}

	body, err := o.inbox.BodyText(ctx, id)
	if err != nil {
		return false, err
	}

	email := ParseCandidateEmail(body)
	if email == "" {
		email = strings.ToLower(env.FromAddress)
	}
	if email == "" || isRelayAddress(email) {
		log.Warn("no usable candidate email found, leaving unread")
		return false, nil
	}

	exists, err := o.store.CandidateExists(ctx, email)
	if err != nil {
		return false, err
	}
	if exists {
		log.Info("duplicate application, skipping", zap.String("email", email))
		if err := o.inbox.MarkRead(ctx, id); err != nil {
			log.Warn("marking duplicate as read failed", zap.Error(err))
		}
		return false, nil
	}

	candidateID, err := o.store.CreateCandidate(ctx, &store.NewCandidate{
		Email:          email,
		FullName:       name,
		ResumeText:     body,
		JobID:          job.ID,
		JobDescription: job.Description,
		Metadata: map[string]any{
			"source":            "email_ingest",
			"gmail_message_id":  id,
			"applied_job_title": title,
		},
	})
	if err != nil {
		return false, err
	}

	if err := o.inbox.MarkRead(ctx, id); err != nil {
		log.Warn("marking application as read failed", zap.Error(err))
	}

	log.Info("application ingested",
		zap.Int64("candidate_id", candidateID),
		zap.String("email", email),
		zap.String("job_title", job.Title),
	)
	return true, nil
}

// matchJob resolves the applied title against open jobs, tolerating case and
// surrounding whitespace. Exact match wins; otherwise a unique substring match
// in either direction is accepted.
func matchJob(jobs []*store.Job, title string) *store.Job {
	want := strings.ToLower(strings.TrimSpace(title))
	if want == "" {
		return nil
	}

	var partial *store.Job
	partials := 0
	for _, j := range jobs {
		have := strings.ToLower(strings.TrimSpace(j.Title))
		if have == want {
			return j
		}
		if strings.Contains(have, want) || strings.Contains(want, have) {
			partial = j
			partials++
		}
	}
	if partials == 1 {
		return partial
	}
	return nil
}
