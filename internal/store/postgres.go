package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Postgres is the candidate store backed by the recruiting database.
type Postgres struct {
	db *sql.DB
}

// Open connects to the database with the provided connection string.
func Open(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &Postgres{db: db}, nil
}

// NewPostgres wraps an existing database handle. Used by tests.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Ping checks database connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

const candidateColumns = `
	c.id, c.email, c.full_name, c.status, c.job_id, c.jd_match_score,
	c.resume_text, c.job_description, c.interview_token,
	c.invite_sent_at, c.reminder_sent_at, c.round_2_invite_after,
	c.created_at, c.metadata`

// UngradedCandidates returns candidates awaiting their resume grade. Legacy
// rows without created_at never enter the automated pipeline.
func (p *Postgres) UngradedCandidates(ctx context.Context) ([]*Candidate, error) {
	query := `
		SELECT ` + candidateColumns + `
		FROM candidates c
		WHERE c.status = $1
		  AND c.created_at IS NOT NULL
	`
	return p.queryCandidates(ctx, query, string(StatusNewApplication))
}

// AwaitingVisaReply returns candidates who were sent the eligibility
// questionnaire and may have replied by email.
func (p *Postgres) AwaitingVisaReply(ctx context.Context) ([]*Candidate, error) {
	query := `
		SELECT ` + candidateColumns + `
		FROM candidates c
		WHERE c.status = $1
		  AND c.created_at IS NOT NULL
	`
	return p.queryCandidates(ctx, query, string(StatusQuestionnaireSent))
}

// TopGraded returns graded candidates at or above the score threshold, with
// their job joined for geo routing. Legacy rows without created_at never enter
// the automated pipeline.
func (p *Postgres) TopGraded(ctx context.Context, minScore int) ([]*Candidate, error) {
	query := `
		SELECT ` + candidateColumns + `,
			j.id, j.title, j.description, j.location, j.is_active
		FROM candidates c
		LEFT JOIN jobs j ON j.id = c.job_id
		WHERE c.status = $1
		  AND c.jd_match_score >= $2
		  AND c.created_at IS NOT NULL
	`
	return p.queryCandidatesWithJob(ctx, query, string(StatusGraded), minScore)
}

// FormCompleted returns candidates who passed the external eligibility form
// and are waiting for their interview invite.
func (p *Postgres) FormCompleted(ctx context.Context) ([]*Candidate, error) {
	query := `
		SELECT ` + candidateColumns + `
		FROM candidates c
		WHERE c.status = $1
		  AND c.created_at IS NOT NULL
	`
	return p.queryCandidates(ctx, query, string(StatusFormCompleted))
}

// Round2Due returns candidates approved for the technical round whose
// human-set send time has passed.
func (p *Postgres) Round2Due(ctx context.Context, now time.Time) ([]*Candidate, error) {
	query := `
		SELECT ` + candidateColumns + `,
			j.id, j.title, j.description, j.location, j.is_active
		FROM candidates c
		LEFT JOIN jobs j ON j.id = c.job_id
		WHERE c.status = $1
		  AND c.round_2_invite_after IS NOT NULL
		  AND c.round_2_invite_after <= $2
		  AND c.created_at IS NOT NULL
	`
	return p.queryCandidatesWithJob(ctx, query, string(StatusRound2Approved), now)
}

// ReminderCandidates returns invited candidates who have not completed their
// interview and have not been reminded yet. Elapsed-time and job-activity
// checks are applied by the pipeline rules, matching the joined job row.
func (p *Postgres) ReminderCandidates(ctx context.Context) ([]*Candidate, error) {
	query := `
		SELECT ` + candidateColumns + `,
			j.id, j.title, j.description, j.location, j.is_active
		FROM candidates c
		LEFT JOIN jobs j ON j.id = c.job_id
		WHERE c.status = ANY($1)
		  AND c.invite_sent_at IS NOT NULL
		  AND c.reminder_sent_at IS NULL
		  AND c.created_at IS NOT NULL
	`
	statuses := pq.Array([]string{string(StatusInviteSent), string(StatusRound2Invited)})
	return p.queryCandidatesWithJob(ctx, query, statuses)
}

// InviteCandidates returns candidates currently holding a round-1 invite.
// Used by the round-2 approval tooling.
func (p *Postgres) InviteCandidates(ctx context.Context) ([]*Candidate, error) {
	query := `
		SELECT ` + candidateColumns + `,
			j.id, j.title, j.description, j.location, j.is_active
		FROM candidates c
		LEFT JOIN jobs j ON j.id = c.job_id
		WHERE c.status = $1
		  AND c.created_at IS NOT NULL
	`
	return p.queryCandidatesWithJob(ctx, query, string(StatusInviteSent))
}

// SetStatus advances the candidate to the given status. Invite statuses also
// stamp invite_sent_at, which gates the reminder side-channel.
func (p *Postgres) SetStatus(ctx context.Context, id int64, status Status) error {
	var err error
	if status == StatusInviteSent || status == StatusRound2Invited {
		query := `UPDATE candidates SET status = $1, invite_sent_at = NOW() WHERE id = $2`
		_, err = p.db.ExecContext(ctx, query, string(status), id)
	} else {
		query := `UPDATE candidates SET status = $1 WHERE id = $2`
		_, err = p.db.ExecContext(ctx, query, string(status), id)
	}
	if err != nil {
		return fmt.Errorf("set status %s: %w", status, err)
	}
	return nil
}

// RecordGrade stores the judge's score and reasoning, advancing status to the
// outcome decided by the pipeline rules. The reasoning merges additively into
// the metadata map.
func (p *Postgres) RecordGrade(ctx context.Context, id int64, score int, reasoning string, status Status) error {
	meta, err := json.Marshal(map[string]string{"grading_reasoning": reasoning})
	if err != nil {
		return fmt.Errorf("marshal grading metadata: %w", err)
	}

	query := `
		UPDATE candidates
		SET jd_match_score = $1,
		    status = $2,
		    metadata = COALESCE(metadata, '{}'::jsonb) || $3::jsonb
		WHERE id = $4
	`
	if _, err := p.db.ExecContext(ctx, query, score, string(status), meta, id); err != nil {
		return fmt.Errorf("record grade: %w", err)
	}
	return nil
}

// MarkReminderSent stamps the reminder side-channel flag without touching status.
func (p *Postgres) MarkReminderSent(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE candidates SET reminder_sent_at = $1 WHERE id = $2`
	if _, err := p.db.ExecContext(ctx, query, at, id); err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	return nil
}

// ScheduleRound2 approves a candidate for the technical round and records when
// the invite becomes due. The orchestrator only honors the delay.
func (p *Postgres) ScheduleRound2(ctx context.Context, id int64, after time.Time) error {
	query := `UPDATE candidates SET status = $1, round_2_invite_after = $2 WHERE id = $3`
	if _, err := p.db.ExecContext(ctx, query, string(StatusRound2Approved), after, id); err != nil {
		return fmt.Errorf("schedule round 2: %w", err)
	}
	return nil
}

// CandidateExists reports whether a candidate with the given email is already
// on file. Ingestion uses it to skip duplicate applications.
func (p *Postgres) CandidateExists(ctx context.Context, email string) (bool, error) {
	var id int64
	err := p.db.QueryRowContext(ctx, `SELECT id FROM candidates WHERE email = $1 LIMIT 1`, email).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check candidate exists: %w", err)
	}
	return true, nil
}

// CreateCandidate inserts a fresh application with a generated interview
// token. The token is the only secret ever embedded in candidate links.
func (p *Postgres) CreateCandidate(ctx context.Context, nc *NewCandidate) (int64, error) {
	meta := nc.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return 0, fmt.Errorf("marshal candidate metadata: %w", err)
	}

	query := `
		INSERT INTO candidates
			(email, full_name, resume_text, status, job_id, job_description, interview_token, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id
	`

	var id int64
	err = p.db.QueryRowContext(ctx, query,
		nc.Email,
		nc.FullName,
		nc.ResumeText,
		string(StatusNewApplication),
		nc.JobID,
		nc.JobDescription,
		uuid.NewString(),
		metaJSON,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create candidate: %w", err)
	}
	return id, nil
}

// Jobs returns all job rows. Ingestion matches titles in Go to tolerate
// whitespace and case differences in email subjects.
func (p *Postgres) Jobs(ctx context.Context) ([]*Job, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id, title, description, location, is_active FROM jobs`)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		var (
			j        Job
			desc     sql.NullString
			location sql.NullString
		)
		if err := rows.Scan(&j.ID, &j.Title, &desc, &location, &j.IsActive); err != nil {
			return nil, fmt.Errorf("scan job row: %w", err)
		}
		j.Description = desc.String
		j.Location = location.String
		jobs = append(jobs, &j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("job rows: %w", err)
	}
	return jobs, nil
}

// EmailTemplates returns template overrides from the prompts table keyed by
// name. Callers fall back to built-in templates when a name is absent or the
// query fails.
func (p *Postgres) EmailTemplates(ctx context.Context, names []string) (map[string]string, error) {
	query := `SELECT name, system_prompt FROM prompts WHERE name = ANY($1)`
	rows, err := p.db.QueryContext(ctx, query, pq.Array(names))
	if err != nil {
		return nil, fmt.Errorf("query email templates: %w", err)
	}
	defer rows.Close()

	templates := make(map[string]string)
	for rows.Next() {
		var name, body string
		if err := rows.Scan(&name, &body); err != nil {
			return nil, fmt.Errorf("scan template row: %w", err)
		}
		if strings.TrimSpace(body) != "" {
			templates[name] = body
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("template rows: %w", err)
	}
	return templates, nil
}

func (p *Postgres) queryCandidates(ctx context.Context, query string, args ...any) ([]*Candidate, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var out []*Candidate
	for rows.Next() {
		c, err := scanCandidate(rows, false)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("candidate rows: %w", err)
	}
	return out, nil
}

func (p *Postgres) queryCandidatesWithJob(ctx context.Context, query string, args ...any) ([]*Candidate, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var out []*Candidate
	for rows.Next() {
		c, err := scanCandidate(rows, true)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("candidate rows: %w", err)
	}
	return out, nil
}

func scanCandidate(rows *sql.Rows, withJob bool) (*Candidate, error) {
	var (
		c              Candidate
		fullName       sql.NullString
		jobID          sql.NullInt64
		score          sql.NullInt64
		resumeText     sql.NullString
		jobDescription sql.NullString
		token          sql.NullString
		inviteSentAt   sql.NullTime
		reminderSentAt sql.NullTime
		round2After    sql.NullTime
		createdAt      sql.NullTime
		metaRaw        []byte
	)

	dest := []any{
		&c.ID, &c.Email, &fullName, &c.Status, &jobID, &score,
		&resumeText, &jobDescription, &token,
		&inviteSentAt, &reminderSentAt, &round2After,
		&createdAt, &metaRaw,
	}

	var (
		jID     sql.NullInt64
		jTitle  sql.NullString
		jDesc   sql.NullString
		jLoc    sql.NullString
		jActive sql.NullBool
	)
	if withJob {
		dest = append(dest, &jID, &jTitle, &jDesc, &jLoc, &jActive)
	}

	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("scan candidate row: %w", err)
	}

	c.FullName = fullName.String
	c.ResumeText = resumeText.String
	c.JobDescription = jobDescription.String
	c.InterviewToken = strings.TrimSpace(token.String)

	if jobID.Valid {
		v := jobID.Int64
		c.JobID = &v
	}
	if score.Valid {
		v := int(score.Int64)
		c.Score = &v
	}
	if inviteSentAt.Valid {
		v := inviteSentAt.Time
		c.InviteSentAt = &v
	}
	if reminderSentAt.Valid {
		v := reminderSentAt.Time
		c.ReminderSentAt = &v
	}
	if round2After.Valid {
		v := round2After.Time
		c.Round2InviteAfter = &v
	}
	if createdAt.Valid {
		v := createdAt.Time
		c.CreatedAt = &v
	}

	if len(metaRaw) > 0 {
		if err := json.Unmarshal(metaRaw, &c.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal candidate metadata: %w", err)
		}
	}

	if withJob && jID.Valid {
		c.Job = &Job{
			ID:          jID.Int64,
			Title:       jTitle.String,
			Description: jDesc.String,
			Location:    jLoc.String,
			IsActive:    jActive.Bool,
		}
	}

	return &c, nil
}
