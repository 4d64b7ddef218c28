package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"hireloop/internal/judge"
	"hireloop/internal/utils"

	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// Judge implements judge.Judge on top of the Gemini API.
type Judge struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

//go:embed grade_prompt.md
var gradePromptTemplate string

//go:embed visa_prompt.md
var visaPromptTemplate string

const defaultMaxLogLength = 200

var (
	scoreFallbackRe     = regexp.MustCompile(`"score"\s*:\s*(\d+)`)
	reasoningFallbackRe = regexp.MustCompile(`"reasoning"\s*:\s*"([^"]+)"`)
)

// Keyword fallbacks for visa classification when the model returns malformed
// JSON. The scan runs over the candidate's own reply, never the model output.
// Invalid keywords are checked first so a reply mentioning both loses.
var (
	validVisaKeywords = []string{
		"golden visa", "gold visa", "personal visa", "freelance visa",
		"investor visa", "family visa", "green card", "permanent resident",
		"citizen", "national", "residency", "work permit",
	}
	invalidVisaKeywords = []string{
		"employer visa", "employment visa", "need sponsor", "sponsorship",
		"tourist visa", "visit visa", "no visa", "expired",
	}
)

func NewJudge(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Judge {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Judge{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Score rates the resume against the job description, 0-100.
func (j *Judge) Score(ctx context.Context, resumeText, jobDescription string) (*judge.Grade, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, fmt.Errorf("resume text is required")
	}
	if strings.TrimSpace(jobDescription) == "" {
		jobDescription = "General software engineering position"
	}

	prompt := strings.ReplaceAll(gradePromptTemplate, "{{JOB_DESCRIPTION}}", jobDescription)
	prompt = strings.ReplaceAll(prompt, "{{RESUME_TEXT}}", resumeText)

	j.logger.Debug("gemini grading request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, j.maxLogLen)),
	)

	raw, err := j.generator.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, err
	}

	j.logger.Debug("gemini grading response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, j.maxLogLen)),
	)

	grade, err := parseGrade(raw)
	if err != nil {
		return nil, err
	}

	grade.Raw = raw
	return grade, nil
}

// Classify decides whether the candidate's reply indicates valid work
// authorization. Parse failures fall back to a keyword scan of the reply
// itself, and an inconclusive scan defaults to eligible so a parsing failure
// never rejects a candidate.
func (j *Judge) Classify(ctx context.Context, replyText string) (bool, error) {
	reply := strings.TrimSpace(replyText)
	if reply == "" {
		return false, fmt.Errorf("reply text is required")
	}

	prompt := strings.ReplaceAll(visaPromptTemplate, "{{REPLY_TEXT}}", reply)

	raw, err := j.generator.GenerateJSON(ctx, prompt)
	if err != nil {
		return false, err
	}

	j.logger.Debug("gemini visa response",
		zap.String("response_preview", utils.TruncateForLog(raw, j.maxLogLen)),
	)

	var result struct {
		HasValidVisa *bool `json:"has_valid_visa"`
	}
	cleaned := extractJSON(raw)
	if err := json.Unmarshal([]byte(cleaned), &result); err == nil && result.HasValidVisa != nil {
		return *result.HasValidVisa, nil
	}

	j.logger.Warn("visa verdict parse failed, scanning candidate reply for keywords",
		zap.String("response_preview", utils.TruncateForLog(raw, j.maxLogLen)),
	)

	return classifyByKeywords(reply, j.logger), nil
}

func classifyByKeywords(reply string, logger *zap.Logger) bool {
	lower := strings.ToLower(reply)

	for _, keyword := range invalidVisaKeywords {
		if strings.Contains(lower, keyword) {
			logger.Info("visa keyword fallback matched invalid keyword", zap.String("keyword", keyword))
			return false
		}
	}

	for _, keyword := range validVisaKeywords {
		if strings.Contains(lower, keyword) {
			logger.Info("visa keyword fallback matched valid keyword", zap.String("keyword", keyword))
			return true
		}
	}

	logger.Warn("visa keyword fallback inconclusive, defaulting to eligible")
	return true
}

func parseGrade(raw string) (*judge.Grade, error) {
	cleaned := extractJSON(raw)

	var data struct {
		Score     *int   `json:"score"`
		Reasoning string `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(cleaned), &data); err == nil && data.Score != nil {
		reasoning := strings.TrimSpace(data.Reasoning)
		if reasoning == "" {
			reasoning = "No reasoning provided"
		}
		return &judge.Grade{Score: *data.Score, Reasoning: reasoning}, nil
	}

	// Deterministic fallback over the malformed output.
	scoreMatch := scoreFallbackRe.FindStringSubmatch(raw)
	if scoreMatch == nil {
		return nil, fmt.Errorf("parse grading response: no score found in %q", utils.TruncateForLog(raw, defaultMaxLogLength))
	}

	score, err := strconv.Atoi(scoreMatch[1])
	if err != nil {
		return nil, fmt.Errorf("parse grading response: %w", err)
	}

	reasoning := "Score extracted from malformed response"
	if m := reasoningFallbackRe.FindStringSubmatch(raw); m != nil {
		reasoning = m[1]
	}

	return &judge.Grade{Score: score, Reasoning: reasoning}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
