package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"hireloop/internal/logger"
	"hireloop/internal/pipeline"
	"hireloop/internal/store"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptApproveNow   = "Approve, send after the default delay"
	PromptApproveAfter = "Approve, choose a custom delay"
	PromptSkip         = "Skip"
	PromptBack         = "back"
)

var errBack = errors.New("back requested")

var round2Cmd = &cobra.Command{
	Use:   "round2",
	Short: "Review round-1 candidates and approve them for the technical round",
	Run: func(_ *cobra.Command, _ []string) {
		round2()
	},
}

func init() {
	rootCmd.AddCommand(round2Cmd)
}

// round2 is the human gate of the funnel: it lists candidates holding a
// round-1 invite and schedules technical-round invites for the approved ones.
// The daemon picks the schedule up on its next cycle.
func round2() {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	if config == nil {
		logger.Fatal("config is required")
	}

	st, err := openStore(config)
	if err != nil {
		logger.Fatal("connecting to the database", zap.Error(err))
	}
	defer st.Close()

	delay := pipeline.DefaultRound2Delay
	if config.Pipeline != nil && config.Pipeline.Round2Delay > 0 {
		delay = config.Pipeline.Round2Delay
	}

	for {
		candidates, err := st.InviteCandidates(ctx)
		if err != nil {
			logger.Fatal("listing candidates", zap.Error(err))
		}
		if len(candidates) == 0 {
			logger.Info("exiting", zap.String("reason", "no candidates awaiting round-2 review"))
			return
		}

		candidate, err := pickCandidate(candidates)
		if err != nil {
			if errors.Is(err, errBack) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := reviewCandidate(ctx, st, candidate, delay, logger); err != nil {
			if errors.Is(err, errBack) {
				continue
			}
			logger.Fatal("reviewing candidate", zap.Error(err))
		}
	}
}

func pickCandidate(candidates []*store.Candidate) (*store.Candidate, error) {
	items := make([]string, 0, len(candidates)+1)
	for _, c := range candidates {
		items = append(items, candidateLabel(c))
	}
	items = append(items, PromptBack)

	prompt := promptui.Select{
		Label: "Choose a candidate and press ENTER",
		Items: items,
		Size:  12,
	}

	_, selected, err := prompt.Run()
	if err != nil {
		return nil, err
	}
	if selected == PromptBack {
		return nil, errBack
	}

	id, err := strconv.ParseInt(strings.Split(selected, " ")[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse candidate id from %q: %w", selected, err)
	}
	for _, c := range candidates {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("there is no such candidate id %d", id)
}

func candidateLabel(c *store.Candidate) string {
	score := "-"
	if c.Score != nil {
		score = strconv.Itoa(*c.Score)
	}
	jobTitle := "unknown role"
	if c.Job != nil && c.Job.Title != "" {
		jobTitle = c.Job.Title
	}
	return fmt.Sprintf("%d %s / %s / score %s", c.ID, c.FullName, jobTitle, score)
}

func reviewCandidate(ctx context.Context, st *store.Postgres, c *store.Candidate, delay time.Duration, logger *zap.Logger) error {
	prompt := promptui.Select{
		Label: fmt.Sprintf("Approve %s for the technical round?", c.FullName),
		Items: []string{PromptApproveNow, PromptApproveAfter, PromptSkip},
	}

	_, action, err := prompt.Run()
	if err != nil {
		return err
	}

	switch action {
	case PromptSkip:
		return errBack
	case PromptApproveAfter:
		entered, err := (&promptui.Prompt{
			Label:   "Delay before the invite goes out (e.g. 24h, 30m)",
			Default: delay.String(),
		}).Run()
		if err != nil {
			return err
		}
		delay, err = time.ParseDuration(strings.TrimSpace(entered))
		if err != nil {
			return fmt.Errorf("parse delay: %w", err)
		}
	}

	after := time.Now().Add(delay)
	if err := st.ScheduleRound2(ctx, c.ID, after); err != nil {
		return err
	}

	logger.Info("candidate approved for round 2",
		zap.Int64("candidate_id", c.ID),
		zap.String("full_name", c.FullName),
		zap.Time("invite_after", after),
	)
	return nil
}
