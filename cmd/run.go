package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"hireloop/internal/judge"
	"hireloop/internal/judge/gemini"
	"hireloop/internal/logger"
	"hireloop/internal/mailbox"
	"hireloop/internal/notify"
	"hireloop/internal/pipeline"
	"hireloop/internal/secrets"
	"hireloop/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the hireloop pipeline daemon",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("once", false, "run a single cycle and exit")
}

// run is the daemon entrypoint: wire the store, mailbox, judge and notifier,
// then hand control to the polling loop until a shutdown signal arrives.
func run(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	logger.Info("starting hireloop", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	st, err := openStore(config)
	if err != nil {
		logger.Fatal("connecting to the database", zap.Error(err),
			zap.String("hint", "set DATABASE_URL or the 'database.dsn' key in the configuration file"),
		)
	}
	defer st.Close()

	mail, err := openMailbox(ctx, config, logger)
	if err != nil {
		logger.Fatal("connecting to the mailbox", zap.Error(err),
			zap.String("hint", "set GMAIL_TOKEN_FILE or the 'gmail.token-file' key in the configuration file"),
		)
	}

	resumeJudge, err := newJudge(ctx, config.Judge, logger)
	if err != nil {
		logger.Fatal("building the resume judge", zap.Error(err))
	}

	notifier := notify.NewMailer(mail, config.Company, logger)

	orchestrator := pipeline.New(pipeline.Deps{
		Store:    st,
		Inbox:    mail,
		Judge:    resumeJudge,
		Notifier: notifier,
	}, settingsFromConfig(config), logger)

	if cmd.Flag("once").Value.String() == "true" {
		if err := orchestrator.CheckConnections(ctx); err != nil {
			logger.Fatal("connectivity check failed", zap.Error(err))
		}
		orchestrator.RunCycle(ctx)
		return
	}

	if err := orchestrator.Run(ctx); err != nil {
		logger.Fatal("pipeline failed", zap.Error(err))
	}
}

func openStore(config *Config) (*store.Postgres, error) {
	if config.Database == nil {
		return nil, fmt.Errorf("database configuration is required")
	}

	dsn, err := secrets.Load(secrets.Source{
		Name:  "database dsn",
		Value: config.Database.DSN,
		File:  config.Database.DSNFile,
	})
	if err != nil {
		return nil, err
	}

	return store.Open(dsn)
}

func openMailbox(ctx context.Context, config *Config, logger *zap.Logger) (*mailbox.Client, error) {
	if config.Gmail == nil || strings.TrimSpace(config.Gmail.TokenFile) == "" {
		return nil, fmt.Errorf("gmail token file is not configured")
	}

	token, err := secrets.Load(secrets.Source{
		Name: "gmail token",
		File: config.Gmail.TokenFile,
	})
	if err != nil {
		return nil, err
	}

	creds := mailbox.Credentials{TokenJSON: token}
	if config.Gmail.CredentialsFile != "" {
		clientJSON, err := secrets.Load(secrets.Source{
			Name: "gmail oauth client",
			File: config.Gmail.CredentialsFile,
		})
		if err != nil {
			return nil, err
		}
		creds.CredentialsJSON = clientJSON
	}

	return mailbox.NewClient(ctx, creds, logger)
}

func newJudge(ctx context.Context, cfg *JudgeConfig, log *zap.Logger) (judge.Judge, error) {
	if cfg == nil || cfg.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required under the judge section")
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported judge provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set judge.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}

	judgeLogger := logger.WithJudgeFields(log, "gemini", generator.Model())

	return gemini.NewJudge(generator, judgeLogger, cfg.Gemini.MaxLogLength), nil
}

func settingsFromConfig(config *Config) pipeline.Settings {
	settings := pipeline.Settings{CompanyName: config.Company}

	if p := config.Pipeline; p != nil {
		settings.Interval = p.Interval
		settings.CallTimeout = p.CallTimeout
		settings.PassThreshold = p.PassThreshold
		settings.ReminderAfter = p.ReminderAfter
		settings.Round2Delay = p.Round2Delay
		settings.InboxQuery = p.InboxQuery
		settings.DisableIngest = p.DisableIngest
		settings.DisableOutreach = p.DisableOutreach
	}
	if l := config.Links; l != nil {
		settings.InterviewBaseURL = l.InterviewBaseURL
		settings.Round2BaseURL = l.Round2BaseURL
		settings.FormBaseURL = l.FormBaseURL
		settings.FormID = l.FormID
	}

	return settings.WithDefaults()
}
