package cmd

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "hireloop"
)

type Config struct {
	Company  string          `mapstructure:"company"`
	Database *DatabaseConfig `mapstructure:"database"`
	Gmail    *GmailConfig    `mapstructure:"gmail"`
	Judge    *JudgeConfig    `mapstructure:"judge"`
	Pipeline *PipelineConfig `mapstructure:"pipeline"`
	Links    *LinksConfig    `mapstructure:"links"`
}

type DatabaseConfig struct {
	DSN     string `mapstructure:"dsn"`
	DSNFile string `mapstructure:"dsn-file"`
}

type GmailConfig struct {
	TokenFile       string `mapstructure:"token-file"`
	CredentialsFile string `mapstructure:"credentials-file"`
}

type JudgeConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type PipelineConfig struct {
	Interval        time.Duration `mapstructure:"interval"`
	CallTimeout     time.Duration `mapstructure:"call-timeout"`
	PassThreshold   int           `mapstructure:"pass-threshold"`
	ReminderAfter   time.Duration `mapstructure:"reminder-after"`
	Round2Delay     time.Duration `mapstructure:"round2-delay"`
	InboxQuery      string        `mapstructure:"inbox-query"`
	DisableIngest   bool          `mapstructure:"disable-ingest"`
	DisableOutreach bool          `mapstructure:"disable-outreach"`
}

type LinksConfig struct {
	InterviewBaseURL string `mapstructure:"interview-base-url"`
	Round2BaseURL    string `mapstructure:"round2-base-url"`
	FormBaseURL      string `mapstructure:"form-base-url"`
	FormID           string `mapstructure:"form-id"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hireloop keeps recruiting applications moving from inbox to interview",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("database.dsn", "DATABASE_URL"); err != nil {
		log.Fatalf("binding DATABASE_URL environment variable: %v", err)
	}
	if err := viper.BindEnv("gmail.token-file", "GMAIL_TOKEN_FILE"); err != nil {
		log.Fatalf("binding GMAIL_TOKEN_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("judge.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hireloop.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Local development keeps secrets in a .env file; absence is fine.
	_ = godotenv.Load()

	// Config is only needed for the daemon and admin commands.
	if runCmd.CalledAs() == "" && round2Cmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

// getConfig decodes the merged viper settings. Durations are written as
// strings ("90s", "72h") in the config file and converted here.
func getConfig() (*Config, error) {
	var config *Config

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           &config,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(viper.AllSettings()); err != nil {
		return nil, err
	}
	return config, nil
}
