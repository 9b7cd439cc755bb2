package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/polyglot/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "polyglot [input-file]",
		Short: "Multilingual simulation prompt translator",
		Long: `polyglot translates the English prompts of a business simulation
spreadsheet into several languages through a chat completion API.

The input needs one "Prompt - English to <Language>" column per target
language. The output keeps every row and column and adds one
"Translation - <Language>" column per selected language.

Examples:
  polyglot prompts.xlsx                        # Translate into all catalog languages
  polyglot prompts.xlsx -l German -l French    # Translate into a subset
  polyglot prompts.csv --format sqlite         # Export a SQLite database
  polyglot --list-languages                    # Show the language catalog`,
		Args:          cobra.MaximumNArgs(1),
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.polyglot.yaml)")
	cmd.PersistentFlags().StringVar(&flags.EnvFile, "env", flags.EnvFile, "Path to a .env file with API credentials")
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")

	// Local flags
	cmd.Flags().StringVarP(&flags.Output, "output", "o", "", "Output file or directory (default: ./translated_simulation.<format>)")
	cmd.Flags().StringVar(&flags.Format, "format", flags.Format, "Output format: xlsx, csv or sqlite")
	cmd.Flags().StringSliceVarP(&flags.Languages, "languages", "l", nil, "Target languages (default: the whole catalog)")
	cmd.Flags().IntVar(&flags.Preview, "preview", 0, "Print the first N rows before and after translation")
	cmd.Flags().BoolVar(&flags.Archive, "archive", false, "Move an existing output file into archive/ instead of overwriting it")
	cmd.Flags().BoolVar(&flags.ListLanguages, "list-languages", false, "List the language catalog and exit")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List chat models available for the current API key")

	// Translation flags
	cmd.Flags().StringVar(&flags.Provider, "provider", flags.Provider, "Completion provider: azure, openai or gemini")
	cmd.Flags().StringVar(&flags.Model, "model", "", "Model id, or the deployment name for azure")
	cmd.Flags().IntVar(&flags.Retries, "retries", 0, "Extra attempts for a cell after a transient or rate limit failure")
	cmd.Flags().Uint32Var(&flags.BreakerThreshold, "breaker-threshold", 0, "Stop calling the API after N consecutive failures (0 disables)")
	cmd.Flags().DurationVar(&flags.CallTimeout, "call-timeout", 0, "Timeout for a single API call (0 disables)")

	// Pacing flags
	cmd.Flags().StringVar(&flags.Pacing, "pacing", flags.Pacing, "Pacing policy: fixed, token-bucket, adaptive or none")
	cmd.Flags().DurationVar(&flags.Delay, "delay", flags.Delay, "Pause between API calls")
	cmd.Flags().IntVar(&flags.Burst, "burst", flags.Burst, "Burst size for the token-bucket policy")

	// Progress flags
	cmd.Flags().StringVar(&flags.ETA, "eta", flags.ETA, "ETA estimator: cumulative or smoothed")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("output.path", cmd.Flags().Lookup("output"))
	viper.BindPFlag("output.format", cmd.Flags().Lookup("format"))
	viper.BindPFlag("output.archive", cmd.Flags().Lookup("archive"))
	viper.BindPFlag("languages.selected", cmd.Flags().Lookup("languages"))
	viper.BindPFlag("preview.rows", cmd.Flags().Lookup("preview"))
	viper.BindPFlag("translation.provider", cmd.Flags().Lookup("provider"))
	viper.BindPFlag("translation.model", cmd.Flags().Lookup("model"))
	viper.BindPFlag("translation.retries", cmd.Flags().Lookup("retries"))
	viper.BindPFlag("translation.breaker_threshold", cmd.Flags().Lookup("breaker-threshold"))
	viper.BindPFlag("translation.call_timeout", cmd.Flags().Lookup("call-timeout"))
	viper.BindPFlag("pacing.policy", cmd.Flags().Lookup("pacing"))
	viper.BindPFlag("pacing.delay", cmd.Flags().Lookup("delay"))
	viper.BindPFlag("pacing.burst", cmd.Flags().Lookup("burst"))
	viper.BindPFlag("progress.eta", cmd.Flags().Lookup("eta"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search config in home directory with name ".polyglot" (without extension)
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		} else {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".polyglot")
	}

	setDefaults()

	// Environment variables, e.g. POLYGLOT_PACING_DELAY
	viper.SetEnvPrefix("POLYGLOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
