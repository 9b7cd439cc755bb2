package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/polyglot/internal/cli"
	"codeberg.org/snonux/polyglot/internal/logging"
	"codeberg.org/snonux/polyglot/internal/models"
	"codeberg.org/snonux/polyglot/internal/processor"
	"codeberg.org/snonux/polyglot/internal/translation"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	if err := cli.LoadEnvFile(flags.EnvFile, cmd.Flags().Changed("env")); err != nil {
		return err
	}

	settings, err := cli.ReadSettings(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.New(os.Stderr, settings.LogLevel, true)
	if err != nil {
		return err
	}
	logger, _ = logging.WithRun(logger)

	// Handle --list-languages flag
	if flags.ListLanguages {
		processor.PrintLanguages(os.Stdout, settings.Catalog)
		return nil
	}

	creds, err := cli.LoadCredentials()
	if err != nil {
		return err
	}
	cfg, err := settings.TranslationConfig(creds)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Handle --list-models flag
	if flags.ListModels {
		lister, err := models.NewLister(cfg)
		if err != nil {
			return err
		}
		return lister.ListAvailableModels(ctx, os.Stdout)
	}

	if len(args) == 0 {
		return fmt.Errorf("no input file given; run 'polyglot --help' for usage")
	}

	translator, err := translation.New(ctx, cfg)
	if err != nil {
		return err
	}

	proc, err := processor.NewProcessor(settings, translator, logger, os.Stdout, os.Stderr)
	if err != nil {
		return err
	}

	_, err = proc.ProcessFile(ctx, args[0])
	return err
}
