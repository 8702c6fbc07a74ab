package main

import (
	"fmt"
	"os"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/workguide/guide-server/internal/config"
	"github.com/workguide/guide-server/internal/di"
)

var (
	dataPath string
	envFile  string
	logLevel string
	env      string
)

var rootCmd = &cobra.Command{
	Use:   "guidectl",
	Short: "Manage work guide data without a running server",
	Long: `guidectl opens the same data directory as the guide server and runs
one-shot jobs against it: importing datasets, writing backup archives,
reporting visits and maintaining the tag registry.

The server must be stopped first; the database allows one process at a time.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataPath, "data-path", "", "Data directory (default: $DATA_PATH or ~/WorkGuides)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to .env file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (default: $LOG_LEVEL or info)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "Environment (development, staging, production)")
}

// configArgs turns the persistent flags into the server's flag syntax so
// both binaries resolve configuration the same way. Flags left unset are not
// passed, so the environment and the .env file still apply.
func configArgs() []string {
	args := []string{"-env-file", envFile}
	if rootCmd.PersistentFlags().Changed("log-level") {
		args = append(args, "-log-level", logLevel)
	}
	if dataPath != "" {
		args = append(args, "-data-path", dataPath)
	}
	if env != "" {
		args = append(args, "-env", env)
	}
	return args
}

// withContainer boots the storage and service layers, runs fn and shuts
// everything down again.
func withContainer(fn func(injector do.Injector) error) (err error) {
	cfg, err := config.Load(configArgs())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// Command output goes to stdout.
	cfg.Logger.Writer = os.Stderr

	injector := di.NewCLIContainer(cfg)
	defer func() {
		if shutdownErr := injector.Shutdown(); shutdownErr != nil && err == nil {
			err = fmt.Errorf("shutdown: %w", shutdownErr)
		}
	}()

	if err := di.BootstrapCLI(injector); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	return fn(injector)
}
