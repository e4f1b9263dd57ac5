package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"alfredoptarigan/resume-evaluator/internal/config"
	"alfredoptarigan/resume-evaluator/internal/logger"
)

const (
	appName = "resume-evaluator"
)

var rootCmd = &cobra.Command{
	Use:          appName,
	Short:        "resume-evaluator scores resumes against job descriptions with a multi-stage model pipeline",
	SilenceUsage: true,
}

// Execute executes the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	mustBind("debug", "LOG_DEBUG")
	mustBind("json", "LOG_JSON")
}

func mustBind(key, env string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(key)); err != nil {
		panic(fmt.Sprintf("binding %s flag: %v", key, err))
	}
	if err := viper.BindEnv(key, env); err != nil {
		panic(fmt.Sprintf("binding %s environment variable: %v", env, err))
	}
}

// setup loads the environment config and builds a logger honoring the
// persistent flags.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, nil, fmt.Errorf("creating a logger: %w", err)
	}

	log.Debug("config loaded", zap.Bool("dotenv", cfg.DotEnvLoaded), zap.Bool("rag", cfg.RAGEnabled()))
	return cfg, log, nil
}
