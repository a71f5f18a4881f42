package main

import (
	"fmt"
	"os"

	"github.com/medimate/internal/config"
	"github.com/medimate/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	databasePath string
	logLevel     string
)

// rootCmd 为 medimate 命令入口
var rootCmd = &cobra.Command{
	Use:   "medimate",
	Short: "Personal medication reminder service",
	Long: `MediMate keeps a list of medications with daily dosing times,
records taken doses and reports adherence.

Run "medimate serve" to start the JSON API.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databasePath, "db", "", "SQLite database path (default: DATABASE_PATH or medimate.db)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (default: LOG_LEVEL or info)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initUserCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig 读取环境变量并套用命令行覆盖项
func loadConfig() (config.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.AppConfig{}, err
	}
	if databasePath != "" {
		cfg.DatabasePath = databasePath
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

// setupLogger 构建全局 logger，返回的函数用于退出前刷新缓冲
func setupLogger(cfg config.AppConfig) (*zap.Logger, func(), error) {
	logger, err := logging.New(cfg.LogLevel, cfg.GinMode)
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	restore := zap.ReplaceGlobals(logger)
	return logger, func() {
		_ = logger.Sync()
		restore()
	}, nil
}
