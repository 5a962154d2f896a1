// Package cmd provides the command-line interface for sheetsync.
package cmd

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/sheetsync/internal/logging"
)

const appName = "sheetsync"

// Version is set at build time with -ldflags "-X".
var Version = "dev"

var (
	rootCmd = newRootCmd()
	logFile *os.File
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Sheetsync posts control-review reminders from a spreadsheet to JIRA",
		Long: `Sheetsync reads a control-review tracking spreadsheet and keeps the linked
JIRA tickets informed as due dates approach and pass.

For every tracked row it classifies the due date and posts the matching
reminder: upcoming, due today, overdue (manager copied) or overdue long
enough to be escalated into the risk log.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			format, _ := cmd.Flags().GetString("log-format")
			logDir, _ := cmd.Flags().GetString("log-dir")
			toFile, _ := cmd.Flags().GetBool("log-file")

			if toFile && logDir == "" {
				dir, err := logging.DefaultLogDir(appName)
				if err != nil {
					return err
				}
				logDir = dir
			}

			out := cmd.ErrOrStderr()
			if logDir != "" {
				f, err := logging.OpenLogFile(logDir, appName, time.Now())
				if err != nil {
					return err
				}
				logFile = f
				out = io.MultiWriter(out, f)
			}

			logging.SetupLogger(out, logging.LogLevel(strings.ToLower(level)), logging.Format(strings.ToLower(format)))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			closeLogFile()
		},
	}

	root.PersistentFlags().StringP("config", "c", "", "Path to a YAML config file (default ./sheetsync.yaml if present)")
	root.PersistentFlags().String("log-level", envOr("LOG_LEVEL", string(logging.LevelInfo)), "Log level: debug, info, warn or error")
	root.PersistentFlags().String("log-format", envOr("LOG_FORMAT", string(logging.FormatText)), "Log format: text or json")
	root.PersistentFlags().Bool("log-file", false, "Also append logs to ~/.sheetsync/logs/sheetsync-YYYY-MM-DD.log")
	root.PersistentFlags().String("log-dir", os.Getenv("LOG_DIR"), "Directory for the log file (implies --log-file)")

	root.AddCommand(newRemindCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newClassifyCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// Execute adds all child commands to the root command and runs it.
func Execute(ctx context.Context) error {
	defer closeLogFile()
	return rootCmd.ExecuteContext(ctx)
}

func closeLogFile() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
