// Package cli implements the command-line interface for the lead agent.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Susa-Sek/se-handwerk/internal/logger"
)

// version is set via -ldflags at build time.
var version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "se-handwerk",
	Short: "Lead generation agent for SE Handwerk",
	Long: `Scrapes classified-ad platforms for trade job requests around Heilbronn,
scores them, drafts outreach messages and notifies the operator via Telegram.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml",
		"path to the configuration file")

	rootCmd.AddCommand(runCommand())
	rootCmd.AddCommand(onceCommand())
	rootCmd.AddCommand(testTelegramCommand())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Printf("se-handwerk %s\n", version)
		},
	})
}

// runCommand starts the scheduler and blocks until interrupted.
func runCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the agent continuously on its configured schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(cfgFile)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(),
				syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			err = a.scheduler.Run(ctx)
			if errors.Is(err, context.Canceled) {
				a.log.Info("shutdown complete")
				return nil
			}
			return err
		},
	}
}

// onceCommand runs a single pipeline cycle and exits.
func onceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run one scrape-score-notify cycle and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(cfgFile)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(),
				syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			summary, err := a.pipeline.RunOnce(ctx)
			if err != nil {
				return err
			}
			a.log.Info("run complete",
				logger.Int("found", summary.Found),
				logger.Int("new", summary.New),
				logger.Int("relevant", summary.Relevant))
			return nil
		},
	}
}

// testTelegramCommand verifies the notification channel end to end.
func testTelegramCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test-telegram",
		Short: "Send a test message to the configured Telegram chat",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(cfgFile)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.notifier.Enabled() {
				return errors.New("telegram is not configured, set TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID")
			}
			if err := a.notifier.SendText("✅ Testnachricht: Der Agent kann dich erreichen."); err != nil {
				return fmt.Errorf("send test message: %w", err)
			}
			fmt.Println("test message sent")
			return nil
		},
	}
}
