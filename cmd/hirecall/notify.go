package main

import (
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/hirecall/internal/notifier"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification subcommands",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test notification",
	Long:  "Sends a test recruiter alert using the configured notifier.",
	RunE:  runNotifyTest,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTestCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	cfg, logger := mustLoad()

	httpClient := &http.Client{Timeout: 30 * time.Second}
	n, err := setupNotifier(cfg, httpClient, logger)
	if err != nil {
		logger.Error("failed to set up notifier", "error", err)
		os.Exit(1)
	}

	if err := notifier.SendTestMessage(cmd.Context(), n); err != nil {
		logger.Error("test notification failed", "error", err)
		os.Exit(1)
	}
	logger.Info("test notification sent successfully")
	return nil
}
