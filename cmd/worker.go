package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/hr-management/internal/workpermit"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start background workers such as work permit expiry reminders.`,
}

var reminderWorkerCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Send work permit expiry reminders",
	Long:  `Scan permits expiring within the reminder window and notify the permit holder and HR on reminder days.`,
	Run: func(cmd *cobra.Command, args []string) {
		startReminderWorker()
	},
}

var (
	maxWorkers int
	runOnce    bool
	interval   time.Duration
)

func startReminderWorker() {
	cfg, logger := mustLoad()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	reminder := workpermit.NewReminder(app.workPermits, app.employees, app.notification, app.mailer, workpermit.ReminderConfig{
		Window:     cfg.Reminders.Window,
		MaxWorkers: getIntFlag(maxWorkers, cfg.Reminders.Workers),
		Recipients: cfg.Reminders.Recipients,
	}, logger.With("component", "permit_reminder"))
	defer reminder.Shutdown()

	if runOnce {
		sent, err := reminder.RunOnce(ctx)
		if err != nil {
			logger.Error("reminder run failed", "error", err)
			os.Exit(1)
		}
		logger.Info("reminder run complete", "sent", sent)
		return
	}

	every := interval
	if every <= 0 {
		every = cfg.Reminders.Interval
	}
	logger.Info("reminder worker is running. Press Ctrl+C to stop.", "interval", every)
	reminder.Run(ctx, every)
	logger.Info("reminder worker stopped")
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	reminderWorkerCmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "Maximum number of workers (overrides config)")
	reminderWorkerCmd.Flags().BoolVar(&runOnce, "once", false, "Run a single pass and exit")
	reminderWorkerCmd.Flags().DurationVar(&interval, "interval", 0, "Time between passes (overrides config)")

	workerCmd.AddCommand(reminderWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
