package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"geodigest/internal/config"
	"geodigest/internal/core"
	"geodigest/internal/logger"
	"geodigest/internal/pipeline"
	"geodigest/internal/scheduler"

	"github.com/spf13/cobra"
)

// NewScheduleCmd creates the schedule command
func NewScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run digests on their cron schedules until interrupted",
		Long: `Register one cron job per digest variant and run until SIGINT or SIGTERM.

Default schedules (digests.<variant>.cron, in schedule.timezone):
  daily:  0 8 * * *
  weekly: 0 8 * * 1

Examples:
  geodigest schedule
  geodigest schedule --run-now --only weekly`,
		Args: cobra.NoArgs,
		RunE: scheduleRun,
	}

	cmd.Flags().Bool("run-now", false, "Run the scheduled digests once immediately")
	cmd.Flags().String("only", "", "Schedule a single variant (daily or weekly)")

	return cmd
}

func scheduleRun(cmd *cobra.Command, args []string) error {
	runNow, _ := cmd.Flags().GetBool("run-now")
	only, _ := cmd.Flags().GetString("only")

	variants := core.Variants
	if only != "" {
		v, err := core.ParseVariant(only)
		if err != nil {
			return err
		}
		variants = []core.Variant{v}
	}

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	runner, err := pipeline.NewBuilder(cfg).WithLogger(log).Build()
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	sched := scheduler.New(cfg.Schedule.Location(), runDigest(runner), logger.Component("scheduler"))
	if err := registerJobs(sched, cfg, variants); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if runNow {
		for _, v := range variants {
			if err := sched.RunNow(ctx, v); err != nil {
				logger.Error("Initial digest run failed", err, "variant", v)
			}
		}
	}

	sched.Start(ctx)
	logger.Info("Scheduler started", "jobs", len(sched.Entries()))
	out := cmd.OutOrStdout()
	for _, e := range sched.Entries() {
		fmt.Fprintf(out, "📅 %s digest scheduled (%s), next run %s\n", e.Variant, e.Spec, e.Next.Format("2006-01-02 15:04 MST"))
	}
	fmt.Fprintln(out, "Press Ctrl+C to stop.")

	<-ctx.Done()
	fmt.Fprintln(out, "🛑 Stopping scheduler, waiting for running digests...")
	sched.Stop()
	logger.Info("Scheduler stopped")
	return nil
}

func registerJobs(sched *scheduler.Scheduler, cfg *config.Config, variants []core.Variant) error {
	for _, v := range variants {
		profile, err := cfg.Profile(v)
		if err != nil {
			return err
		}
		if err := sched.Register(v, profile.Cron); err != nil {
			return err
		}
	}
	return nil
}

// runDigest adapts a pipeline runner to a scheduler job
func runDigest(runner *pipeline.Runner) scheduler.RunFunc {
	return func(ctx context.Context, v core.Variant) error {
		report, err := runner.Run(ctx, pipeline.Options{Variant: v})
		if err != nil {
			return err
		}
		if !report.Sent {
			return fmt.Errorf("%w: %w", errNotSent, report.SendErr)
		}
		return nil
	}
}
