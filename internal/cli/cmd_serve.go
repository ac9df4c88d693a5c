package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/stickynotes/internal/model"
	"github.com/sandeepkv93/stickynotes/internal/scheduler"
	"github.com/sandeepkv93/stickynotes/internal/update"
)

func schedulerConfig(rt *appRuntime) scheduler.Config {
	return scheduler.Config{
		Interval:   rt.cfg.Scheduler.Interval,
		BatchLimit: rt.cfg.Scheduler.BatchLimit,
		Logger:     rt.logger,
		Now:        nowFunc,
	}
}

// startupCleanup purges expired trash when trash.cleanup_on_start is set. A
// failure is logged, not returned.
func startupCleanup(ctx context.Context, rt *appRuntime) {
	if !rt.cfg.Trash.CleanupOnStart {
		return
	}
	n, err := rt.store.CleanupTrash(ctx, rt.cfg.Trash.RetentionDays)
	if err != nil {
		rt.logger.Warn("trash cleanup failed", "error", err)
		return
	}
	if n > 0 {
		rt.logger.Info("trash cleaned up", "removed", n, "retention_days", rt.cfg.Trash.RetentionDays)
	}
}

func addSchedulerFlags(cmd *cobra.Command) {
	cmd.Flags().Duration("interval", 0, "Reminder poll interval (default: scheduler.interval)")
	cmd.Flags().Bool("desktop", false, "Show desktop notifications (default: notifications.desktop)")
	cmd.Flags().Int("retention", 0, "Trash retention in days for the startup cleanup (default: trash.retention_days)")
}

func newServeCommand(deps commandDeps) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Watch for due reminders and announce them until interrupted",
		Long: "Polls the store for due reminders and logs each one, optionally as a\n" +
			"desktop notification too. Reminders stay due until acknowledged with\n" +
			"`stickynotes reminder ack`.",
		Args: noArgs("serve"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, deps, func(ctx context.Context, rt *appRuntime) error {
				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()

				startupCleanup(ctx, rt)
				sinks := scheduler.MultiSink{scheduler.LogSink{Logger: rt.logger}}
				if rt.cfg.Notifications.Desktop {
					sinks = append(sinks, scheduler.NewDesktopSink())
				}
				sched := scheduler.New(rt.store, scheduler.NewOnceSink(sinks), schedulerConfig(rt))

				if once {
					n, err := sched.Poll(ctx)
					if err != nil {
						return err
					}
					if deps.globals.JSON {
						return printJSON(deps.out, map[string]int{"published": n})
					}
					_, err = fmt.Fprintf(deps.out, "published %d due reminder(s)\n", n)
					return err
				}

				if err := sched.Start(ctx); err != nil {
					return err
				}
				rt.logger.Info("reminder service started", "interval", rt.cfg.Scheduler.Interval, "desktop", rt.cfg.Notifications.Desktop)
				<-ctx.Done()
				sched.Stop()
				stats := sched.Stats()
				rt.logger.Info("reminder service stopped",
					"polls", stats.Polls,
					"failed_polls", stats.FailedPolls,
					"published", stats.Published,
					"failed_publish", stats.FailedPublish,
				)
				return nil
			})
		},
	}
	addSchedulerFlags(cmd)
	cmd.Flags().BoolVar(&once, "once", false, "Poll a single time and exit")
	return cmd
}

func newTUICommand(deps commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive terminal UI",
		Args:  noArgs("tui"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, deps, runtimeOptions{quiet: true}, func(ctx context.Context, rt *appRuntime) error {
				startupCleanup(ctx, rt)

				channel := scheduler.NewChannelSink(rt.cfg.Scheduler.Buffer)
				defer channel.Close()
				var sink scheduler.Sink = channel
				if rt.cfg.Notifications.Desktop {
					sink = scheduler.MultiSink{channel, scheduler.NewOnceSink(scheduler.NewDesktopSink())}
				}
				sched := scheduler.New(rt.store, sink, schedulerConfig(rt))
				if err := sched.Start(ctx); err != nil {
					return err
				}
				defer sched.Stop()

				m := update.NewModel(ctx, rt.store, channel.C(), update.RuntimeConfig{
					RetentionDays: rt.cfg.Trash.RetentionDays,
					Sort:          model.DefaultNoteSort,
					Now:           nowFunc,
				})
				p := tea.NewProgram(m,
					tea.WithAltScreen(),
					tea.WithContext(ctx),
					tea.WithInput(deps.in),
					tea.WithOutput(deps.out),
				)
				if _, err := p.Run(); err != nil {
					return fmt.Errorf("run terminal ui: %w", err)
				}
				if dropped := channel.Dropped(); dropped > 0 {
					rt.logger.Warn("reminder notifications dropped", "count", dropped)
				}
				return nil
			})
		},
	}
	addSchedulerFlags(cmd)
	return cmd
}
