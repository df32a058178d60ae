package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/bazaar/app/jobs"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/internal/bot"
	"github.com/shashiranjanraj/bazaar/internal/server"
	"github.com/shashiranjanraj/bazaar/pkg/cache"
	"github.com/shashiranjanraj/bazaar/pkg/database"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/queue"
	"github.com/shashiranjanraj/bazaar/pkg/schedule"
)

var botQueueWorkersFlag int

// bazaar bot — run the Telegram bot with in-process queue workers and the
// scheduler, which is the single-binary deployment most shops run.
var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Start the Telegram bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := server.Boot(); err != nil {
			return err
		}

		b, err := bot.New(database.DB)
		if err != nil {
			return err
		}

		// Broadcasts go through the queue; redis makes them survive a
		// restart, the in-process driver covers dev setups.
		if cache.RDB != nil {
			queue.SetDriver(queue.NewRedisDriver(cache.RDB))
		}
		jobs.Register()
		jobs.SetAnnouncer(b.Announcer())

		workers := botQueueWorkersFlag
		if workers < 1 {
			workers = 3
		}
		queue.StartWorkers(ctx, workers)
		registerSchedule()
		schedule.Start(ctx)

		fmt.Println("Bot running. Press Ctrl+C to stop.")
		err = b.Run(ctx)
		if err == context.Canceled {
			return nil
		}
		return err
	},
}

// registerSchedule wires the recurring jobs: the nightly restock digest, a
// sales export to storage and the stale-cart sweep.
func registerSchedule() {
	schedule.Daily().Name("restock-digest").WithoutOverlapping().Run(func() {
		_ = queue.Dispatch(&jobs.BroadcastJob{Kind: jobs.BroadcastRestock})
	})

	schedule.Daily().Name("sales-export").WithoutOverlapping().Run(func() {
		path, err := services.NewStatsService(database.DB).ExportBuys(1)
		if err != nil {
			logger.Error("schedule: sales export", "error", err)
			return
		}
		logger.Info("schedule: sales export written", "path", path)
	})

	schedule.Daily().Name("stale-carts").WithoutOverlapping().Run(func() {
		n, err := repositories.NewCartRepository(database.DB).PurgeStale(72 * time.Hour)
		if err != nil {
			logger.Error("schedule: stale cart sweep", "error", err)
			return
		}
		if n > 0 {
			logger.Info("schedule: stale cart lines dropped", "count", n)
		}
	})
}

func init() {
	botCmd.Flags().IntVarP(&botQueueWorkersFlag, "workers", "w", 3, "Number of queue workers")
}
