package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/Abraxas-365/bolsa/pkg/logx"
	"github.com/Abraxas-365/bolsa/placement/matching/worker"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the async generation worker pool",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		container, err := NewContainer(ctx, cfg)
		if err != nil {
			return err
		}
		defer container.Close()

		pool := worker.NewGenerationWorker(container.AsyncGenerator, container.TaskQueue, cfg.Worker)
		pool.Start(ctx)

		<-ctx.Done()
		logx.Info("Stopping generation workers...")
		pool.Wait()
		logx.Info("Workers exited")
		return nil
	},
}
